//go:build debug

package assert

// Enabled is true when built with the debug tag.
const Enabled = true
