package assert

import "github.com/oomph-ac/dogfight/oerror"

// IsTrue panics with the formatted message if ok is false. Callers guard expensive checks behind Enabled so
// that release builds skip them entirely.
func IsTrue(ok bool, message string, args ...interface{}) {
	if !ok {
		panic(oerror.New(message, args...))
	}
}
