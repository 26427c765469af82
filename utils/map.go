package utils

import (
	"fmt"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
)

// KeyValsToString formats slog-style keyvals into a single bracketed string.
// Example: KeyValsToString("foo", 1, "bar", true) => "[foo=1 bar=true]".
// If an odd number of values is provided, the last value is ignored.
func KeyValsToString(kv []any) string {
	if len(kv) < 2 {
		return "[]"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	pairCount := len(kv) / 2
	for i := range pairCount {
		if i > 0 {
			sb.WriteByte(' ')
		}
		key := kv[i*2]
		val := kv[i*2+1]
		// Coerce non-string keys to fmt string.
		keyStr, ok := key.(string)
		if !ok {
			keyStr = fmt.Sprintf("%v", key)
		}
		fmt.Fprintf(&sb, "%s=%v", keyStr, val)
	}
	sb.WriteByte(']')
	return sb.String()
}

// OrderedMapToString formats the map in insertion order using the same layout as KeyValsToString.
func OrderedMapToString(m *orderedmap.OrderedMap[string, any]) string {
	if m == nil || m.Len() == 0 {
		return "[]"
	}
	kv := make([]any, 0, m.Len()*2)
	for el := m.Front(); el != nil; el = el.Next() {
		kv = append(kv, el.Key, el.Value)
	}
	return KeyValsToString(kv)
}
