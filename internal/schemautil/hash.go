package schemautil

import (
	"hash"
	"hash/fnv"
	"math"
	"sort"
	"strconv"
)

// Fingerprint computes a structural FNV-64a hash of a JSON-compatible value.
// Map keys are visited in sorted order, so equal trees hash equally regardless
// of construction order. Collisions are possible; confirm with a deep comparison.
func Fingerprint(v any) uint64 {
	h := fnv.New64a()
	hashValue(h, v)
	return h.Sum64()
}

func hashValue(h hash.Hash64, v any) {
	switch t := v.(type) {
	case nil:
		writeString(h, "n;")
	case bool:
		writeString(h, "b:"+strconv.FormatBool(t)+";")
	case string:
		writeString(h, "s:"+strconv.Itoa(len(t))+":"+t+";")
	case int:
		hashNumber(h, float64(t))
	case int64:
		hashNumber(h, float64(t))
	case uint64:
		hashNumber(h, float64(t))
	case float64:
		hashNumber(h, t)
	case float32:
		hashNumber(h, float64(t))
	case []any:
		writeString(h, "a:"+strconv.Itoa(len(t))+"[")
		for _, item := range t {
			hashValue(h, item)
		}
		writeString(h, "]")
	case []string:
		writeString(h, "a:"+strconv.Itoa(len(t))+"[")
		for _, item := range t {
			hashValue(h, item)
		}
		writeString(h, "]")
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		writeString(h, "o:"+strconv.Itoa(len(t))+"{")
		for _, k := range keys {
			hashValue(h, k)
			hashValue(h, t[k])
		}
		writeString(h, "}")
	default:
		writeString(h, "?;")
	}
}

// Integers and floats with the same value hash equally, matching JSON semantics.
func hashNumber(h hash.Hash64, f float64) {
	writeString(h, "f:"+strconv.FormatUint(math.Float64bits(f), 16)+";")
}

func writeString(h hash.Hash64, s string) {
	_, _ = h.Write([]byte(s))
}
