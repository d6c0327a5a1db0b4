package schemautil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	a := map[string]any{"type": "object", "properties": map[string]any{"x": map[string]any{"type": "integer"}}}
	b := map[string]any{"properties": map[string]any{"x": map[string]any{"type": "integer"}}, "type": "object"}

	t.Run("consistent and order independent", func(t *testing.T) {
		assert.Equal(t, Fingerprint(a), Fingerprint(a))
		assert.Equal(t, Fingerprint(a), Fingerprint(b))
	})

	t.Run("integers and floats of equal value", func(t *testing.T) {
		assert.Equal(t, Fingerprint(map[string]any{"maximum": 10}), Fingerprint(map[string]any{"maximum": 10.0}))
	})

	t.Run("different trees", func(t *testing.T) {
		pairs := [][2]any{
			{map[string]any{"type": "string"}, map[string]any{"type": "integer"}},
			{[]any{"a", "b"}, []any{"b", "a"}},
			{map[string]any{"a": "bc"}, map[string]any{"ab": "c"}},
			{"1", 1},
			{nil, false},
		}
		for _, p := range pairs {
			assert.NotEqual(t, Fingerprint(p[0]), Fingerprint(p[1]), "%v vs %v", p[0], p[1])
		}
	})
}
