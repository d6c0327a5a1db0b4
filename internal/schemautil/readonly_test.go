package schemautil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripReadOnlyRequired(t *testing.T) {
	t.Run("removes readOnly from required only", func(t *testing.T) {
		in := map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":   map[string]any{"type": "integer", "readOnly": true},
				"name": map[string]any{"type": "string"},
			},
			"required": []any{"id", "name"},
		}
		out := StripReadOnlyRequired(in, nil)
		assert.Equal(t, []any{"name"}, out["required"])
		assert.Contains(t, out["properties"], "id")
		assert.Equal(t, []any{"id", "name"}, in["required"], "input must not change")
	})

	t.Run("readOnly false is kept", func(t *testing.T) {
		in := map[string]any{
			"properties": map[string]any{"id": map[string]any{"readOnly": false}},
			"required":   []any{"id"},
		}
		assert.Equal(t, []any{"id"}, StripReadOnlyRequired(in, nil)["required"])
	})

	t.Run("required without properties is untouched", func(t *testing.T) {
		in := map[string]any{"required": []any{"id"}}
		assert.Equal(t, in, StripReadOnlyRequired(in, nil))
	})

	t.Run("descends through items and combinators", func(t *testing.T) {
		obj := func() map[string]any {
			return map[string]any{
				"properties": map[string]any{"id": map[string]any{"readOnly": true}, "x": map[string]any{}},
				"required":   []any{"id", "x"},
			}
		}
		in := map[string]any{
			"properties": map[string]any{
				"list": map[string]any{"type": "array", "items": obj()},
			},
			"allOf": []any{obj()},
			"oneOf": []any{obj()},
			"anyOf": []any{obj()},
		}
		out := StripReadOnlyRequired(in, nil)
		list := out["properties"].(map[string]any)["list"].(map[string]any)
		assert.Equal(t, []any{"x"}, list["items"].(map[string]any)["required"])
		for _, kw := range []string{"allOf", "oneOf", "anyOf"} {
			assert.Equal(t, []any{"x"}, out[kw].([]any)[0].(map[string]any)["required"], kw)
		}
	})

	t.Run("resolves refs", func(t *testing.T) {
		pool := map[string]any{
			"Pet": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":   map[string]any{"$ref": "#/components/schemas/Id"},
					"name": map[string]any{"type": "string"},
				},
				"required": []any{"id", "name"},
			},
			"Id": map[string]any{"type": "integer", "readOnly": true},
		}
		out := StripReadOnlyRequired(map[string]any{"$ref": "#/components/schemas/Pet"}, PoolResolver(pool))
		assert.Equal(t, []any{"name"}, out["required"])
		assert.Equal(t, "object", out["type"])
		assert.Equal(t, []any{"id", "name"}, pool["Pet"].(map[string]any)["required"])
	})

	t.Run("cyclic refs terminate", func(t *testing.T) {
		pool := map[string]any{
			"Node": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":   map[string]any{"type": "string", "readOnly": true},
					"next": map[string]any{"$ref": "#/definitions/Node"},
				},
				"required": []any{"id", "next"},
			},
		}
		out := StripReadOnlyRequired(map[string]any{"$ref": "#/definitions/Node"}, PoolResolver(pool))
		assert.Equal(t, []any{"next"}, out["required"])
		next := out["properties"].(map[string]any)["next"]
		assert.Equal(t, map[string]any{"$ref": "#/definitions/Node"}, next)
	})

	t.Run("unknown ref is left in place", func(t *testing.T) {
		in := map[string]any{"$ref": "#/definitions/Missing"}
		assert.Equal(t, in, StripReadOnlyRequired(in, PoolResolver(nil)))
	})
}
