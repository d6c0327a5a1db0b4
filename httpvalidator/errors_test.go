package httpvalidator

import (
	"testing"

	"github.com/TheManSpeaker/openapi-request-validator-generator/compiler"
	"github.com/stretchr/testify/assert"
)

func raw(keyword, instancePath, message, location string, params map[string]any) RawViolation {
	return RawViolation{
		Violation: compiler.Violation{
			Keyword:      keyword,
			InstancePath: instancePath,
			Message:      message,
			Params:       params,
		},
		Location: location,
	}
}

func TestMapViolation(t *testing.T) {
	tests := []struct {
		name string
		raw  RawViolation
		want ValidationError
	}{
		{
			name: "body property",
			raw:  raw("type", "/body/name", "instance.body.name expected string, but got number", LocationBody, nil),
			want: ValidationError{
				ErrorCode: "type.openapi.requestValidation",
				Path:      "name",
				Message:   "instance.name expected string, but got number",
				Location:  LocationBody,
			},
		},
		{
			name: "body nested array item",
			raw:  raw("minimum", "/body/items/0/qty", "instance.body.items.0.qty must be >= 1", LocationBody, nil),
			want: ValidationError{
				ErrorCode: "minimum.openapi.requestValidation",
				Path:      "items.0.qty",
				Message:   "instance.items.0.qty must be >= 1",
				Location:  LocationBody,
			},
		},
		{
			name: "body required property",
			raw:  raw("required", "/body", "instance.body requires property 'name'", LocationBody, map[string]any{"missingProperty": "name"}),
			want: ValidationError{
				ErrorCode: "required.openapi.requestValidation",
				Path:      "name",
				Message:   "instance.body requires property 'name'",
				Location:  LocationBody,
			},
		},
		{
			name: "body root",
			raw:  raw("type", "/body", "instance.body expected string", LocationBody, nil),
			want: ValidationError{
				ErrorCode: "type.openapi.requestValidation",
				Path:      "body",
				Message:   "instance.body expected string",
				Location:  LocationBody,
			},
		},
		{
			name: "form data property",
			raw:  raw("type", "/count", "instance.count expected integer", LocationBody, nil),
			want: ValidationError{
				ErrorCode: "type.openapi.requestValidation",
				Path:      "count",
				Message:   "instance.count expected integer",
				Location:  LocationBody,
			},
		},
		{
			name: "body instance itself has no path",
			raw:  raw("type", "", "instance expected object", LocationBody, nil),
			want: ValidationError{
				ErrorCode: "type.openapi.requestValidation",
				Message:   "instance expected object",
				Location:  LocationBody,
			},
		},
		{
			name: "header required",
			raw:  raw("required", "", "instance requires property 'x-api-key'", LocationHeaders, map[string]any{"missingProperty": "x-api-key"}),
			want: ValidationError{
				ErrorCode: "required.openapi.requestValidation",
				Path:      "x-api-key",
				Message:   "instance requires property 'x-api-key'",
				Location:  LocationHeaders,
			},
		},
		{
			name: "query nested",
			raw:  raw("enum", "/filter/status", "instance.filter.status value must be one of", LocationQuery, nil),
			want: ValidationError{
				ErrorCode: "enum.openapi.requestValidation",
				Path:      "filter.status",
				Message:   "instance.filter.status value must be one of",
				Location:  LocationQuery,
			},
		},
		{
			name: "non-body message is kept",
			raw:  raw("type", "/body", "instance.body.x", LocationQuery, nil),
			want: ValidationError{
				ErrorCode: "type.openapi.requestValidation",
				Path:      "body",
				Message:   "instance.body.x",
				Location:  LocationQuery,
			},
		},
		{
			name: "ref",
			raw:  raw("$ref", "/body/owner", "instance.body.owner doesn't validate", LocationBody, map[string]any{"ref": "#/definitions/Owner"}),
			want: ValidationError{
				Path:     "owner",
				Message:  "instance.owner doesn't validate",
				Location: LocationBody,
				Schema:   map[string]any{"$ref": "#/definitions/Owner"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapViolation(tt.raw))
		})
	}
}

func TestMapViolations(t *testing.T) {
	raws := []RawViolation{
		raw("type", "/a", "instance.a bad", LocationQuery, nil),
		raw("maximum", "/b", "instance.b bad", LocationPath, nil),
	}

	t.Run("without transformer", func(t *testing.T) {
		got := mapViolations(raws, nil)
		assert.Len(t, got, 2)
		assert.Equal(t, "a", got[0].Path)
		assert.Equal(t, "b", got[1].Path)
	})

	t.Run("transformer sees raw violation", func(t *testing.T) {
		got := mapViolations(raws, func(mapped ValidationError, raw RawViolation) ValidationError {
			return ValidationError{Message: raw.Keyword + "@" + mapped.Path}
		})
		assert.Equal(t, []ValidationError{{Message: "type@a"}, {Message: "maximum@b"}}, got)
	})
}
