package httpvalidator

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/TheManSpeaker/openapi-request-validator-generator/internal/schemautil"
	"github.com/TheManSpeaker/openapi-request-validator-generator/parser"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// groupParameters partitions parameters by location, keeping declaration order.
func groupParameters(params []*parser.Parameter) map[string][]*parser.Parameter {
	groups := make(map[string][]*parser.Parameter)
	for _, p := range params {
		if p == nil {
			continue
		}
		groups[p.In] = append(groups[p.In], p)
	}
	return groups
}

// groupSchema builds the object schema that validates one request part from
// its declared parameters. With lowercase set, property names and the required
// list use lower-case names.
func groupSchema(params []*parser.Parameter, lowercase bool) map[string]any {
	var caser cases.Caser
	if lowercase {
		caser = cases.Lower(language.Und)
	}
	properties := make(map[string]any, len(params))
	var required []any
	for _, p := range params {
		name := p.Name
		if lowercase {
			name = caser.String(name)
		}
		properties[name] = schemautil.Normalize(paramSchema(p))
		if p.Required {
			required = append(required, name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func paramSchema(p *parser.Parameter) map[string]any {
	if p.Schema == nil {
		return map[string]any{}
	}
	return p.Schema
}

// lowerHeaders returns a copy of headers with lower-case names. Names that
// collide after lowering keep the value of the last name in sorted order.
func lowerHeaders(headers map[string]any) map[string]any {
	caser := cases.Lower(language.Und)
	out := make(map[string]any, len(headers))
	for _, name := range slices.Sorted(maps.Keys(headers)) {
		out[caser.String(name)] = headers[name]
	}
	return out
}

// headerValue returns the first value of a header, matching its name
// case-insensitively. Among names that differ only in case, the first in
// sorted order wins. It returns "" when the header is absent.
func headerValue(headers map[string]any, name string) string {
	for _, k := range slices.Sorted(maps.Keys(headers)) {
		if !strings.EqualFold(k, name) {
			continue
		}
		switch t := headers[k].(type) {
		case string:
			return t
		case []string:
			if len(t) > 0 {
				return t[0]
			}
			return ""
		case []any:
			if len(t) > 0 {
				return fmt.Sprint(t[0])
			}
			return ""
		case nil:
			return ""
		default:
			return fmt.Sprint(t)
		}
	}
	return ""
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
