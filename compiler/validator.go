package compiler

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/TheManSpeaker/openapi-request-validator-generator/internal/schemautil"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Violation is one failing rule reported by a Validator.
type Violation struct {
	// Keyword is the schema keyword that failed, e.g. "required" or "maximum"
	Keyword string
	// InstancePath is the JSON pointer of the failing value; "" is the root
	InstancePath string
	// SchemaPath is the JSON pointer of the failing keyword in the schema
	SchemaPath string
	// Message describes the failure, prefixed with the dotted instance location
	Message string
	// Params carries keyword details: "missingProperty" for required,
	// "ref" for $ref, "format" for format
	Params map[string]any
}

// Validator validates instances against one compiled schema.
type Validator struct {
	schema *jsonschema.Schema
	doc    map[string]any
	reg    *registry
}

// Schema returns the schema this Validator was compiled from. It must not be modified.
func (v *Validator) Schema() map[string]any {
	return v.doc
}

// Validate checks instance and returns its violations, or nil when it conforms.
func (v *Validator) Validate(instance any) []Violation {
	inst, err := toJSONValue(instance)
	if err != nil {
		return []Violation{{Keyword: "type", Message: "instance " + err.Error()}}
	}
	err = v.schema.Validate(inst)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []Violation{{Keyword: "schema", Message: "instance " + err.Error()}}
	}

	var out []Violation
	v.collect(ve, inst, &out)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].InstancePath < out[j].InstancePath
	})
	return out
}

// collect flattens the error tree: leaves in order, and anyOf/oneOf nodes after
// the failures of their branches.
func (v *Validator) collect(ve *jsonschema.ValidationError, instance any, out *[]Violation) {
	if len(ve.Causes) == 0 {
		*out = append(*out, v.leaf(ve, instance)...)
		return
	}
	for _, cause := range ve.Causes {
		v.collect(cause, instance, out)
	}
	if kw := keywordOf(ve.KeywordLocation); kw == "anyOf" || kw == "oneOf" {
		*out = append(*out, v.violation(ve, kw, nil))
	}
}

func (v *Validator) leaf(ve *jsonschema.ValidationError, instance any) []Violation {
	kw := keywordOf(ve.KeywordLocation)
	switch kw {
	case "required":
		missing := v.missingProperties(ve, instance)
		if len(missing) == 0 {
			break
		}
		subject := subjectOf(ve.InstanceLocation)
		violations := make([]Violation, 0, len(missing))
		for _, name := range missing {
			violations = append(violations, Violation{
				Keyword:      kw,
				InstancePath: ve.InstanceLocation,
				SchemaPath:   ve.KeywordLocation,
				Message:      fmt.Sprintf("%s requires property '%s'", subject, name),
				Params:       map[string]any{"missingProperty": name},
			})
		}
		return violations
	case "$ref":
		if ref, ok := v.siblingValue(ve, "$ref"); ok {
			return []Violation{v.violation(ve, kw, map[string]any{"ref": ref})}
		}
	case "format":
		if format, ok := v.siblingValue(ve, "format"); ok {
			return []Violation{v.violation(ve, kw, map[string]any{"format": format})}
		}
	}
	return []Violation{v.violation(ve, kw, nil)}
}

func (v *Validator) violation(ve *jsonschema.ValidationError, kw string, params map[string]any) Violation {
	return Violation{
		Keyword:      kw,
		InstancePath: ve.InstanceLocation,
		SchemaPath:   ve.KeywordLocation,
		Message:      subjectOf(ve.InstanceLocation) + " " + ve.Message,
		Params:       params,
	}
}

// missingProperties lists the required properties absent from the instance.
// The required list is read from the schema document; the library message is
// the fallback.
func (v *Validator) missingProperties(ve *jsonschema.ValidationError, instance any) []string {
	if target, ok := v.reg.valueAt(ve.AbsoluteKeywordLocation); ok {
		if required := schemautil.Required(map[string]any{"required": target}); len(required) > 0 {
			value, _ := pointerGet(instance, ve.InstanceLocation)
			obj, _ := value.(map[string]any)
			var missing []string
			for _, name := range required {
				if _, present := obj[name]; !present {
					missing = append(missing, name)
				}
			}
			if len(missing) > 0 {
				return missing
			}
		}
	}
	return parseMissingProperties(ve.Message)
}

// siblingValue reads another keyword of the schema object that holds the failing keyword.
func (v *Validator) siblingValue(ve *jsonschema.ValidationError, keyword string) (any, bool) {
	loc := ve.AbsoluteKeywordLocation
	i := strings.LastIndex(loc, "/")
	if i < 0 {
		return nil, false
	}
	parent, ok := v.reg.valueAt(loc[:i])
	if !ok {
		return nil, false
	}
	m, ok := parent.(map[string]any)
	if !ok {
		return nil, false
	}
	val, ok := m[keyword]
	return val, ok
}

// parseMissingProperties reads "missing properties: 'a', 'b'".
func parseMissingProperties(msg string) []string {
	_, list, ok := strings.Cut(msg, "missing properties:")
	if !ok {
		return nil
	}
	var names []string
	for _, part := range strings.Split(list, ",") {
		name := strings.Trim(strings.TrimSpace(part), "'\"")
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Keywords that hold named subschemas; a location segment after them is a name.
var namedSchemaContainers = map[string]bool{
	"properties":        true,
	"patternProperties": true,
	"definitions":       true,
	"$defs":             true,
	"dependencies":      true,
	"dependentSchemas":  true,
}

// keywordOf returns the last keyword in a keyword location.
func keywordOf(location string) string {
	parts := strings.Split(location, "/")
	last := parts[len(parts)-1]
	if last == "" {
		return "schema"
	}
	if len(parts) >= 2 && namedSchemaContainers[parts[len(parts)-2]] {
		// the location ends at a named subschema, not at a keyword
		return "schema"
	}
	return schemautil.UnescapePointer(last)
}

// subjectOf renders an instance location as "instance.a.b".
func subjectOf(instanceLocation string) string {
	if instanceLocation == "" {
		return "instance"
	}
	parts := strings.Split(strings.TrimPrefix(instanceLocation, "/"), "/")
	for i, p := range parts {
		parts[i] = schemautil.UnescapePointer(p)
	}
	return "instance." + strings.Join(parts, ".")
}
