package httpvalidator

import (
	"errors"
	"strings"
)

// ErrUnknownOperation is returned by Validator.Validate for a resource and
// method that the document does not declare.
var ErrUnknownOperation = errors.New("httpvalidator: unknown operation")

const errorCodeSuffix = ".openapi.requestValidation"

// mapViolation converts a raw violation into its public form.
func mapViolation(raw RawViolation) ValidationError {
	out := ValidationError{
		Message:  raw.Message,
		Location: raw.Location,
	}
	if raw.Keyword == "$ref" {
		out.Schema = map[string]any{"$ref": raw.Params["ref"]}
	} else {
		out.ErrorCode = raw.Keyword + errorCodeSuffix
	}

	path := "instance" + raw.InstancePath
	if missing, ok := raw.Params["missingProperty"].(string); ok {
		path += "/" + missing
	}

	if raw.Location == LocationBody {
		switch {
		case strings.HasPrefix(path, "instance/body/"):
			path = strings.TrimPrefix(path, "instance/body/")
		case strings.HasPrefix(path, "instance/"):
			path = strings.TrimPrefix(path, "instance/")
		case path == "instance":
			path = ""
		}
		path = strings.TrimPrefix(path, "body.")
		if rest, ok := strings.CutPrefix(out.Message, "instance.body."); ok {
			out.Message = "instance." + rest
		}
	} else {
		path = strings.TrimPrefix(path, "instance/")
	}

	out.Path = strings.ReplaceAll(path, "/", ".")
	return out
}

// mapViolations maps every violation and applies the transformer, if any.
func mapViolations(raws []RawViolation, transform ErrorTransformer) []ValidationError {
	out := make([]ValidationError, 0, len(raws))
	for _, raw := range raws {
		mapped := mapViolation(raw)
		if transform != nil {
			mapped = transform(mapped, raw)
		}
		out = append(out, mapped)
	}
	return out
}
