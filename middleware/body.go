package middleware

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/TheManSpeaker/openapi-request-validator-generator/httpvalidator"
	"github.com/TheManSpeaker/openapi-request-validator-generator/internal/httputil"
	"github.com/TheManSpeaker/openapi-request-validator-generator/internal/schemautil"
	"github.com/go-json-experiment/json"
)

// body reads and decodes the request body. The body is restored on r so the
// next handler can read it again. A non-nil Result rejects the request.
func (m *middleware) body(r *http.Request, s httpvalidator.Schemas) (any, *httpvalidator.Result) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}

	buf := getBuffer()
	defer putBuffer(buf)
	_, err := buf.ReadFrom(io.LimitReader(r.Body, m.cfg.maxBodySize+1))
	_ = r.Body.Close()
	if err != nil {
		return nil, bodyResult(http.StatusBadRequest, fmt.Sprintf("failed to read request body: %v", err))
	}
	if int64(buf.Len()) > m.cfg.maxBodySize {
		r.Body = http.NoBody
		return nil, bodyResult(http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", m.cfg.maxBodySize))
	}
	data := bytes.Clone(buf.Bytes())
	r.Body = io.NopCloser(bytes.NewReader(data))
	if len(data) == 0 {
		return nil, nil
	}

	contentType := r.Header.Get("Content-Type")
	mediaType, _ := httputil.ParseContentType(contentType)

	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, bodyResult(http.StatusBadRequest, "request body is not valid JSON")
		}
		return v, nil

	case mediaType == "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(data))
		if err != nil {
			return nil, bodyResult(http.StatusBadRequest, "request body is not a valid form")
		}
		return m.form(values, formSchema(s, contentType)), nil

	case mediaType == "multipart/form-data":
		values, err := m.multipartValues(data, contentType)
		if err != nil {
			return nil, bodyResult(http.StatusBadRequest, "request body is not a valid multipart form")
		}
		return m.form(values, formSchema(s, contentType)), nil

	default:
		return string(data), nil
	}
}

func (m *middleware) multipartValues(data []byte, contentType string) (url.Values, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, err
	}
	form, err := multipart.NewReader(bytes.NewReader(data), params["boundary"]).ReadForm(m.cfg.maxBodySize)
	if err != nil {
		return nil, err
	}
	defer func() { _ = form.RemoveAll() }()

	values := url.Values(form.Value)
	for name, files := range form.File {
		for _, fh := range files {
			values.Add(name, fh.Filename)
		}
	}
	return values, nil
}

func (m *middleware) form(values url.Values, schema map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for name, vs := range values {
		out[name] = m.coerce(vs, propertySchema(schema, name))
	}
	return out
}

// formSchema returns the object schema describing form fields: the form data
// parameters, or the request body schema declared for the media type.
func formSchema(s httpvalidator.Schemas, contentType string) map[string]any {
	if s.FormData != nil {
		return s.FormData
	}
	key, err := httputil.MatchMediaType(contentType, s.Bodies)
	if err != nil || key == "" {
		return nil
	}
	wrapper := s.Bodies[key]
	schema := propertySchema(wrapper, "body")
	if ref, ok := schema["$ref"].(string); ok {
		name, ok := schemautil.RefName(ref)
		if !ok {
			return nil
		}
		pool, _ := wrapper["definitions"].(map[string]any)
		schema, _ = pool[name].(map[string]any)
	}
	return schema
}

func bodyResult(status int, message string) *httpvalidator.Result {
	return &httpvalidator.Result{
		Status: status,
		Errors: []httpvalidator.ValidationError{{
			Message:  message,
			Location: httpvalidator.LocationBody,
		}},
	}
}
