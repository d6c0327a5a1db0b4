package middleware

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/TheManSpeaker/openapi-request-validator-generator/httpvalidator"
	"github.com/TheManSpeaker/openapi-request-validator-generator/parser"
	"github.com/go-chi/chi/v5"
	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const petstore = `
openapi: "3.0.3"
info:
  title: Petstore
  version: "1.0"
paths:
  /pets/{petId}:
    get:
      parameters:
        - name: petId
          in: path
          required: true
          schema:
            type: integer
        - name: limit
          in: query
          schema:
            type: integer
            maximum: 100
        - name: tags
          in: query
          schema:
            type: array
            items:
              type: string
        - name: X-Api-Key
          in: header
          required: true
          schema:
            type: string
      responses:
        "200":
          description: OK
  /pets:
    post:
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/Pet"
          application/x-www-form-urlencoded:
            schema:
              $ref: "#/components/schemas/Pet"
          multipart/form-data:
            schema:
              $ref: "#/components/schemas/Pet"
      responses:
        "201":
          description: Created
components:
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        name:
          type: string
        age:
          type: integer
`

type capture struct {
	req  httpvalidator.RequestContext
	body []byte
	hit  bool
}

func (c *capture) handler(w http.ResponseWriter, r *http.Request) {
	c.hit = true
	c.req, _ = FromContext(r.Context())
	c.body, _ = io.ReadAll(r.Body)
	w.WriteHeader(http.StatusOK)
}

func newValidator(t *testing.T) *httpvalidator.Validator {
	t.Helper()
	parsed, err := parser.ParseWithOptions(parser.WithBytes([]byte(petstore)))
	require.NoError(t, err)
	v, err := httpvalidator.NewFromParsed(parsed)
	require.NoError(t, err)
	return v
}

func newRouter(t *testing.T, c *capture, opts ...Option) http.Handler {
	t.Helper()
	mw, err := New(newValidator(t), opts...)
	require.NoError(t, err)
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(mw)
		r.Get("/pets/{petId}", c.handler)
		r.Post("/pets", c.handler)
		r.Get("/health", c.handler)
	})
	return r
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) httpvalidator.Result {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var result httpvalidator.Result
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(rec.Body.Bytes()), &result))
	return result
}

func getPet(target string, apiKey bool) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if apiKey {
		req.Header.Set("X-Api-Key", "secret")
	}
	return req
}

func TestMiddleware_Parameters(t *testing.T) {
	c := &capture{}
	h := newRouter(t, c)

	t.Run("valid request reaches handler with coerced values", func(t *testing.T) {
		rec := serve(h, getPet("/pets/42?limit=10&tags=a,b", true))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/pets/{petId}", c.req.Resource)
		assert.Equal(t, int64(42), c.req.Params["petId"])
		assert.Equal(t, int64(10), c.req.Query["limit"])
		assert.Equal(t, []any{"a", "b"}, c.req.Query["tags"])
		assert.Equal(t, "secret", c.req.Headers["X-Api-Key"])
	})

	t.Run("repeated array values", func(t *testing.T) {
		rec := serve(h, getPet("/pets/42?tags=a&tags=b", true))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []any{"a", "b"}, c.req.Query["tags"])
	})

	t.Run("path parameter type", func(t *testing.T) {
		rec := serve(h, getPet("/pets/abc", true))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		result := decodeResult(t, rec)
		assert.Equal(t, http.StatusBadRequest, result.Status)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "type.openapi.requestValidation", result.Errors[0].ErrorCode)
		assert.Equal(t, httpvalidator.LocationPath, result.Errors[0].Location)
		assert.Equal(t, "petId", result.Errors[0].Path)
	})

	t.Run("query maximum", func(t *testing.T) {
		rec := serve(h, getPet("/pets/1?limit=500", true))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		result := decodeResult(t, rec)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "maximum.openapi.requestValidation", result.Errors[0].ErrorCode)
	})

	t.Run("missing header", func(t *testing.T) {
		c.hit = false
		rec := serve(h, getPet("/pets/1", false))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, c.hit)
		result := decodeResult(t, rec)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, httpvalidator.LocationHeaders, result.Errors[0].Location)
		assert.Equal(t, "x-api-key", result.Errors[0].Path)
	})
}

func TestMiddleware_Coercion(t *testing.T) {
	c := &capture{}
	h := newRouter(t, c, WithCoercion(false))

	rec := serve(h, getPet("/pets/42?limit=10", true))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	result := decodeResult(t, rec)
	for _, e := range result.Errors {
		assert.Equal(t, "type.openapi.requestValidation", e.ErrorCode)
	}
	assert.Len(t, result.Errors, 2)
}

func TestMiddleware_HeaderCaseFolding(t *testing.T) {
	parsed, err := parser.ParseWithOptions(parser.WithBytes([]byte(`
openapi: "3.0.3"
info: {title: Items, version: 1.0.0}
paths:
  /items:
    get:
      parameters:
        - name: "X-\u0130d"
          in: header
          required: true
          schema:
            type: integer
      responses:
        "200": {description: ok}
`)))
	require.NoError(t, err)
	v, err := httpvalidator.NewFromParsed(parsed)
	require.NoError(t, err)
	mw, err := New(v)
	require.NoError(t, err)

	c := &capture{}
	r := chi.NewRouter()
	r.With(mw).Get("/items", c.handler)

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header["X-\u0130d"] = []string{"5"}
	rec := serve(r, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(5), c.req.Headers["X-\u0130d"])
}

func TestMiddleware_Body(t *testing.T) {
	c := &capture{}
	h := newRouter(t, c)

	post := func(contentType, body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/pets", strings.NewReader(body))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		return req
	}

	t.Run("json body is decoded and restored", func(t *testing.T) {
		payload := `{"name":"rex","age":3}`
		rec := serve(h, post("application/json", payload))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]any{"name": "rex", "age": 3.0}, c.req.Body)
		assert.Equal(t, payload, string(c.body))
	})

	t.Run("json body violation", func(t *testing.T) {
		rec := serve(h, post("application/json", `{"name":7}`))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		result := decodeResult(t, rec)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "name", result.Errors[0].Path)
		assert.Equal(t, httpvalidator.LocationBody, result.Errors[0].Location)
	})

	t.Run("invalid json", func(t *testing.T) {
		rec := serve(h, post("application/json", `{"name":`))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		result := decodeResult(t, rec)
		assert.Equal(t, "request body is not valid JSON", result.Errors[0].Message)
	})

	t.Run("json null body counts as absent", func(t *testing.T) {
		rec := serve(h, post("application/json", "null"))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		result := decodeResult(t, rec)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "body parameter is required", result.Errors[0].Message)
		assert.Empty(t, result.Errors[0].ErrorCode)
	})

	t.Run("form body is coerced", func(t *testing.T) {
		rec := serve(h, post("application/x-www-form-urlencoded", "name=rex&age=3"))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[string]any{"name": "rex", "age": int64(3)}, c.req.Body)
	})

	t.Run("multipart body", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("name", "rex"))
		require.NoError(t, mw.WriteField("age", "x"))
		require.NoError(t, mw.Close())

		rec := serve(h, post(mw.FormDataContentType(), buf.String()))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		result := decodeResult(t, rec)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "age", result.Errors[0].Path)
	})

	t.Run("unsupported media type", func(t *testing.T) {
		rec := serve(h, post("application/xml", "<pet/>"))
		require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
		result := decodeResult(t, rec)
		assert.Equal(t, "media type application/xml is not supported", result.Errors[0].Message)
	})

	t.Run("missing body", func(t *testing.T) {
		rec := serve(h, post("application/json", ""))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		result := decodeResult(t, rec)
		require.Len(t, result.Errors, 1)
		assert.Empty(t, result.Errors[0].ErrorCode)
		assert.NotNil(t, result.Errors[0].Schema)
	})

	t.Run("body too large", func(t *testing.T) {
		small := newRouter(t, &capture{}, WithMaxBodySize(8))
		rec := serve(small, post("application/json", `{"name":"a long name"}`))
		require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestMiddleware_UnknownOperation(t *testing.T) {
	c := &capture{}
	rec := serve(newRouter(t, c), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, c.hit)

	c = &capture{}
	rec = serve(newRouter(t, c, WithRejectUnknown(true)), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, c.hit)
}

func TestMiddleware_Resource(t *testing.T) {
	t.Run("chi patterns with regular expressions", func(t *testing.T) {
		c := &capture{}
		mw, err := New(newValidator(t))
		require.NoError(t, err)
		r := chi.NewRouter()
		r.With(mw).Get("/pets/{petId:[0-9]+}", c.handler)

		rec := serve(r, getPet("/pets/7", true))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/pets/{petId}", c.req.Resource)
	})

	t.Run("base path", func(t *testing.T) {
		c := &capture{}
		mw, err := New(newValidator(t), WithBasePath("/api/v1/"))
		require.NoError(t, err)
		r := chi.NewRouter()
		r.Route("/api/v1", func(r chi.Router) {
			r.With(mw).Get("/pets/{petId}", c.handler)
		})

		rec := serve(r, getPet("/api/v1/pets/abc", true))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("custom resolver without chi", func(t *testing.T) {
		c := &capture{}
		mw, err := New(newValidator(t), WithResourceResolver(func(*http.Request) string { return "/pets" }))
		require.NoError(t, err)
		h := mw(http.HandlerFunc(c.handler))

		req := httptest.NewRequest(http.MethodPost, "/anything", strings.NewReader(`{"name":"rex"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := serve(h, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/pets", c.req.Resource)
		assert.Equal(t, "/anything", c.req.Path)
	})

	t.Run("custom result handler", func(t *testing.T) {
		var got *httpvalidator.Result
		h := newRouter(t, &capture{}, WithResultHandler(func(w http.ResponseWriter, _ *http.Request, result *httpvalidator.Result) {
			got = result
			w.WriteHeader(http.StatusTeapot)
		}))
		rec := serve(h, getPet("/pets/1", false))
		assert.Equal(t, http.StatusTeapot, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, http.StatusBadRequest, got.Status)
	})
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil)
	assert.ErrorContains(t, err, "validator cannot be nil")

	v := newValidator(t)
	for _, opt := range []Option{
		WithResourceResolver(nil),
		WithResultHandler(nil),
		WithMaxBodySize(0),
	} {
		_, err := New(v, opt)
		assert.Error(t, err)
	}
}

func TestTemplateOf(t *testing.T) {
	tests := map[string]string{
		"/pets":                         "/pets",
		"/pets/{petId}":                 "/pets/{petId}",
		"/pets/{petId:[0-9]+}":          "/pets/{petId}",
		"/pets/{petId:[0-9]{3}}/photos": "/pets/{petId}/photos",
		"/a/{x:[a-z]+}/b/{y:.*}":        "/a/{x}/b/{y}",
	}
	for in, want := range tests {
		assert.Equal(t, want, templateOf(in), in)
	}
}

func TestCoerceValues(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		schema map[string]any
		want   any
	}{
		{"no schema", []string{"1"}, nil, "1"},
		{"integer", []string{"12"}, map[string]any{"type": "integer"}, int64(12)},
		{"nullable integer", []string{"12"}, map[string]any{"type": []any{"integer", "null"}}, int64(12)},
		{"bad integer", []string{"x"}, map[string]any{"type": "integer"}, "x"},
		{"number", []string{"1.5"}, map[string]any{"type": "number"}, 1.5},
		{"boolean", []string{"true"}, map[string]any{"type": "boolean"}, true},
		{"array csv", []string{"1,2"}, map[string]any{"type": "array", "items": map[string]any{"type": "integer"}}, []any{int64(1), int64(2)}},
		{"array repeated", []string{"a", "b"}, map[string]any{"type": "array"}, []any{"a", "b"}},
		{"repeated scalar", []string{"1", "2"}, map[string]any{"type": "integer"}, []any{int64(1), int64(2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceValues(tt.values, tt.schema))
		})
	}
}
