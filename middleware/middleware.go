package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/TheManSpeaker/openapi-request-validator-generator/httpvalidator"
	"github.com/go-chi/chi/v5"
	"github.com/go-json-experiment/json"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type ctxKey struct{}

// FromContext returns the request as it was validated: parameters coerced to
// their declared types and the body decoded.
func FromContext(ctx context.Context) (httpvalidator.RequestContext, bool) {
	req, ok := ctx.Value(ctxKey{}).(httpvalidator.RequestContext)
	return req, ok
}

type middleware struct {
	v   *httpvalidator.Validator
	cfg *config
}

// New returns middleware that validates requests with v.
func New(v *httpvalidator.Validator, opts ...Option) (func(http.Handler) http.Handler, error) {
	if v == nil {
		return nil, fmt.Errorf("middleware: validator cannot be nil")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	m := &middleware{v: v, cfg: cfg}
	return m.wrap, nil
}

func (m *middleware) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resource := m.resourceOf(r)
		set, ok := m.v.Set(resource, r.Method)
		if !ok {
			m.cfg.logger.Debug("no operation for request", "method", r.Method, "resource", resource)
			if m.cfg.rejectUnknown {
				m.cfg.resultHandler(w, r, &httpvalidator.Result{
					Status: http.StatusNotFound,
					Errors: []httpvalidator.ValidationError{{
						Message:  fmt.Sprintf("operation %s %s is not declared", r.Method, resource),
						Location: httpvalidator.LocationPath,
					}},
				})
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		req, result := m.requestContext(r, set)
		if result == nil {
			result = set.Validate(req)
		}
		if result != nil {
			m.cfg.logger.Debug("request rejected", "operation", set.Key(), "status", result.Status, "errors", len(result.Errors))
			m.cfg.resultHandler(w, r, result)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, req)))
	})
}

// resourceOf returns the path template of the operation serving r.
func (m *middleware) resourceOf(r *http.Request) string {
	if m.cfg.resource != nil {
		return m.cfg.resource(r)
	}
	pattern := ""
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		pattern = rctx.RoutePattern()
	}
	if pattern == "" {
		pattern = r.URL.Path
	}
	if base := strings.TrimSuffix(m.cfg.basePath, "/"); base != "" {
		pattern = strings.TrimPrefix(pattern, base)
		if pattern == "" {
			pattern = "/"
		}
	}
	return templateOf(pattern)
}

// templateOf drops chi regular expressions from a route pattern:
// "/pets/{id:[0-9]+}" becomes "/pets/{id}".
func templateOf(pattern string) string {
	if !strings.Contains(pattern, ":") {
		return pattern
	}
	var b strings.Builder
	depth, skipping := 0, false
	for _, c := range pattern {
		switch c {
		case '{':
			depth++
			if depth == 1 {
				b.WriteRune(c)
				continue
			}
		case '}':
			depth--
			if depth == 0 {
				skipping = false
				b.WriteRune(c)
				continue
			}
		case ':':
			if depth == 1 {
				skipping = true
				continue
			}
		}
		if !skipping {
			b.WriteRune(c)
		}
	}
	return b.String()
}

func (m *middleware) requestContext(r *http.Request, set *httpvalidator.ValidatorSet) (httpvalidator.RequestContext, *httpvalidator.Result) {
	s := set.Schemas()
	req := httpvalidator.RequestContext{
		Path:     r.URL.Path,
		Resource: s.Resource,
		Method:   r.Method,
		Headers:  m.headers(r, s),
		Query:    m.query(r, s),
		Params:   m.params(r, s),
	}
	body, result := m.body(r, s)
	req.Body = body
	return req, result
}

func (m *middleware) params(r *http.Request, s httpvalidator.Schemas) map[string]any {
	out := make(map[string]any)
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return out
	}
	for i, key := range rctx.URLParams.Keys {
		if key == "*" || i >= len(rctx.URLParams.Values) {
			continue
		}
		out[key] = m.coerce([]string{rctx.URLParams.Values[i]}, propertySchema(s.Path, key))
	}
	return out
}

func (m *middleware) query(r *http.Request, s httpvalidator.Schemas) map[string]any {
	values := r.URL.Query()
	out := make(map[string]any, len(values))
	for name, vs := range values {
		out[name] = m.coerce(vs, propertySchema(s.Query, name))
	}
	return out
}

func (m *middleware) headers(r *http.Request, s httpvalidator.Schemas) map[string]any {
	out := make(map[string]any, len(r.Header)+1)
	caser := cases.Lower(language.Und)
	for name, vs := range r.Header {
		if len(vs) == 0 {
			continue
		}
		key := name
		if s.HeadersLowercase {
			key = caser.String(name)
		}
		out[name] = m.coerce(vs[:1], propertySchema(s.Headers, key))
	}
	if r.Host != "" {
		out["Host"] = r.Host
	}
	return out
}

func (m *middleware) coerce(values []string, schema map[string]any) any {
	if !m.cfg.coerce {
		if len(values) == 1 {
			return values[0]
		}
		return stringsToAny(values)
	}
	return coerceValues(values, schema)
}

// WriteResult writes a Result as application/json with the Result status.
func WriteResult(w http.ResponseWriter, _ *http.Request, result *httpvalidator.Result) {
	data, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.Status)
	_, _ = w.Write(append(data, '\n'))
}
