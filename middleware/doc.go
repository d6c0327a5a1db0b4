// Package middleware validates incoming HTTP requests with an
// httpvalidator.Validator before they reach a handler.
//
// The middleware derives the operation from the chi route pattern, collects
// path, query and header parameters, decodes the body by its Content-Type and
// coerces string parameters to their declared types. Invalid requests are
// answered with the Result status and a JSON body; valid requests continue to
// the next handler with the decoded request available through FromContext.
//
// The route pattern is only known once chi has routed the request, so install
// the middleware inline, e.g. with r.With or inside r.Group:
//
//	v, _ := httpvalidator.NewFromParsed(parsed)
//	validate, _ := middleware.New(v)
//
//	r := chi.NewRouter()
//	r.Group(func(r chi.Router) {
//	    r.Use(validate)
//	    r.Post("/pets", createPet)
//	})
package middleware
