// Package artifact persists the compile-ready schemas of a document's
// operations and rebuilds validators from them.
//
// A Bundle is the declarative output of validator construction: for every
// operation, the normalized schema of each request part. Writing a bundle at
// build time and compiling it at startup skips parsing and normalizing the
// API description:
//
//	v, _ := httpvalidator.NewFromParsed(parsed)
//	_ = artifact.WriteFile("validators.yaml", artifact.FromValidator(v))
//
//	bundle, _ := artifact.ReadFile("validators.yaml")
//	v, err := bundle.Compile(httpvalidator.WithCustomFormats(formats))
//
// Custom formats, keywords and error transformers are code and are never
// written. Supply them again as options to Compile.
package artifact
