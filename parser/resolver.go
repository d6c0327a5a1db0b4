package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/TheManSpeaker/openapi-request-validator-generator/internal/schemautil"
	"github.com/TheManSpeaker/openapi-request-validator-generator/oaserrors"
)

// MaxRefDepth is the maximum nesting depth walked while dereferencing.
// It prevents stack exhaustion on deeply nested (but non-circular) documents.
const MaxRefDepth = 100

// RefResolver dereferences local $ref pointers ("#/...") in a decoded document.
//
// Circular references are not errors: the reference that closes a cycle is left
// in place as a $ref, and HasCircularRefs reports that this happened.
type RefResolver struct {
	// resolving tracks refs currently being expanded in the recursion stack
	resolving map[string]bool
	// maxDepth bounds the walk; zero means MaxRefDepth
	maxDepth int
	// hasCircularRefs is set when a cycle was left unexpanded
	hasCircularRefs bool
	logger          Logger
}

// NewRefResolver creates a resolver for local references.
func NewRefResolver() *RefResolver {
	return &RefResolver{
		resolving: make(map[string]bool),
		logger:    NopLogger{},
	}
}

// ResolveLocal returns the value a local reference points to.
func (r *RefResolver) ResolveLocal(doc map[string]any, ref string) (any, error) {
	pointer, ok := strings.CutPrefix(ref, "#")
	if !ok {
		return nil, &oaserrors.ReferenceError{
			Ref:     ref,
			RefType: "local",
			Message: "only local references are supported",
		}
	}
	if pointer == "" || pointer == "/" {
		return doc, nil
	}

	parts := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	current := any(doc)
	for i, part := range parts {
		part = schemautil.UnescapePointer(part)
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[part]
			if !ok {
				return nil, &oaserrors.ReferenceError{
					Ref:     ref,
					RefType: "local",
					Message: fmt.Sprintf("missing key %q at #/%s", part, strings.Join(parts[:i], "/")),
				}
			}
			current = next
		case []any:
			index, err := strconv.Atoi(part)
			if err != nil || index < 0 || index >= len(v) {
				return nil, &oaserrors.ReferenceError{
					Ref:     ref,
					RefType: "local",
					Message: fmt.Sprintf("invalid array index %q (length %d)", part, len(v)),
				}
			}
			current = v[index]
		default:
			return nil, &oaserrors.ReferenceError{
				Ref:     ref,
				RefType: "local",
				Message: fmt.Sprintf("cannot traverse into %T at #/%s", v, strings.Join(parts[:i], "/")),
			}
		}
	}
	return current, nil
}

// ResolveAllRefs replaces every resolvable $ref in doc with a copy of its target.
// doc is modified in place.
func (r *RefResolver) ResolveAllRefs(doc map[string]any) error {
	r.hasCircularRefs = false
	return r.resolveRefsRecursive(doc, doc, 0)
}

// HasCircularRefs reports whether the last ResolveAllRefs left any cycle unexpanded.
func (r *RefResolver) HasCircularRefs() bool {
	return r.hasCircularRefs
}

func (r *RefResolver) limit() int {
	if r.maxDepth > 0 {
		return r.maxDepth
	}
	return MaxRefDepth
}

func (r *RefResolver) resolveRefsRecursive(root map[string]any, current any, depth int) error {
	if depth > r.limit() {
		return &oaserrors.ResourceLimitError{
			ResourceType: "ref_depth",
			Limit:        int64(r.limit()),
			Actual:       int64(depth),
			Message:      "structure too deeply nested",
		}
	}

	switch v := current.(type) {
	case map[string]any:
		ref, ok := v["$ref"].(string)
		if !ok {
			for _, val := range v {
				if err := r.resolveRefsRecursive(root, val, depth+1); err != nil {
					return err
				}
			}
			return nil
		}

		if ref == "#" || ref == "#/" || r.resolving[ref] {
			r.hasCircularRefs = true
			r.logger.Debug("leaving circular reference in place", "ref", ref)
			return nil
		}
		if !strings.HasPrefix(ref, "#") {
			// External references are left for the compiler's schema registry.
			return nil
		}

		// ref stays marked until its expansion has been walked, so a schema that
		// reaches itself again stops at the inner $ref.
		r.resolving[ref] = true
		defer delete(r.resolving, ref)

		resolved, err := r.ResolveLocal(root, ref)
		if err != nil {
			return err
		}
		resolvedMap, ok := resolved.(map[string]any)
		if !ok {
			return &oaserrors.ReferenceError{
				Ref:     ref,
				RefType: "local",
				Message: fmt.Sprintf("target is not an object (got %T)", resolved),
			}
		}

		// Copy before clearing v: the target may be v itself, and expanded cycles
		// must never become Go pointer cycles.
		target := schemautil.CopySchema(resolvedMap)
		clear(v)
		for k, val := range target {
			v[k] = val
		}
		return r.resolveRefsRecursive(root, v, depth+1)

	case []any:
		for _, item := range v {
			if err := r.resolveRefsRecursive(root, item, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
