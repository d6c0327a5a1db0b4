// Package httputil provides HTTP helpers shared by the validation packages:
// method normalization and Content-Type matching against declared media types.
package httputil

import (
	"errors"
	"fmt"
	"maps"
	"mime"
	"slices"
	"strings"
)

// HTTP Method Constants, in the lowercase form used as path item keys.
const (
	MethodGet     = "get"
	MethodPut     = "put"
	MethodPost    = "post"
	MethodDelete  = "delete"
	MethodOptions = "options"
	MethodHead    = "head"
	MethodPatch   = "patch"
	MethodTrace   = "trace"
)

// Methods lists the operation keys of a path item in document order.
var Methods = []string{
	MethodGet, MethodPut, MethodPost, MethodDelete,
	MethodOptions, MethodHead, MethodPatch, MethodTrace,
}

// NormalizeMethod returns the upper-case form of an HTTP method.
func NormalizeMethod(method string) string {
	return strings.ToUpper(strings.TrimSpace(method))
}

// Ranking scores for wildcard media type keys.
const (
	scoreAnyType      = 1 // "*/*"
	scoreTypeWildcard = 2 // "text/*"
)

// ErrMalformedContentType is returned when a Content-Type header cannot be parsed.
var ErrMalformedContentType = errors.New("malformed content type")

// ParseContentType returns the bare, lower-case media type of a Content-Type
// header with its parameters discarded. An invalid parameter does not make the
// media type itself unusable.
func ParseContentType(header string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil && !errors.Is(err, mime.ErrInvalidMediaParameter) {
		return "", fmt.Errorf("%w %q: %w", ErrMalformedContentType, header, err)
	}
	return mediaType, nil
}

// MatchMediaType selects the declared media type key that best serves a request
// Content-Type header. It returns "" when nothing matches or the header is empty.
//
// Keys are examined in sorted order. A key containing the request media type
// wins immediately. Otherwise a "type/*" key with the same primary type beats
// "*/*". A malformed header returns ErrMalformedContentType; callers treat it as
// no match.
func MatchMediaType[V any](header string, declared map[string]V) (string, error) {
	if header == "" || len(declared) == 0 {
		return "", nil
	}
	mediaType, err := ParseContentType(header)
	if err != nil {
		return "", err
	}
	primary, _, _ := strings.Cut(mediaType, "/")

	best, bestScore := "", 0
	for _, key := range slices.Sorted(maps.Keys(declared)) {
		k := strings.ToLower(key)
		if strings.Contains(k, mediaType) {
			return key, nil
		}
		switch {
		case k == "*/*":
			if bestScore < scoreAnyType {
				best, bestScore = key, scoreAnyType
			}
		case strings.HasSuffix(k, "/*") && strings.TrimSuffix(k, "/*") == primary:
			if bestScore < scoreTypeWildcard {
				best, bestScore = key, scoreTypeWildcard
			}
		}
	}
	return best, nil
}

// IsValidMediaType validates a declared media type according to RFC 2045/2046.
// Handles wildcards (*/* and type/*) and rejects */subtype.
func IsValidMediaType(mediaType string) bool {
	if mediaType == "*/*" {
		return true
	}
	if strings.HasSuffix(mediaType, "/*") {
		parts := strings.Split(mediaType, "/")
		return len(parts) == 2 && parts[0] != "" && parts[0] != "*"
	}
	_, _, err := mime.ParseMediaType(mediaType)
	return err == nil
}
