package mcpserver

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecInput_ResolveFile(t *testing.T) {
	specCache.reset()
	spec, err := specInput{File: writeSpec(t, petstoreSpec)}.resolve(validatorFlags{})
	require.NoError(t, err)
	assert.Len(t, spec.parsed.Endpoints, 3)
	assert.Len(t, spec.validator.Sets(), 3)
}

func TestSpecInput_ResolveContent(t *testing.T) {
	specCache.reset()
	spec, err := specInput{Content: petstoreSpec}.resolve(validatorFlags{})
	require.NoError(t, err)
	_, ok := spec.validator.Set("/pets/{petId}", "GET")
	assert.True(t, ok)
}

func TestSpecInput_ResolveErrors(t *testing.T) {
	tests := []struct {
		name  string
		input specInput
		want  string
	}{
		{"none provided", specInput{}, "exactly one of file or content"},
		{"both provided", specInput{File: "a.yaml", Content: petstoreSpec}, "exactly one of file or content"},
		{"file not found", specInput{File: "/nonexistent/openapi.yaml"}, "failed to read file"},
		{"not an api description", specInput{Content: "title: nope\n"}, "unable to detect OpenAPI version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.input.resolve(validatorFlags{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSpecInput_InlineSizeLimit(t *testing.T) {
	withConfig(t, func(c *serverConfig) { c.MaxInlineSize = 16 })
	_, err := specInput{Content: petstoreSpec}.resolve(validatorFlags{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQVALIDATOR_MAX_INLINE_SIZE")
}

func TestSpecCache_HitOnSameFile(t *testing.T) {
	specCache.reset()
	path := writeSpec(t, petstoreSpec)

	first, err := specInput{File: path}.resolve(validatorFlags{})
	require.NoError(t, err)
	second, err := specInput{File: path}.resolve(validatorFlags{})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, specCache.size())
}

func TestSpecCache_MissOnModifiedFile(t *testing.T) {
	specCache.reset()
	path := writeSpec(t, petstoreSpec)

	first, err := specInput{File: path}.resolve(validatorFlags{})
	require.NoError(t, err)

	modified := strings.Replace(petstoreSpec, "maximum: 100", "maximum: 10", 1)
	require.NoError(t, os.WriteFile(path, []byte(modified), 0o600))
	later := time.Now().Add(time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	second, err := specInput{File: path}.resolve(validatorFlags{})
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestSpecCache_FlagsArePartOfKey(t *testing.T) {
	specCache.reset()
	off := false

	first, err := specInput{Content: petstoreSpec}.resolve(validatorFlags{})
	require.NoError(t, err)
	second, err := specInput{Content: petstoreSpec}.resolve(validatorFlags{HeadersLowercase: &off})
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 2, specCache.size())
}

func TestSpecCache_Disabled(t *testing.T) {
	specCache.reset()
	withConfig(t, func(c *serverConfig) { c.CacheEnabled = false })

	first, err := specInput{Content: petstoreSpec}.resolve(validatorFlags{})
	require.NoError(t, err)
	second, err := specInput{Content: petstoreSpec}.resolve(validatorFlags{})
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 0, specCache.size())
}

func TestSpecCache_LRUEviction(t *testing.T) {
	c := &specCacheStore{entries: make(map[string]*cacheEntry), maxSize: 2}
	a, b, d := &compiledSpec{}, &compiledSpec{}, &compiledSpec{}

	c.putWithTTL("a", a, time.Minute)
	time.Sleep(time.Millisecond)
	c.putWithTTL("b", b, time.Minute)
	time.Sleep(time.Millisecond)
	assert.Same(t, a, c.get("a")) // touch a, b becomes oldest
	time.Sleep(time.Millisecond)
	c.putWithTTL("d", d, time.Minute)

	assert.Equal(t, 2, c.size())
	assert.Nil(t, c.get("b"))
	assert.Same(t, a, c.get("a"))
	assert.Same(t, d, c.get("d"))
}

func TestSpecCache_Expiry(t *testing.T) {
	c := &specCacheStore{entries: make(map[string]*cacheEntry), maxSize: 10}
	c.putWithTTL("old", &compiledSpec{}, time.Nanosecond)
	c.putWithTTL("fresh", &compiledSpec{}, time.Hour)
	time.Sleep(time.Millisecond)

	c.sweep()
	assert.Equal(t, 1, c.size())
	assert.Nil(t, c.get("old"))
	assert.NotNil(t, c.get("fresh"))
}

func TestSpecCache_Sweeper(t *testing.T) {
	c := &specCacheStore{entries: make(map[string]*cacheEntry), maxSize: 10}
	c.putWithTTL("old", &compiledSpec{}, time.Nanosecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.startSweeper(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return c.size() == 0 }, time.Second, 5*time.Millisecond)
}

func TestMakeCacheKey(t *testing.T) {
	assert.Empty(t, makeCacheKey(specInput{}, true, true))
	assert.Empty(t, makeCacheKey(specInput{File: "/nonexistent/openapi.yaml"}, true, true))

	k1 := makeCacheKey(specInput{Content: "a"}, true, true)
	k2 := makeCacheKey(specInput{Content: "a"}, true, false)
	k3 := makeCacheKey(specInput{Content: "b"}, true, true)
	assert.True(t, strings.HasPrefix(k1, "content:"))
	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}
