package compiler

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/TheManSpeaker/openapi-request-validator-generator/internal/schemautil"
	"github.com/TheManSpeaker/openapi-request-validator-generator/oaserrors"
	"github.com/go-json-experiment/json"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Compiler compiles schemas into Validators. It holds a registry of named
// schemas that compiled schemas may reference by id.
//
// A Compiler is safe for concurrent use.
type Compiler struct {
	mu    sync.Mutex
	cfg   *config
	js    *jsonschema.Compiler
	reg   *registry
	cache map[uint64][]cacheEntry
	seq   int
}

type cacheEntry struct {
	doc       map[string]any
	validator *Validator
}

// New creates a Compiler.
func New(opts ...Option) (*Compiler, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	js := jsonschema.NewCompiler()
	js.Draft = cfg.draft
	js.AssertFormat = true
	js.LoadURL = func(s string) (io.ReadCloser, error) {
		return nil, &oaserrors.ReferenceError{Ref: s, RefType: "registry", Message: "schema is not registered"}
	}
	js.Formats = make(map[string]func(interface{}) bool)

	c := &Compiler{
		cfg:   cfg,
		js:    js,
		reg:   newRegistry(),
		cache: make(map[uint64][]cacheEntry),
	}
	if cfg.wellKnownFormats {
		for name, fn := range WellKnownFormats() {
			js.Formats[name] = fn
		}
	}
	for name, fn := range cfg.formats {
		if err := c.registerFormat(name, fn); err != nil {
			return nil, err
		}
	}
	for name, kw := range cfg.keywords {
		if err := c.registerKeyword(name, kw); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RegisterFormat adds a format predicate. It affects schemas compiled afterwards.
func (c *Compiler) RegisterFormat(name string, fn func(any) bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registerFormat(name, fn)
}

func (c *Compiler) registerFormat(name string, fn func(any) bool) error {
	if name == "" {
		return &oaserrors.ConfigError{Option: "customFormats", Message: "format name cannot be empty"}
	}
	if fn == nil {
		return &oaserrors.ConfigError{Option: "customFormats", Value: name, Message: "format predicate is nil"}
	}
	c.js.Formats[name] = fn
	return nil
}

// RegisterKeyword adds a custom keyword. It affects schemas compiled afterwards.
func (c *Compiler) RegisterKeyword(name string, kw Keyword) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registerKeyword(name, kw)
}

func (c *Compiler) registerKeyword(name string, kw Keyword) error {
	if name == "" {
		return &oaserrors.ConfigError{Option: "customKeywords", Message: "keyword name cannot be empty"}
	}
	if kw.Compile == nil {
		return &oaserrors.ConfigError{Option: "customKeywords", Value: name, Message: "keyword has no compile function"}
	}
	meta, err := metaSchema(name, kw.MetaSchema)
	if err != nil {
		return &oaserrors.ConfigError{Option: "customKeywords", Value: name, Message: "invalid meta schema", Cause: err}
	}
	c.js.RegisterExtension(name, meta, keywordExtension{name: name, kw: kw})
	return nil
}

// AddSchema registers a named schema. Other schemas reach it with {"$ref": id};
// a relative id is resolved against the base URL.
func (c *Compiler) AddSchema(id string, schema map[string]any) error {
	if id == "" {
		return &oaserrors.ConfigError{Option: "schemas", Message: "schema id cannot be empty"}
	}
	doc, err := schemaDocument(schema)
	if err != nil {
		return &oaserrors.ConfigError{Option: "schemas", Value: id, Cause: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	url := c.resolveID(id)
	if _, exists := c.reg.get(url); exists {
		return &oaserrors.ConfigError{Option: "schemas", Value: id, Message: "schema id already registered"}
	}
	data, err := json.Marshal(doc, json.Deterministic(true))
	if err != nil {
		return fmt.Errorf("compiler: encoding schema %s: %w", id, err)
	}
	if err := c.js.AddResource(url, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("compiler: adding schema %s: %w", id, err)
	}
	c.reg.put(url, doc)
	c.reg.alias(id, url)
	c.cfg.logger.Debug("registered schema", "id", id, "url", url)
	return nil
}

// Lookup returns a registered schema by id, URL, or id with a JSON pointer
// fragment. The result must not be modified.
func (c *Compiler) Lookup(ref string) (map[string]any, bool) {
	base, fragment, _ := strings.Cut(ref, "#")
	doc, ok := c.reg.get(base)
	if !ok {
		doc, ok = c.reg.get(c.resolveID(base))
	}
	if !ok {
		return nil, false
	}
	target, ok := pointerGet(doc, fragment)
	if !ok {
		return nil, false
	}
	m, ok := target.(map[string]any)
	return m, ok
}

// Compile compiles a schema. Structurally identical schemas compiled by the
// same Compiler share one Validator.
func (c *Compiler) Compile(schema map[string]any) (*Validator, error) {
	doc, err := schemaDocument(schema)
	if err != nil {
		return nil, fmt.Errorf("compiler: %w", err)
	}
	fp := schemautil.Fingerprint(doc)

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.cache[fp] {
		if reflect.DeepEqual(e.doc, doc) {
			return e.validator, nil
		}
	}

	url := c.nextURL()
	data, err := json.Marshal(doc, json.Deterministic(true))
	if err != nil {
		return nil, fmt.Errorf("compiler: encoding schema: %w", err)
	}
	if err := c.js.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("compiler: %w", err)
	}
	compiled, err := c.js.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compiler: %w", err)
	}
	c.reg.put(url, doc)

	v := &Validator{schema: compiled, doc: doc, reg: c.reg}
	c.cache[fp] = append(c.cache[fp], cacheEntry{doc: doc, validator: v})
	c.cfg.logger.Debug("compiled schema", "url", url, "fingerprint", fp)
	return v, nil
}

// resolveID maps a schema id to its registry URL.
func (c *Compiler) resolveID(id string) string {
	if strings.Contains(id, "://") || strings.HasPrefix(id, "urn:") {
		return id
	}
	return c.cfg.baseURL + strings.TrimPrefix(id, "/")
}

// nextURL returns an unused URL for an anonymous schema. Callers hold c.mu.
func (c *Compiler) nextURL() string {
	for {
		c.seq++
		url := fmt.Sprintf("%scompiled-%d.json", c.cfg.baseURL, c.seq)
		if _, taken := c.reg.get(url); !taken {
			return url
		}
	}
}

// registry maps schema URLs (and ids) to their documents. Validators read it
// to recover the schema values behind violations.
type registry struct {
	mu   sync.RWMutex
	docs map[string]map[string]any
}

func newRegistry() *registry {
	return &registry{docs: make(map[string]map[string]any)}
}

func (r *registry) get(key string) (map[string]any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[key]
	return doc, ok
}

func (r *registry) put(url string, doc map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[url] = doc
}

func (r *registry) alias(id, url string) {
	if id == url {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[id] = r.docs[url]
}

// valueAt resolves an absolute location such as "mem://schemas/a.json#/properties/x".
func (r *registry) valueAt(location string) (any, bool) {
	url, fragment, _ := strings.Cut(location, "#")
	doc, ok := r.get(url)
	if !ok {
		return nil, false
	}
	return pointerGet(doc, fragment)
}

// pointerGet resolves a JSON pointer inside v.
func pointerGet(v any, pointer string) (any, bool) {
	if pointer == "" || pointer == "/" {
		return v, true
	}
	for _, part := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		part = schemautil.UnescapePointer(part)
		switch t := v.(type) {
		case map[string]any:
			next, ok := t[part]
			if !ok {
				return nil, false
			}
			v = next
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(t) {
				return nil, false
			}
			v = t[i]
		default:
			return nil, false
		}
	}
	return v, true
}
