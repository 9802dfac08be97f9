package boardedit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationOptions tunes editor-side strictness. The fullest editor variant
// requires both title and layout; lighter variants can relax either.
type ValidationOptions struct {
	RequireTitle  bool
	RequireLayout bool
}

// DefaultValidationOptions requires title and layout.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{RequireTitle: true, RequireLayout: true}
}

var uriSchemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

// NormalizeHTTPURL validates and canonicalizes a user-entered web address in
// one step. Schemeless input gets https:// prepended; anything that does not
// parse to an http or https URL with a host is rejected.
func NormalizeHTTPURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if !uriSchemePattern.MatchString(raw) {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}
	if u.Host == "" {
		return "", false
	}
	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), true
}

// ValidateDraft checks shared requirements and the type-specific rule,
// returning an empty string when the draft can be saved.
func (r *TypeRegistry) ValidateDraft(d Draft, opts ValidationOptions) string {
	if opts.RequireTitle && strings.TrimSpace(d.Title) == "" {
		return msgTitleRequired
	}
	if opts.RequireLayout && strings.TrimSpace(d.Layout) == "" {
		return msgLayoutRequired
	}
	handler, _ := r.Resolve(d.Type)
	return handler.Validate(d)
}

// BuildPayload produces the persistence request body for a draft. It refuses
// to build a payload for any draft ValidateDraft would reject, so payload
// construction and validation always agree.
func (r *TypeRegistry) BuildPayload(d Draft, opts ValidationOptions) (UpsertWidget, bool) {
	if msg := r.ValidateDraft(d, opts); msg != "" {
		return UpsertWidget{}, false
	}
	handler, _ := r.Resolve(d.Type)
	config, ok := handler.BuildConfig(d)
	if !ok {
		return UpsertWidget{}, false
	}
	return UpsertWidget{
		Type:    string(d.Type),
		Title:   strings.TrimSpace(d.Title),
		Layout:  strings.TrimSpace(d.Layout),
		Config:  config,
		Enabled: d.Enabled,
		Order:   d.Order,
	}, true
}

// ConfigValidator validates persisted config payloads against the schema a
// type handler declares. Used at the persistence boundary; the draft editor
// relies on the per-type Validate funcs instead.
type ConfigValidator interface {
	Validate(t WidgetType, config map[string]any) error
}

// JSONSchemaValidator compiles handler schemas on first use and caches them.
type JSONSchemaValidator struct {
	registry *TypeRegistry
	mu       sync.RWMutex
	compiled map[WidgetType]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator over the registry's schemas.
func NewJSONSchemaValidator(registry *TypeRegistry) *JSONSchemaValidator {
	return &JSONSchemaValidator{
		registry: registry,
		compiled: make(map[WidgetType]*jsonschema.Schema),
	}
}

// Validate ensures config satisfies the type's schema. Types without a schema
// (including unknown tags) pass through.
func (v *JSONSchemaValidator) Validate(t WidgetType, config map[string]any) error {
	handler, _ := v.registry.Resolve(t)
	if len(handler.Schema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(t, handler)
	if err != nil {
		return err
	}
	payload := map[string]any{}
	if config != nil {
		data, err := json.Marshal(config)
		if err != nil {
			return fmt.Errorf("boards: marshal config for %s: %w", t, err)
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("boards: normalize config for %s: %w", t, err)
		}
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("boards: configuration for %s failed validation: %w", t, err)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(t WidgetType, handler TypeHandler) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[t]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(handler.Schema)
	if err != nil {
		return nil, fmt.Errorf("boards: marshal schema %s: %w", t, err)
	}
	compiler := jsonschema.NewCompiler()
	name := string(t) + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("boards: load schema %s: %w", t, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("boards: compile schema %s: %w", t, err)
	}
	v.mu.Lock()
	v.compiled[t] = compiled
	v.mu.Unlock()
	return compiled, nil
}
