package boardedit

import (
	"fmt"
	"sort"
	"sync"
)

// ScratchField names one of the flattened draft fields a widget type binds to.
type ScratchField string

const (
	FieldEmbedURL   ScratchField = "embedUrl"
	FieldLinkURL    ScratchField = "linkUrl"
	FieldPlacesText ScratchField = "placesText"
)

// TypeHandler bundles everything the editor needs to know about one widget
// type: which scratch fields it owns, how to validate a draft, how to build
// the persisted config payload, and how to seed scratch fields from stored
// config. Validate returns an empty string when the draft is acceptable.
type TypeHandler struct {
	Type        WidgetType
	Name        string
	Fields      []ScratchField
	Schema      map[string]any
	Validate    func(d Draft) string
	BuildConfig func(d Draft) (map[string]any, bool)
	Extract     func(config map[string]any, d *Draft)
}

func (h TypeHandler) owns(field ScratchField) bool {
	for _, f := range h.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// TypeHook lets packages register widget types during init().
type TypeHook func(reg *TypeRegistry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []TypeHook
)

// RegisterTypeHook registers a hook executed against new registries.
func RegisterTypeHook(h TypeHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// TypeRegistry maps widget type tags to their handlers. Unknown tags resolve
// to a pass-through handler so server-sent types the build does not know
// about still render and edit without crashing.
type TypeRegistry struct {
	mu       sync.RWMutex
	handlers map[WidgetType]TypeHandler
}

// NewTypeRegistry builds a registry with the builtin widget types and applies
// global hooks.
func NewTypeRegistry() *TypeRegistry {
	reg := &TypeRegistry{handlers: map[WidgetType]TypeHandler{}}
	for _, h := range builtinTypeHandlers() {
		_ = reg.Register(h)
	}
	_ = reg.ApplyHooks()
	return reg
}

// ApplyHooks executes registered type hooks.
func (r *TypeRegistry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// Register stores a type handler, filling safe defaults for optional funcs.
func (r *TypeRegistry) Register(h TypeHandler) error {
	if h.Type == "" {
		return fmt.Errorf("boards: widget type tag is required")
	}
	if h.Validate == nil {
		h.Validate = func(Draft) string { return "" }
	}
	if h.BuildConfig == nil {
		h.BuildConfig = func(Draft) (map[string]any, bool) { return map[string]any{}, true }
	}
	if h.Extract == nil {
		h.Extract = func(map[string]any, *Draft) {}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Type] = h
	return nil
}

// Resolve returns the handler for a type tag. The second result is false when
// the tag was unknown and the pass-through handler is returned instead.
func (r *TypeRegistry) Resolve(t WidgetType) (TypeHandler, bool) {
	r.mu.RLock()
	h, ok := r.handlers[t]
	r.mu.RUnlock()
	if !ok {
		return unknownTypeHandler(t), false
	}
	return h, true
}

// Known reports whether the type tag has a registered handler.
func (r *TypeRegistry) Known(t WidgetType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[t]
	return ok
}

// Types lists registered type tags in stable order.
func (r *TypeRegistry) Types() []WidgetType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]WidgetType, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func unknownTypeHandler(t WidgetType) TypeHandler {
	return TypeHandler{
		Type:        t,
		Name:        "Unknown",
		Validate:    func(Draft) string { return "" },
		BuildConfig: func(Draft) (map[string]any, bool) { return map[string]any{}, true },
		Extract:     func(map[string]any, *Draft) {},
	}
}
