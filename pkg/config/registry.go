package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/akemper/kineto/pkg/export"
)

// ErrRendererNotRegistered is returned by [Registry.CreateRenderer] when no
// factory has been registered under the requested name.
var ErrRendererNotRegistered = errors.New("config: renderer not registered")

// defaultRenderer is used when export.renderer is left empty.
const defaultRenderer = "cut"

// Registry maps renderer names to their constructor functions so the
// export backend stays selectable from configuration. It is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]func(ExportConfig) (export.Renderer, error)
}

// NewRegistry returns a [Registry] with the built-in "cut" renderer
// registered.
func NewRegistry() *Registry {
	r := &Registry{
		renderers: make(map[string]func(ExportConfig) (export.Renderer, error)),
	}
	r.RegisterRenderer(defaultRenderer, func(ExportConfig) (export.Renderer, error) {
		return export.CutRenderer{}, nil
	})
	return r
}

// RegisterRenderer registers a renderer factory under name, replacing any
// previous registration.
func (r *Registry) RegisterRenderer(name string, factory func(ExportConfig) (export.Renderer, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[name] = factory
}

// CreateRenderer instantiates the renderer selected by cfg.Renderer.
func (r *Registry) CreateRenderer(cfg ExportConfig) (export.Renderer, error) {
	name := cfg.Renderer
	if name == "" {
		name = defaultRenderer
	}

	r.mu.RLock()
	factory, ok := r.renderers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRendererNotRegistered, name)
	}
	return factory(cfg)
}
