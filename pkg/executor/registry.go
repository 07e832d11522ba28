package executor

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/dagflow-io/dagflow/pkg/models"
)

// Metadata carries kind-level flags consulted by the engine.
type Metadata struct {
	// Description is a human-readable summary shown by the kinds listing.
	Description string `json:"description,omitempty"`

	// Cacheable marks the kind's results as safe to memoize. Non-deterministic
	// or effectful kinds must leave this false.
	Cacheable bool `json:"cacheable"`

	// Sink marks the kind as contributing to the execution's final output.
	Sink bool `json:"sink"`
}

// Descriptor describes a node kind: how to build it, how to validate its
// configuration, and the schemas preview tooling exposes.
type Descriptor struct {
	Kind         string         `json:"kind"`
	New          func() Executor `json:"-"`
	ConfigSchema map[string]any `json:"config_schema,omitempty"`
	InputSchema  map[string]any `json:"input_schema,omitempty"`
	OutputSchema map[string]any `json:"output_schema,omitempty"`
	Metadata     Metadata       `json:"metadata"`

	compiled *gojsonschema.Schema
	instance Executor
}

// Executor returns the kind's shared executor instance. It is created once
// at registration; implementations must be safe for concurrent use.
func (d *Descriptor) Executor() Executor {
	return d.instance
}

// Registry maps node kinds to descriptors. It is populated once at process
// start and read-only afterwards; lookups take the read lock only.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]*Descriptor
	order       []string
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		descriptors: make(map[string]*Descriptor),
	}
}

// Register adds a node kind to the registry. Re-registering an identical
// descriptor is a no-op; registering a different descriptor under an
// existing kind fails with ErrDuplicateExecutor.
func (r *Registry) Register(desc Descriptor) error {
	if desc.Kind == "" {
		return fmt.Errorf("node kind cannot be empty")
	}
	if desc.New == nil {
		return fmt.Errorf("descriptor for %s has no factory", desc.Kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.descriptors[desc.Kind]; ok {
		if descriptorsEqual(existing, &desc) {
			return nil
		}
		return fmt.Errorf("%w: %s", models.ErrDuplicateExecutor, desc.Kind)
	}

	if desc.ConfigSchema != nil {
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(desc.ConfigSchema))
		if err != nil {
			return fmt.Errorf("invalid config schema for %s: %w", desc.Kind, err)
		}
		desc.compiled = compiled
	}

	desc.instance = desc.New()

	stored := desc
	r.descriptors[desc.Kind] = &stored
	r.order = append(r.order, desc.Kind)
	return nil
}

// MustRegister registers a descriptor and panics on error. For init wiring.
func (r *Registry) MustRegister(desc Descriptor) {
	if err := r.Register(desc); err != nil {
		panic("failed to register node kind: " + err.Error())
	}
}

// Get retrieves a descriptor by kind.
func (r *Registry) Get(kind string) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, ok := r.descriptors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrExecutorNotFound, kind)
	}

	return desc, nil
}

// Has checks if a kind is registered.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.descriptors[kind]
	return ok
}

// List returns all descriptors in registration order.
func (r *Registry) List() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descs := make([]*Descriptor, 0, len(r.order))
	for _, kind := range r.order {
		descs = append(descs, r.descriptors[kind])
	}

	return descs
}

// Kinds returns all registered kind names in registration order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, len(r.order))
	copy(kinds, r.order)
	return kinds
}

// ValidateConfig validates a node configuration against the kind's config
// schema. A kind without a schema accepts any configuration.
func (r *Registry) ValidateConfig(kind string, config map[string]any) error {
	desc, err := r.Get(kind)
	if err != nil {
		return err
	}

	if desc.compiled == nil {
		return nil
	}

	if config == nil {
		config = map[string]any{}
	}

	result, err := desc.compiled.Validate(gojsonschema.NewGoLoader(config))
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidConfig, err)
	}

	if !result.Valid() {
		first := result.Errors()[0]
		return fmt.Errorf("%w: %s", models.ErrInvalidConfig, first.String())
	}

	return nil
}

// descriptorsEqual compares everything except the factory function, whose
// identity is not comparable in a meaningful way.
func descriptorsEqual(a, b *Descriptor) bool {
	return a.Kind == b.Kind &&
		reflect.DeepEqual(a.ConfigSchema, b.ConfigSchema) &&
		reflect.DeepEqual(a.InputSchema, b.InputSchema) &&
		reflect.DeepEqual(a.OutputSchema, b.OutputSchema) &&
		a.Metadata == b.Metadata
}
