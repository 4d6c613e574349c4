package widgets

import (
	"errors"
	"fmt"
	"sort"

	"finance-viewer/internal/component"
)

var (
	// ErrUnknownClass means the tree builder produced a class the registry
	// does not know. The class set is closed, so this is a build bug.
	ErrUnknownClass = errors.New("widgets: no factory registered for class")
	// ErrMalformed is returned by factories for descriptors they cannot honour.
	ErrMalformed = errors.New("widgets: malformed descriptor")
)

// Factory constructs and maintains the native widgets of one class.
// Make must wire the descriptor callbacks; it may be called repeatedly with
// identical input since the cache decides how often it runs.
type Factory struct {
	Make    func(d component.Descriptor) (*Handle, error)
	Update  func(h *Handle, d component.Descriptor) error
	Destroy func(h *Handle)
}

// Registry maps class tags to factories.
type Registry struct {
	factories map[component.Class]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[component.Class]Factory)}
}

// Register installs factory for class, replacing any previous entry.
func (r *Registry) Register(class component.Class, factory Factory) {
	if factory.Make == nil {
		panic(fmt.Sprintf("widgets: factory for %s has no Make", class))
	}
	r.factories[class] = factory
}

// Lookup returns the factory for class.
func (r *Registry) Lookup(class component.Class) (Factory, error) {
	f, ok := r.factories[class]
	if !ok {
		return Factory{}, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}
	return f, nil
}

// Classes lists registered classes in sorted order.
func (r *Registry) Classes() []component.Class {
	out := make([]component.Class, 0, len(r.factories))
	for c := range r.factories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
