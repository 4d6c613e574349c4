package widgets

import (
	"errors"
	"fmt"

	"finance-viewer/internal/component"
	"finance-viewer/internal/logger"
)

var (
	// ErrLeased is returned when a checked-out key is requested again.
	ErrLeased = errors.New("widgets: key is checked out")
	// ErrNotCached is returned when checking out a key that was never made.
	ErrNotCached = errors.New("widgets: key is not cached")
)

// Cache retains constructed native widgets keyed by logical identity so they
// survive rebuilds. It is owned by the UI goroutine and is not safe for
// concurrent use.
type Cache struct {
	registry *Registry
	logger   logger.Logger
	entries  map[component.WidgetKey]*Handle
	leased   map[component.WidgetKey]*Lease

	made    int
	evicted int
}

// NewCache creates an empty cache building widgets from registry.
func NewCache(registry *Registry, log logger.Logger) *Cache {
	if log == nil {
		log = logger.Nop()
	}
	return &Cache{
		registry: registry,
		logger:   log,
		entries:  make(map[component.WidgetKey]*Handle),
		leased:   make(map[component.WidgetKey]*Lease),
	}
}

// GetOrMake returns the cached handle for key, constructing it from d when
// absent. At most one handle per key exists at any time.
func (c *Cache) GetOrMake(key component.WidgetKey, d component.Descriptor) (*Handle, error) {
	if _, out := c.leased[key]; out {
		return nil, fmt.Errorf("%w: %s", ErrLeased, key)
	}
	if h, ok := c.entries[key]; ok {
		return h, nil
	}

	factory, err := c.registry.Lookup(key.Class)
	if err != nil {
		return nil, err
	}
	h, err := factory.Make(d)
	if err != nil {
		return nil, fmt.Errorf("make %s: %w", key, err)
	}
	if h == nil || h.Object == nil {
		return nil, fmt.Errorf("make %s: %w: factory returned no widget", key, ErrMalformed)
	}
	h.key = key
	h.applied = d
	c.entries[key] = h
	c.made++

	c.logger.Debug("WidgetCache", "widget constructed", map[string]interface{}{
		"key":    key.String(),
		"events": d.Events(),
	})
	return h, nil
}

// Get returns the cached handle without constructing one.
func (c *Cache) Get(key component.WidgetKey) (*Handle, bool) {
	h, ok := c.entries[key]
	return h, ok
}

// Update applies d to the cached widget in place through its class factory.
func (c *Cache) Update(key component.WidgetKey, d component.Descriptor) error {
	return c.With(key, func(h *Handle) error {
		factory, err := c.registry.Lookup(key.Class)
		if err != nil {
			return err
		}
		if factory.Update != nil {
			if err := factory.Update(h, d); err != nil {
				return fmt.Errorf("update %s: %w", key, err)
			}
		}
		h.applied = d
		return nil
	})
}

// Checkout removes key from the cache for the lifetime of the returned lease.
// Nobody else can reach the handle until the lease is checked back in.
func (c *Cache) Checkout(key component.WidgetKey) (*Lease, error) {
	if _, out := c.leased[key]; out {
		return nil, fmt.Errorf("%w: %s", ErrLeased, key)
	}
	h, ok := c.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotCached, key)
	}
	delete(c.entries, key)
	l := &Lease{cache: c, key: key, handle: h}
	c.leased[key] = l
	return l, nil
}

// Checkin restores a leased handle. Checking in twice is a no-op.
func (c *Cache) Checkin(l *Lease) {
	if l == nil || l.returned {
		return
	}
	l.returned = true
	delete(c.leased, l.key)
	c.entries[l.key] = l.handle
}

// With runs fn with key checked out and checks it back in on every exit path,
// including panics.
func (c *Cache) With(key component.WidgetKey, fn func(h *Handle) error) error {
	l, err := c.Checkout(key)
	if err != nil {
		return err
	}
	defer c.Checkin(l)
	return fn(l.handle)
}

// Evict detaches and destroys the widget for key and forgets it. It reports
// whether anything was evicted; leased keys are left alone.
func (c *Cache) Evict(key component.WidgetKey) bool {
	if _, out := c.leased[key]; out {
		c.logger.Warning("WidgetCache", "refusing to evict leased widget", map[string]interface{}{
			"key": key.String(),
		})
		return false
	}
	h, ok := c.entries[key]
	if !ok {
		return false
	}
	delete(c.entries, key)

	h.Detach()
	h.Object.Hide()
	if factory, err := c.registry.Lookup(key.Class); err == nil && factory.Destroy != nil {
		factory.Destroy(h)
	}
	c.evicted++

	c.logger.Debug("WidgetCache", "widget evicted", map[string]interface{}{
		"key": key.String(),
	})
	return true
}

// Len returns the number of cached, not leased, handles.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Stats returns lifetime construction and eviction counts.
func (c *Cache) Stats() (made, evicted int) {
	return c.made, c.evicted
}

// Lease is exclusive temporary ownership of a cached handle.
type Lease struct {
	cache    *Cache
	key      component.WidgetKey
	handle   *Handle
	returned bool
}

// Handle returns the leased handle.
func (l *Lease) Handle() *Handle {
	return l.handle
}

// Key returns the leased key.
func (l *Lease) Key() component.WidgetKey {
	return l.key
}

// Release checks the lease back in; safe to defer and to call repeatedly.
func (l *Lease) Release() {
	l.cache.Checkin(l)
}
