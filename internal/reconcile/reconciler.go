// Package reconcile applies the difference between two component trees to the
// retained native widget graph.
//
// Children are matched by identity, never by position. A node whose identity
// changed is unmounted with its whole subtree and the replacement is mounted
// fresh. Already attached widgets are never repositioned when only the order
// of surviving siblings changes.
package reconcile

import (
	"errors"
	"fmt"
	"time"

	"finance-viewer/internal/component"
	"finance-viewer/internal/logger"
	"finance-viewer/internal/widgets"

	"fyne.io/fyne/v2"
)

// ErrNotContainer is returned when a tree gives children to a widget class
// whose factory provides no content container.
var ErrNotContainer = errors.New("reconcile: widget cannot hold children")

// Stats counts the native operations one pass performed.
type Stats struct {
	Mounted   int
	Unmounted int
	Updated   int
	Attached  int
	Detached  int
	Duration  time.Duration
}

// Changed reports whether the pass touched the native graph at all.
func (s Stats) Changed() bool {
	return s.Mounted+s.Unmounted+s.Updated+s.Attached+s.Detached > 0
}

// Reconciler diffs component trees against widgets held in a cache.
type Reconciler struct {
	cache  *widgets.Cache
	logger logger.Logger
}

// New creates a reconciler mutating widgets owned by cache.
func New(cache *widgets.Cache, log logger.Logger) *Reconciler {
	if log == nil {
		log = logger.Nop()
	}
	return &Reconciler{cache: cache, logger: log}
}

// Reconcile transforms the native graph under root from representing old into
// representing next. old is nil on the first pass; next is nil to tear down.
func (r *Reconciler) Reconcile(old, next *component.Component, root *fyne.Container) (Stats, error) {
	start := time.Now()
	p := &pass{r: r, claimed: make(map[component.WidgetKey]bool)}

	var err error
	switch {
	case old == nil && next == nil:
	case old == nil:
		err = p.mount(*next, root)
	case next == nil:
		p.unmount(*old, root)
	default:
		err = p.diff(*old, *next, root)
	}
	root.Show()

	p.stats.Duration = time.Since(start)
	if err != nil {
		r.logger.Error("Reconciler", err, map[string]interface{}{
			"mounted":   p.stats.Mounted,
			"unmounted": p.stats.Unmounted,
		})
		return p.stats, err
	}
	r.logger.Debug("Reconciler", "pass complete", map[string]interface{}{
		"mounted":     p.stats.Mounted,
		"unmounted":   p.stats.Unmounted,
		"updated":     p.stats.Updated,
		"attached":    p.stats.Attached,
		"detached":    p.stats.Detached,
		"duration_us": p.stats.Duration.Microseconds(),
	})
	return p.stats, nil
}

type pass struct {
	r     *Reconciler
	stats Stats
	// claimed holds keys mounted during this pass. A key can move between
	// parents, and the unmount of its old position must not evict it.
	claimed map[component.WidgetKey]bool
}

func (p *pass) diff(old, next component.Component, container *fyne.Container) error {
	if old.ID() != next.ID() {
		p.r.logger.Debug("Reconciler", "identity changed, replacing subtree", map[string]interface{}{
			"old": old.ID().String(),
			"new": next.ID().String(),
		})
		p.unmount(old, container)
		return p.mount(next, container)
	}

	inner := container
	if key, ok := next.ID().WidgetKey(); ok {
		h, cached := p.r.cache.Get(key)
		if !cached {
			p.r.logger.Warning("Reconciler", "kept widget missing from cache, remounting", map[string]interface{}{
				"key": key.String(),
			})
			p.unmount(old, container)
			return p.mount(next, container)
		}
		if err := p.update(key, h, next); err != nil {
			return err
		}
		if next.Len() > 0 || old.Len() > 0 {
			if h.Content == nil {
				return fmt.Errorf("%w: %s", ErrNotContainer, key)
			}
			inner = h.Content
		}
	}

	for _, id := range old.Children() {
		if _, kept := next.Child(id); !kept {
			child, _ := old.Child(id)
			p.unmount(child, inner)
		}
	}
	for _, id := range next.Children() {
		child, _ := next.Child(id)
		if prev, ok := old.Child(id); ok {
			if err := p.diff(prev, child, inner); err != nil {
				return err
			}
			continue
		}
		if err := p.mount(child, inner); err != nil {
			return err
		}
	}
	return nil
}

// update brings a kept widget in line with its new descriptor in place.
func (p *pass) update(key component.WidgetKey, h *widgets.Handle, next component.Component) error {
	p.claimed[key] = true
	d, _ := next.Descriptor()
	if h.Applied().Equal(d) {
		return nil
	}
	if err := p.r.cache.Update(key, d); err != nil {
		return err
	}
	p.stats.Updated++
	return nil
}

func (p *pass) mount(node component.Component, container *fyne.Container) error {
	key, ok := node.ID().WidgetKey()
	if !ok {
		for _, id := range node.Children() {
			child, _ := node.Child(id)
			if err := p.mount(child, container); err != nil {
				return err
			}
		}
		return nil
	}

	d, _ := node.Descriptor()
	h, err := p.r.cache.GetOrMake(key, d)
	if err != nil {
		return err
	}
	if !h.Applied().Equal(d) {
		if err := p.r.cache.Update(key, d); err != nil {
			return err
		}
		p.stats.Updated++
	}
	p.claimed[key] = true
	p.stats.Mounted++

	err = p.r.cache.With(key, func(h *widgets.Handle) error {
		prev := h.Parent()
		if h.AttachTo(container) {
			if prev != nil {
				p.stats.Detached++
			}
			p.stats.Attached++
		}
		return nil
	})
	if err != nil {
		return err
	}

	if node.Len() > 0 {
		if h.Content == nil {
			return fmt.Errorf("%w: %s", ErrNotContainer, key)
		}
		for _, id := range node.Children() {
			child, _ := node.Child(id)
			if err := p.mount(child, h.Content); err != nil {
				return err
			}
		}
		h.Content.Show()
	}
	h.Object.Show()
	return nil
}

func (p *pass) unmount(node component.Component, container *fyne.Container) {
	p.unmountNode(node, container, true)
}

// unmountNode detaches the topmost widgets of the subtree from container and
// evicts every widget below. Descendants leave the graph with their ancestor,
// so only top-level detaches are counted.
func (p *pass) unmountNode(node component.Component, container *fyne.Container, top bool) {
	key, ok := node.ID().WidgetKey()
	if !ok {
		for _, id := range node.Children() {
			child, _ := node.Child(id)
			p.unmountNode(child, container, top)
		}
		return
	}

	h, cached := p.r.cache.Get(key)
	live := cached && !p.claimed[key]
	var content *fyne.Container
	if cached {
		content = h.Content
	}

	if live && top && container != nil && h.Parent() == container {
		h.Detach()
		p.stats.Detached++
	}
	for _, id := range node.Children() {
		child, _ := node.Child(id)
		p.unmountNode(child, content, false)
	}
	if live && p.r.cache.Evict(key) {
		p.stats.Unmounted++
	}
}
