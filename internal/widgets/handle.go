package widgets

import (
	"finance-viewer/internal/component"

	"fyne.io/fyne/v2"
)

// Handle is the retained native side of one logical widget.
type Handle struct {
	// Object is what gets attached to the parent container.
	Object fyne.CanvasObject
	// Content receives children; nil for widgets that cannot hold any.
	Content *fyne.Container

	key     component.WidgetKey
	applied component.Descriptor
	parent  *fyne.Container
}

// Key returns the logical key the handle is cached under.
func (h *Handle) Key() component.WidgetKey {
	return h.key
}

// Applied returns the descriptor last built or updated into the widget.
func (h *Handle) Applied() component.Descriptor {
	return h.applied
}

// Parent returns the container the handle is currently attached to.
func (h *Handle) Parent() *fyne.Container {
	return h.parent
}

// AttachTo places the widget into container, detaching it from any other
// parent first. It reports whether the native graph changed.
func (h *Handle) AttachTo(container *fyne.Container) bool {
	if h.parent == container {
		return false
	}
	h.Detach()
	container.Add(h.Object)
	h.parent = container
	return true
}

// Detach removes the widget from its parent. It reports whether it was attached.
func (h *Handle) Detach() bool {
	if h.parent == nil {
		return false
	}
	h.parent.Remove(h.Object)
	h.parent = nil
	return true
}
