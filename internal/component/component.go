// Package component holds the immutable virtual tree the UI is described with.
//
// A tree is built fresh for every rebuild from business state and thrown away
// once it has been diffed against its successor. Nodes are values; every
// modifier returns a modified copy and never touches the receiver.
package component

import "fmt"

// Component is one node of the virtual tree. Widget nodes carry a descriptor,
// group nodes never do. Child order is layout order and is kept apart from
// the lookup map.
type Component struct {
	id         ID
	descriptor *Descriptor
	order      []ID
	children   map[ID]Component
}

// Leaf returns a widget-bearing node without children.
func Leaf(key WidgetKey) Component {
	return Component{id: WidgetID(key), descriptor: &Descriptor{}}
}

// Node returns a widget-bearing node whose children are laid out inside it.
func Node(key WidgetKey, children ...Component) Component {
	return Leaf(key).WithChildren(children...)
}

// Group returns a structural node with no native counterpart. Its children
// attach to the nearest enclosing widget.
func Group(name string, children ...Component) Component {
	return Component{id: GroupID(name)}.WithChildren(children...)
}

// ID returns the node identity.
func (c Component) ID() ID {
	return c.id
}

// Descriptor returns the widget descriptor; ok is false for group nodes.
func (c Component) Descriptor() (Descriptor, bool) {
	if c.descriptor == nil {
		return Descriptor{}, false
	}
	return *c.descriptor, true
}

// Children returns child identities in layout order.
func (c Component) Children() []ID {
	out := make([]ID, len(c.order))
	copy(out, c.order)
	return out
}

// Child looks up a direct child by identity.
func (c Component) Child(id ID) (Component, bool) {
	child, ok := c.children[id]
	return child, ok
}

// Len returns the number of direct children.
func (c Component) Len() int {
	return len(c.order)
}

// WithChildren returns a copy with children appended after the existing ones.
// Two children with the same identity under one parent is a builder bug.
func (c Component) WithChildren(children ...Component) Component {
	out := c.shallow()
	out.order = make([]ID, len(c.order), len(c.order)+len(children))
	copy(out.order, c.order)
	out.children = make(map[ID]Component, len(c.children)+len(children))
	for k, v := range c.children {
		out.children[k] = v
	}
	for _, child := range children {
		if _, dup := out.children[child.id]; dup {
			panic(fmt.Sprintf("component: duplicate child %s under %s", child.id, c.id))
		}
		out.order = append(out.order, child.id)
		out.children[child.id] = child
	}
	return out
}

// WithAttributes returns a copy with attrs merged over the existing attributes.
func (c Component) WithAttributes(attrs map[string]string) Component {
	out, d := c.withDescriptor()
	if d.Attributes == nil {
		d.Attributes = make(map[string]string, len(attrs))
	}
	for k, v := range attrs {
		d.Attributes[k] = v
	}
	return out
}

// WithAttribute sets a single attribute on a copy.
func (c Component) WithAttribute(name, value string) Component {
	return c.WithAttributes(map[string]string{name: value})
}

// WithCallback binds handler to a native event on a copy.
func (c Component) WithCallback(event string, handler Handler) Component {
	out, d := c.withDescriptor()
	if d.Callbacks == nil {
		d.Callbacks = make(map[string]Handler, 1)
	}
	d.Callbacks[event] = handler
	return out
}

// Walk visits the node and its descendants depth first in layout order.
func (c Component) Walk(visit func(Component)) {
	visit(c)
	for _, id := range c.order {
		c.children[id].Walk(visit)
	}
}

func (c Component) shallow() Component {
	return Component{id: c.id, descriptor: c.descriptor, order: c.order, children: c.children}
}

func (c Component) withDescriptor() (Component, *Descriptor) {
	if c.descriptor == nil {
		panic(fmt.Sprintf("component: %s has no native widget to describe", c.id))
	}
	out := c.shallow()
	d := c.descriptor.clone()
	out.descriptor = &d
	return out, &d
}
