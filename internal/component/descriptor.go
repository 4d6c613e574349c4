package component

import "sort"

// Handler is the target of a native widget event binding.
type Handler func()

// Descriptor describes how a native widget should look and which events it
// forwards. Descriptors are treated as values: modifiers copy before writing.
type Descriptor struct {
	Attributes map[string]string
	Callbacks  map[string]Handler
}

// Attr returns an attribute value or def when unset.
func (d Descriptor) Attr(name, def string) string {
	if v, ok := d.Attributes[name]; ok {
		return v
	}
	return def
}

// Callback returns the handler bound to event, if any.
func (d Descriptor) Callback(event string) (Handler, bool) {
	h, ok := d.Callbacks[event]
	return h, ok && h != nil
}

// Equal compares attributes and the set of bound event names. Handlers are
// functions and are not compared: a node whose handler changes while its
// attributes and event names stay the same is treated as unchanged, and the
// widget keeps the old handler. Bind stable method values, or change the key
// or an attribute along with the handler (per-row closures need this).
func (d Descriptor) Equal(other Descriptor) bool {
	if len(d.Attributes) != len(other.Attributes) || len(d.Callbacks) != len(other.Callbacks) {
		return false
	}
	for k, v := range d.Attributes {
		if ov, ok := other.Attributes[k]; !ok || ov != v {
			return false
		}
	}
	for k := range d.Callbacks {
		if _, ok := other.Callbacks[k]; !ok {
			return false
		}
	}
	return true
}

// Events lists bound event names in a stable order.
func (d Descriptor) Events() []string {
	names := make([]string, 0, len(d.Callbacks))
	for k := range d.Callbacks {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (d Descriptor) clone() Descriptor {
	out := Descriptor{}
	if d.Attributes != nil {
		out.Attributes = make(map[string]string, len(d.Attributes))
		for k, v := range d.Attributes {
			out.Attributes[k] = v
		}
	}
	if d.Callbacks != nil {
		out.Callbacks = make(map[string]Handler, len(d.Callbacks))
		for k, v := range d.Callbacks {
			out.Callbacks[k] = v
		}
	}
	return out
}
