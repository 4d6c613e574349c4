package component

import "fmt"

// Class is the widget class tag that selects a native factory.
type Class string

// WidgetKey identifies one logical widget across rebuilds. Instance
// disambiguates repeated items of the same class, e.g. one per transaction.
type WidgetKey struct {
	Class    Class
	Instance string
}

// Key builds a WidgetKey.
func Key(class Class, instance string) WidgetKey {
	return WidgetKey{Class: class, Instance: instance}
}

func (k WidgetKey) String() string {
	if k.Instance == "" {
		return string(k.Class)
	}
	return fmt.Sprintf("%s(%s)", k.Class, k.Instance)
}

// ID is the identity of a tree node: either a widget key or a group name.
// The zero value is invalid.
type ID struct {
	widget WidgetKey
	group  string
	isWid  bool
}

// WidgetID returns the identity of a widget-bearing node.
func WidgetID(key WidgetKey) ID {
	return ID{widget: key, isWid: true}
}

// GroupID returns the identity of a purely structural node.
func GroupID(name string) ID {
	return ID{group: name}
}

// IsWidget reports whether the identity carries a native widget.
func (id ID) IsWidget() bool {
	return id.isWid
}

// WidgetKey returns the key of a widget identity.
func (id ID) WidgetKey() (WidgetKey, bool) {
	return id.widget, id.isWid
}

func (id ID) String() string {
	if id.isWid {
		return "widget:" + id.widget.String()
	}
	return "group:" + id.group
}
