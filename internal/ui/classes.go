package ui

import "finance-viewer/internal/component"

// Widget classes produced by Build. The native side registers one factory
// per class.
const (
	SignInButton   component.Class = "SignInButton"
	GetTransButton component.Class = "GetTransButton"
	MainBox        component.Class = "MainBox"
	LabelFrame     component.Class = "LabelFrame"
	SomeLabel      component.Class = "SomeLabel"
	TransBox       component.Class = "TransBox"
	TransRow       component.Class = "TransRow"
	AccountBox     component.Class = "AccountBox"
	LoadingBar     component.Class = "LoadingBar"
)

// Classes lists every class Build can emit.
func Classes() []component.Class {
	return []component.Class{
		SignInButton, GetTransButton, MainBox, LabelFrame, SomeLabel,
		TransBox, TransRow, AccountBox, LoadingBar,
	}
}

// Attribute and event names understood by the native factories.
const (
	AttrLabel       = "label"
	AttrText        = "text"
	AttrOrientation = "orientation"

	Horizontal = "horizontal"
	Vertical   = "vertical"

	EventClicked = "clicked"
)
