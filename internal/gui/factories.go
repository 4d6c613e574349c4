package gui

import (
	"fmt"

	"finance-viewer/internal/component"
	"finance-viewer/internal/ui"
	"finance-viewer/internal/widgets"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// onlyEvents rejects callbacks a widget class cannot emit.
func onlyEvents(d component.Descriptor, allowed ...string) error {
	for _, ev := range d.Events() {
		ok := false
		for _, a := range allowed {
			if ev == a {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%w: unsupported event %q", widgets.ErrMalformed, ev)
		}
	}
	return nil
}

func wrongObject(h *widgets.Handle, want string) error {
	return fmt.Errorf("%w: %s holds %T, want %s", widgets.ErrMalformed, h.Key(), h.Object, want)
}

// ButtonFactory builds push buttons. Attributes: label. Events: clicked.
func ButtonFactory() widgets.Factory {
	bind := func(b *widget.Button, d component.Descriptor) {
		b.OnTapped = nil
		if h, ok := d.Callback(ui.EventClicked); ok {
			b.OnTapped = h
		}
	}
	return widgets.Factory{
		Make: func(d component.Descriptor) (*widgets.Handle, error) {
			if err := onlyEvents(d, ui.EventClicked); err != nil {
				return nil, err
			}
			b := widget.NewButton(d.Attr(ui.AttrLabel, ""), nil)
			bind(b, d)
			return &widgets.Handle{Object: b}, nil
		},
		Update: func(h *widgets.Handle, d component.Descriptor) error {
			b, ok := h.Object.(*widget.Button)
			if !ok {
				return wrongObject(h, "*widget.Button")
			}
			if err := onlyEvents(d, ui.EventClicked); err != nil {
				return err
			}
			b.SetText(d.Attr(ui.AttrLabel, ""))
			bind(b, d)
			return nil
		},
		Destroy: func(h *widgets.Handle) {
			if b, ok := h.Object.(*widget.Button); ok {
				b.OnTapped = nil
			}
		},
	}
}

// LabelFactory builds text labels. Attributes: text.
func LabelFactory() widgets.Factory {
	return widgets.Factory{
		Make: func(d component.Descriptor) (*widgets.Handle, error) {
			if err := onlyEvents(d); err != nil {
				return nil, err
			}
			return &widgets.Handle{Object: widget.NewLabel(d.Attr(ui.AttrText, ""))}, nil
		},
		Update: func(h *widgets.Handle, d component.Descriptor) error {
			l, ok := h.Object.(*widget.Label)
			if !ok {
				return wrongObject(h, "*widget.Label")
			}
			l.SetText(d.Attr(ui.AttrText, ""))
			return nil
		},
	}
}

func boxLayout(orientation string) (fyne.Layout, error) {
	switch orientation {
	case "", ui.Vertical:
		return layout.NewVBoxLayout(), nil
	case ui.Horizontal:
		return layout.NewHBoxLayout(), nil
	default:
		return nil, fmt.Errorf("%w: orientation %q", widgets.ErrMalformed, orientation)
	}
}

// BoxFactory builds linear containers. Attributes: orientation
// (vertical, the default, or horizontal).
func BoxFactory() widgets.Factory {
	return widgets.Factory{
		Make: func(d component.Descriptor) (*widgets.Handle, error) {
			if err := onlyEvents(d); err != nil {
				return nil, err
			}
			l, err := boxLayout(d.Attr(ui.AttrOrientation, ""))
			if err != nil {
				return nil, err
			}
			box := container.New(l)
			return &widgets.Handle{Object: box, Content: box}, nil
		},
		Update: func(h *widgets.Handle, d component.Descriptor) error {
			l, err := boxLayout(d.Attr(ui.AttrOrientation, ""))
			if err != nil {
				return err
			}
			if h.Applied().Attr(ui.AttrOrientation, "") != d.Attr(ui.AttrOrientation, "") {
				h.Content.Layout = l
				h.Content.Refresh()
			}
			return nil
		},
	}
}

// FrameFactory builds a titled card whose body stacks its children
// vertically. Attributes: label (the title, optional).
func FrameFactory() widgets.Factory {
	return widgets.Factory{
		Make: func(d component.Descriptor) (*widgets.Handle, error) {
			if err := onlyEvents(d); err != nil {
				return nil, err
			}
			body := container.NewVBox()
			card := widget.NewCard(d.Attr(ui.AttrLabel, ""), "", body)
			return &widgets.Handle{Object: card, Content: body}, nil
		},
		Update: func(h *widgets.Handle, d component.Descriptor) error {
			card, ok := h.Object.(*widget.Card)
			if !ok {
				return wrongObject(h, "*widget.Card")
			}
			card.SetTitle(d.Attr(ui.AttrLabel, ""))
			return nil
		},
	}
}

// LoadingBarFactory builds an indeterminate progress bar.
func LoadingBarFactory() widgets.Factory {
	return widgets.Factory{
		Make: func(d component.Descriptor) (*widgets.Handle, error) {
			if err := onlyEvents(d); err != nil {
				return nil, err
			}
			return &widgets.Handle{Object: widget.NewProgressBarInfinite()}, nil
		},
		Destroy: func(h *widgets.Handle) {
			if bar, ok := h.Object.(*widget.ProgressBarInfinite); ok {
				bar.Stop()
			}
		},
	}
}

// NewRegistry maps every class the tree builder emits onto a factory.
func NewRegistry() *widgets.Registry {
	button := ButtonFactory()
	box := BoxFactory()

	reg := widgets.NewRegistry()
	reg.Register(ui.SignInButton, button)
	reg.Register(ui.GetTransButton, button)
	reg.Register(ui.MainBox, box)
	reg.Register(ui.TransBox, box)
	reg.Register(ui.TransRow, box)
	reg.Register(ui.AccountBox, box)
	reg.Register(ui.LabelFrame, FrameFactory())
	reg.Register(ui.SomeLabel, LabelFactory())
	reg.Register(ui.LoadingBar, LoadingBarFactory())
	return reg
}
