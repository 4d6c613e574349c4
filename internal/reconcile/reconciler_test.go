package reconcile

import (
	"testing"

	"finance-viewer/internal/component"
	"finance-viewer/internal/widgets"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	buttonClass component.Class = "Button"
	labelClass  component.Class = "Label"
	rowClass    component.Class = "Row"
)

type fixture struct {
	cache *widgets.Cache
	rec   *Reconciler
	root  *fyne.Container
	made  map[component.WidgetKey]int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	test.NewTempApp(t)

	f := &fixture{root: container.NewVBox(), made: make(map[component.WidgetKey]int)}
	reg := widgets.NewRegistry()
	reg.Register(buttonClass, widgets.Factory{
		Make: func(d component.Descriptor) (*widgets.Handle, error) {
			b := widget.NewButton(d.Attr("label", ""), nil)
			if h, ok := d.Callback("clicked"); ok {
				b.OnTapped = h
			}
			return &widgets.Handle{Object: b}, nil
		},
		Update: func(h *widgets.Handle, d component.Descriptor) error {
			h.Object.(*widget.Button).SetText(d.Attr("label", ""))
			return nil
		},
	})
	reg.Register(labelClass, widgets.Factory{
		Make: func(d component.Descriptor) (*widgets.Handle, error) {
			return &widgets.Handle{Object: widget.NewLabel(d.Attr("text", ""))}, nil
		},
		Update: func(h *widgets.Handle, d component.Descriptor) error {
			h.Object.(*widget.Label).SetText(d.Attr("text", ""))
			return nil
		},
	})
	reg.Register(rowClass, widgets.Factory{
		Make: func(d component.Descriptor) (*widgets.Handle, error) {
			box := container.NewHBox()
			return &widgets.Handle{Object: box, Content: box}, nil
		},
	})

	f.cache = widgets.NewCache(reg, nil)
	f.rec = New(f.cache, nil)
	return f
}

func (f *fixture) apply(t *testing.T, old, next *component.Component) Stats {
	t.Helper()
	stats, err := f.rec.Reconcile(old, next, f.root)
	require.NoError(t, err)
	return stats
}

func (f *fixture) handle(t *testing.T, class component.Class, instance string) *widgets.Handle {
	t.Helper()
	h, ok := f.cache.Get(component.Key(class, instance))
	require.True(t, ok, "%s(%s) not cached", class, instance)
	return h
}

func signIn(label string) component.Component {
	return component.Group("root",
		component.Leaf(component.Key(buttonClass, "signin")).WithAttribute("label", label),
	)
}

func rows(ids ...string) component.Component {
	children := make([]component.Component, 0, len(ids))
	for _, id := range ids {
		children = append(children, component.Node(component.Key(rowClass, id),
			component.Leaf(component.Key(labelClass, id+"-name")).WithAttribute("text", id),
		))
	}
	return component.Group("root", children...)
}

func TestMountAttachesThroughGroups(t *testing.T) {
	f := newFixture(t)
	tree := component.Group("outer",
		component.Group("inner", component.Leaf(component.Key(buttonClass, "a"))),
		component.Leaf(component.Key(buttonClass, "b")),
	)

	stats := f.apply(t, nil, &tree)

	assert.Equal(t, 2, stats.Mounted)
	assert.Equal(t, 2, stats.Attached)
	require.Len(t, f.root.Objects, 2)
	assert.Same(t, f.handle(t, buttonClass, "a").Object, f.root.Objects[0])
	assert.Same(t, f.handle(t, buttonClass, "b").Object, f.root.Objects[1])
	assert.True(t, f.root.Objects[0].Visible())
	assert.True(t, f.root.Visible())
}

func TestMountNestsChildrenInContent(t *testing.T) {
	f := newFixture(t)
	tree := rows("tx1")

	f.apply(t, nil, &tree)

	row := f.handle(t, rowClass, "tx1")
	name := f.handle(t, labelClass, "tx1-name")
	require.Len(t, row.Content.Objects, 1)
	assert.Same(t, name.Object, row.Content.Objects[0])
	assert.Same(t, row.Content, name.Parent())
}

func TestIdempotentRebuild(t *testing.T) {
	f := newFixture(t)
	first := rows("tx1", "tx2")
	f.apply(t, nil, &first)

	again := rows("tx1", "tx2")
	stats := f.apply(t, &first, &again)

	assert.False(t, stats.Changed())
	assert.Zero(t, stats.Attached)
	assert.Zero(t, stats.Detached)
}

func TestLabelChangeUpdatesInPlace(t *testing.T) {
	f := newFixture(t)
	tree1 := signIn("Sign in")
	f.apply(t, nil, &tree1)
	before := f.handle(t, buttonClass, "signin")

	tree2 := signIn("Signing in…")
	stats := f.apply(t, &tree1, &tree2)

	after := f.handle(t, buttonClass, "signin")
	assert.Same(t, before, after)
	assert.Equal(t, "Signing in…", after.Object.(*widget.Button).Text)
	assert.Equal(t, 1, stats.Updated)
	assert.Zero(t, stats.Attached)
	assert.Zero(t, stats.Detached)
	assert.Zero(t, stats.Mounted)
	assert.Zero(t, stats.Unmounted)
}

func TestRowSwapEvictsAndMounts(t *testing.T) {
	f := newFixture(t)
	tree1 := rows("tx1")
	f.apply(t, nil, &tree1)
	old := f.handle(t, rowClass, "tx1")

	tree2 := rows("tx2")
	stats := f.apply(t, &tree1, &tree2)

	_, ok := f.cache.Get(component.Key(rowClass, "tx1"))
	assert.False(t, ok)
	_, ok = f.cache.Get(component.Key(labelClass, "tx1-name"))
	assert.False(t, ok)
	assert.False(t, old.Object.Visible())

	fresh := f.handle(t, rowClass, "tx2")
	require.Len(t, f.root.Objects, 1)
	assert.Same(t, fresh.Object, f.root.Objects[0])
	assert.Equal(t, 1, stats.Detached)
	assert.Equal(t, 2, stats.Unmounted)
	assert.Equal(t, 2, stats.Mounted)
}

func TestStructuralReplaceOnIdentityChange(t *testing.T) {
	f := newFixture(t)
	tree1 := component.Group("root",
		component.Node(component.Key(rowClass, "loading"),
			component.Leaf(component.Key(labelClass, "msg")).WithAttribute("text", "Loading..."),
		),
	)
	f.apply(t, nil, &tree1)
	label := f.handle(t, labelClass, "msg")

	// Same child key under a different parent identity: never patched, always rebuilt.
	tree2 := component.Group("root",
		component.Node(component.Key(rowClass, "done"),
			component.Leaf(component.Key(labelClass, "msg")).WithAttribute("text", "Loading..."),
		),
	)
	stats := f.apply(t, &tree1, &tree2)

	assert.NotSame(t, label, f.handle(t, labelClass, "msg"))
	_, ok := f.cache.Get(component.Key(rowClass, "loading"))
	assert.False(t, ok)
	assert.Equal(t, 2, stats.Unmounted)
	assert.Equal(t, 2, stats.Mounted)
	require.Len(t, f.root.Objects, 1)
	assert.Same(t, f.handle(t, rowClass, "done").Object, f.root.Objects[0])
}

func TestRootIdentityChangeReplacesEverything(t *testing.T) {
	f := newFixture(t)
	tree1 := component.Group("signed-out", component.Leaf(component.Key(buttonClass, "signin")))
	f.apply(t, nil, &tree1)

	tree2 := component.Group("signed-in", component.Leaf(component.Key(labelClass, "welcome")))
	f.apply(t, &tree1, &tree2)

	require.Len(t, f.root.Objects, 1)
	assert.Same(t, f.handle(t, labelClass, "welcome").Object, f.root.Objects[0])
	assert.Equal(t, 1, f.cache.Len())
}

func TestIdentityStabilityAcrossUnrelatedChanges(t *testing.T) {
	f := newFixture(t)
	tree1 := rows("tx1", "tx2")
	f.apply(t, nil, &tree1)
	tx1 := f.handle(t, rowClass, "tx1")

	tree2 := rows("tx1", "tx3")
	f.apply(t, &tree1, &tree2)

	assert.Same(t, tx1, f.handle(t, rowClass, "tx1"))
}

func TestReorderDoesNotReposition(t *testing.T) {
	f := newFixture(t)
	tree1 := rows("a", "b")
	f.apply(t, nil, &tree1)

	tree2 := rows("b", "a")
	stats := f.apply(t, &tree1, &tree2)

	assert.False(t, stats.Changed())
	assert.Same(t, f.handle(t, rowClass, "a").Object, f.root.Objects[0])
	assert.Same(t, f.handle(t, rowClass, "b").Object, f.root.Objects[1])
}

func TestKeyMovedBetweenParentsSurvives(t *testing.T) {
	f := newFixture(t)
	moving := component.Leaf(component.Key(labelClass, "moving")).WithAttribute("text", "x")
	tree1 := component.Group("root",
		component.Node(component.Key(rowClass, "left")),
		component.Node(component.Key(rowClass, "right"), moving),
	)
	f.apply(t, nil, &tree1)
	h := f.handle(t, labelClass, "moving")

	tree2 := component.Group("root",
		component.Node(component.Key(rowClass, "left"), moving),
		component.Node(component.Key(rowClass, "right")),
	)
	stats := f.apply(t, &tree1, &tree2)

	assert.Same(t, h, f.handle(t, labelClass, "moving"))
	assert.Same(t, f.handle(t, rowClass, "left").Content, h.Parent())
	assert.Empty(t, f.handle(t, rowClass, "right").Content.Objects)
	assert.Zero(t, stats.Unmounted)
}

func TestTeardown(t *testing.T) {
	f := newFixture(t)
	tree := rows("tx1", "tx2")
	f.apply(t, nil, &tree)

	stats := f.apply(t, &tree, nil)

	assert.Zero(t, f.cache.Len())
	assert.Empty(t, f.root.Objects)
	assert.Equal(t, 4, stats.Unmounted)
}

func TestUnknownClassFails(t *testing.T) {
	f := newFixture(t)
	tree := component.Group("root", component.Leaf(component.Key("Spinner", "x")))

	_, err := f.rec.Reconcile(nil, &tree, f.root)
	assert.ErrorIs(t, err, widgets.ErrUnknownClass)
}

func TestChildrenOnLeafClassFails(t *testing.T) {
	f := newFixture(t)
	tree := component.Node(component.Key(buttonClass, "x"), component.Leaf(component.Key(labelClass, "y")))

	_, err := f.rec.Reconcile(nil, &tree, f.root)
	assert.ErrorIs(t, err, ErrNotContainer)
}

func TestCallbacksReachHandler(t *testing.T) {
	f := newFixture(t)
	clicks := 0
	tree := component.Group("root",
		component.Leaf(component.Key(buttonClass, "go")).WithCallback("clicked", func() { clicks++ }),
	)
	f.apply(t, nil, &tree)

	test.Tap(f.handle(t, buttonClass, "go").Object.(*widget.Button))
	assert.Equal(t, 1, clicks)
}
