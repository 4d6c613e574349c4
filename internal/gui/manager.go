package gui

import (
	"finance-viewer/internal/logger"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
)

// Manager owns the window chrome. The reconciler mounts the component tree
// into Root; everything else in the window is static.
type Manager struct {
	window     fyne.Window
	logger     logger.Logger
	root       *fyne.Container
	scroll     *container.Scroll
	isShutdown bool
}

func NewManager(window fyne.Window, log logger.Logger) *Manager {
	root := container.NewVBox()
	manager := &Manager{
		window: window,
		logger: log,
		root:   root,
		scroll: container.NewVScroll(root),
	}

	log.Info("GUIManager", "initialized", nil)
	return manager
}

// Root is the container the widget tree is attached to.
func (m *Manager) Root() *fyne.Container {
	return m.root
}

func (m *Manager) GetMainContainer() fyne.CanvasObject {
	return m.scroll
}

func (m *Manager) GetWindow() fyne.Window {
	return m.window
}

func (m *Manager) ShowError(title string, err error) {
	m.logger.Error("GUIManager", err, map[string]interface{}{
		"title": title,
	})

	fyne.Do(func() {
		dialog.ShowError(err, m.window)
	})
}

func (m *Manager) Shutdown() {
	if m.isShutdown {
		return
	}

	m.isShutdown = true
	m.logger.Info("GUIManager", "shutdown initiated", nil)
}
