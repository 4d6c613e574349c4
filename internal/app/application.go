package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"finance-viewer/internal/component"
	"finance-viewer/internal/config"
	"finance-viewer/internal/events"
	"finance-viewer/internal/gui"
	"finance-viewer/internal/logger"
	"finance-viewer/internal/models"
	"finance-viewer/internal/provider"
	"finance-viewer/internal/reconcile"
	"finance-viewer/internal/timing"
	"finance-viewer/internal/ui"
	"finance-viewer/internal/widgets"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

const AppVersion = "1.0.0"

// Request kinds tracked by the event machine.
const (
	KindSignIn       events.Kind = "sign_in"
	KindBalances     events.Kind = "get_balances"
	KindTransactions events.Kind = "get_transactions"
)

var ErrUnknownKind = errors.New("app: unknown request kind")

// Options carries the collaborators NewApplication would otherwise create
// itself. Only Config is required.
type Options struct {
	Config     *config.Config
	Logger     logger.Logger
	App        fyne.App
	Executor   events.Executor
	Scheduler  events.Scheduler
	HTTPClient *http.Client
	Now        func() time.Time
}

type Application struct {
	cfg        *config.Config
	fyneApp    fyne.App
	guiManager *gui.Manager
	logger     logger.Logger

	state      *models.State
	cache      *widgets.Cache
	reconciler *reconcile.Reconciler
	machine    *events.Machine[models.Snapshot]
	client     *provider.Client
	handlers   *Handlers
	tree       *component.Component
	timings    *timing.Tracker

	lifecycle *Lifecycle
	ctx       context.Context
	now       func() time.Time
}

func NewApplication(opts Options) (*Application, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("app: configuration is required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	fyneApp := opts.App
	if fyneApp == nil {
		fyneApp = app.NewWithID(cfg.App.ID)
	}
	window := fyneApp.NewWindow(cfg.App.Name)
	window.Resize(fyne.NewSize(cfg.App.Width, cfg.App.Height))
	window.CenterOnScreen()
	window.SetMaster()

	log.Info("Application", "starting application", map[string]interface{}{
		"version":       AppVersion,
		"window_width":  cfg.App.Width,
		"window_height": cfg.App.Height,
		"provider":      cfg.Provider.BaseURL,
		"workers":       cfg.Events.Workers,
	})
	if !cfg.HasCredentials() {
		log.Warning("Application", "provider credentials missing, sign in will fail", map[string]interface{}{
			"env": []string{"FINVIEW_CLIENT_ID", "FINVIEW_SECRET"},
		})
	}

	ctx, cancel := context.WithCancel(context.Background())

	var pool *events.Pool
	executor := opts.Executor
	if executor == nil {
		pool = events.NewPool(cfg.Events.Workers)
		executor = pool
	}
	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = gui.NewScheduler(ctx, log)
	}

	guiManager := gui.NewManager(window, log)
	cache := widgets.NewCache(gui.NewRegistry(), log)
	timings := timing.NewTracker(0)

	application := &Application{
		cfg:        cfg,
		fyneApp:    fyneApp,
		guiManager: guiManager,
		logger:     log,
		state:      models.NewState(),
		cache:      cache,
		reconciler: reconcile.New(cache, log),
		client: provider.New(provider.Options{
			BaseURL:       cfg.Provider.BaseURL,
			ClientID:      cfg.Provider.ClientID,
			Secret:        cfg.Provider.Secret,
			InstitutionID: cfg.Provider.InstitutionID,
			Products:      cfg.Provider.Products,
			HTTPClient:    opts.HTTPClient,
			Logger:        log,
		}),
		timings:   timings,
		lifecycle: NewLifecycle(cancel, pool, guiManager, timings, log),
		ctx:       ctx,
		now:       now,
	}
	application.handlers = NewHandlers(application)
	application.machine = events.New(events.Config[models.Snapshot]{
		Work:      application.work,
		Executor:  executor,
		Scheduler: scheduler,
		Apply:     application.handlers.HandleResponse,
		Rebuild:   application.BuildUI,
		Interval:  cfg.Events.PollInterval,
		Timeout:   cfg.Events.RequestTimeout,
		Context:   ctx,
		Logger:    log,
	})

	log.Info("Application", "initialization complete", nil)
	return application, nil
}

// BuildUI renders the current state and reconciles it into the window. It
// must run on the fyne main goroutine. A reconcile failure means the tree
// builder and the widget registry disagree, which cannot be recovered from.
func (a *Application) BuildUI() {
	next := ui.Build(a.state, ui.Handlers{
		SignIn:  a.handlers.HandleSignIn,
		Refresh: a.handlers.HandleRefresh,
	})

	stats, err := a.reconciler.Reconcile(a.tree, &next, a.guiManager.Root())
	if err != nil {
		a.logger.Error("Application", err, map[string]interface{}{
			"stage": "reconcile",
		})
		panic(fmt.Sprintf("app: reconcile failed: %v", err))
	}
	a.tree = &next
	a.timings.Record("reconcile", stats.Duration)

	if stats.Changed() {
		a.logger.Debug("Application", "ui rebuilt", map[string]interface{}{
			"mounted":   stats.Mounted,
			"unmounted": stats.Unmounted,
			"updated":   stats.Updated,
			"cached":    a.cache.Len(),
		})
	}
}

// work performs one request off the UI goroutine.
func (a *Application) work(ctx context.Context, kind events.Kind, snap models.Snapshot) ([]byte, error) {
	defer a.timings.Start(string(kind))()

	switch kind {
	case KindSignIn:
		return a.client.SignIn(ctx)
	case KindBalances:
		return a.client.Balances(ctx, snap.AccessToken)
	case KindTransactions:
		end := a.now()
		start := end.AddDate(0, 0, -a.cfg.Provider.HistoryDays)
		return a.client.Transactions(ctx, snap.AccessToken, start, end)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

func (a *Application) Run() error {
	window := a.guiManager.GetWindow()
	window.SetCloseIntercept(func() {
		a.logger.Info("Application", "shutdown requested", nil)
		a.Shutdown()
		window.Close()
	})

	window.SetContent(a.guiManager.GetMainContainer())
	a.BuildUI()
	window.Show()
	a.warnMissingCredentials()

	a.logger.Info("Application", "GUI displayed", nil)
	a.fyneApp.Run()

	return nil
}

// warnMissingCredentials tells the user up front that signing in cannot work.
func (a *Application) warnMissingCredentials() bool {
	if a.cfg.HasCredentials() {
		return false
	}
	a.guiManager.ShowError("Configuration", provider.ErrMissingCredentials)
	return true
}

// Quit stops the fyne event loop.
func (a *Application) Quit() {
	a.fyneApp.Quit()
}

func (a *Application) Shutdown() {
	a.lifecycle.Shutdown()
}
