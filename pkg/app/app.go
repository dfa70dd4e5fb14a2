// Package app wires the pipeline, the UI loop, accounts and the dashboard
// into one process.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/teslashibe/go-moodbot/internal/config"
	"github.com/teslashibe/go-moodbot/internal/log"
	"github.com/teslashibe/go-moodbot/pkg/account"
	"github.com/teslashibe/go-moodbot/pkg/camera"
	"github.com/teslashibe/go-moodbot/pkg/detection"
	"github.com/teslashibe/go-moodbot/pkg/metrics"
	"github.com/teslashibe/go-moodbot/pkg/pipeline"
	"github.com/teslashibe/go-moodbot/pkg/response"
	"github.com/teslashibe/go-moodbot/pkg/term"
	"github.com/teslashibe/go-moodbot/pkg/ui"
	"github.com/teslashibe/go-moodbot/pkg/web"
)

// SimulationNotice is shown once when the classifier could not be loaded.
const SimulationNotice = "Emotion detection model not found. Using simulated emotions."

// Analyzer is a pipeline analyzer that holds native resources.
type Analyzer interface {
	pipeline.Analyzer
	Close() error
}

// AnalyzerFactory loads the face locator and classifier.
type AnalyzerFactory func(detection.Config) (Analyzer, error)

// OpenerFactory builds the camera opener from the live camera settings.
type OpenerFactory func(*camera.Manager) pipeline.CameraOpener

// App owns every long-lived component.
type App struct {
	config *config.Config
	logger *slog.Logger

	newAnalyzer AnalyzerFactory
	newOpener   OpenerFactory
	accountOpts []account.Option

	cameras  *camera.Manager
	accounts *account.Store
	analyzer Analyzer
	worker   *pipeline.Worker
	queue    *ui.Queue
	loop     *ui.Loop
	web      *web.Server
	notice   string

	// Serializes login and logout so start/stop follow the session count.
	sessionMu sync.Mutex
}

// Option configures an App.
type Option func(*App)

// WithAnalyzerFactory sets how the vision models are loaded. Without it
// the app always simulates.
func WithAnalyzerFactory(f AnalyzerFactory) Option {
	return func(a *App) { a.newAnalyzer = f }
}

// WithOpenerFactory sets how cameras are opened.
func WithOpenerFactory(f OpenerFactory) Option {
	return func(a *App) { a.newOpener = f }
}

// WithAccountOptions passes options to the account store.
func WithAccountOptions(opts ...account.Option) Option {
	return func(a *App) { a.accountOpts = append(a.accountOpts, opts...) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// New creates an application from validated configuration.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{config: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = log.Component("app")
	}
	return a, nil
}

// Init loads the responses and models and builds the pipeline. A missing
// or broken model switches the app to simulation for its lifetime.
func (a *App) Init() error {
	cfg := a.config

	pool, err := response.Load(cfg.Responses.File)
	if err != nil {
		return fmt.Errorf("load responses: %w", err)
	}

	seed := cfg.Pipeline.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := response.NewRand(seed)
	gen := response.NewGenerator(pool, rng)

	a.cameras = camera.NewManager(cfg.CameraSettings())
	a.accounts = account.NewStore(a.accountOpts...)
	a.queue = ui.NewQueue(log.Component("ui"))
	a.loop = ui.NewLoop(a.queue, cfg.UI.HistorySize, log.Component("ui"))

	opts := []pipeline.Option{
		pipeline.WithRand(rng),
		pipeline.WithLogger(log.Component("pipeline")),
		pipeline.WithQuality(func() int { return a.cameras.GetConfig().Quality }),
	}
	switch {
	case cfg.Pipeline.Simulate:
		a.logger.Info("simulation requested, skipping model load")
	case a.newAnalyzer == nil:
		a.notice = SimulationNotice
	default:
		an, err := a.newAnalyzer(cfg.Detection())
		if err != nil {
			a.logger.Warn("emotion model unavailable, simulating", "error", err)
			a.notice = SimulationNotice
		} else {
			a.analyzer = an
			opts = append(opts, pipeline.WithAnalyzer(an))
		}
	}

	var open pipeline.CameraOpener
	if a.newOpener != nil {
		open = a.newOpener(a.cameras)
	}
	a.worker, err = pipeline.New(cfg.PipelineSettings(), open, a.queue, gen, opts...)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}

	if cfg.Web.Enabled {
		a.web = web.NewServer(web.Config{Port: cfg.Web.Port, StaticDir: cfg.Web.StaticDir}, a, a.cameras, log.Component("web"))
		a.loop.AddRenderer(a.web)
	}
	if cfg.UI.Terminal {
		a.loop.AddRenderer(term.New(os.Stdout))
	}

	a.logger.Info("initialized",
		"mode", a.worker.Mode(),
		"seed", seed,
		"web", cfg.Web.Enabled,
		"terminal", cfg.UI.Terminal)
	return nil
}

// Run blocks until ctx is cancelled or the dashboard fails.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan error, 1)
	go func() { loopDone <- a.loop.Run(ctx) }()

	if a.config.Pipeline.AutoStart {
		a.startPipeline()
	}

	var err error
	if a.web != nil {
		err = a.web.Run(ctx)
		cancel()
	} else {
		<-ctx.Done()
	}

	a.worker.Stop()
	a.worker.Wait()
	<-loopDone
	return err
}

// Shutdown releases the vision models. Call it after Run returns.
func (a *App) Shutdown() {
	if a.worker != nil {
		a.worker.Stop()
		a.worker.Wait()
	}
	if a.analyzer != nil {
		if err := a.analyzer.Close(); err != nil {
			a.logger.Warn("close analyzer", "error", err)
		}
		a.analyzer = nil
	}
}

// Worker exposes the pipeline for status checks.
func (a *App) Worker() *pipeline.Worker {
	return a.worker
}

// startPipeline starts the worker and repeats the simulation notice, which
// the UI shows only once.
func (a *App) startPipeline() {
	if a.notice != "" {
		a.queue.Enqueue(pipeline.NoticeEvent(a.notice, time.Now()))
	}
	if err := a.worker.Start(); err != nil {
		a.logger.Error("pipeline start failed", "error", err)
		a.queue.Enqueue(pipeline.NoticeEvent("Could not start camera: "+err.Error(), time.Now()))
	}
}

// Snapshot implements web.Backend.
func (a *App) Snapshot() *ui.Snapshot {
	return a.loop.Snapshot()
}

// Status implements web.Backend.
func (a *App) Status() web.Status {
	return web.Status{
		Mode:     a.worker.Mode(),
		Running:  a.worker.Running(),
		Sessions: a.accounts.Active(),
	}
}

// Register implements web.Backend.
func (a *App) Register(username, email, password, confirm string) error {
	_, err := a.accounts.Register(username, email, password, confirm)
	return err
}

// Login implements web.Backend. A successful login starts the pipeline.
func (a *App) Login(username, password string) (*account.Session, error) {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	sess, err := a.accounts.Login(username, password)
	if err != nil {
		return nil, err
	}
	metrics.ActiveSessions.Set(float64(a.accounts.Active()))
	a.logger.Info("login", "user", sess.Username, "session", sess.ID)
	a.startPipeline()
	return sess, nil
}

// Logout implements web.Backend. The pipeline stops with the last session.
func (a *App) Logout(sessionID string) error {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	if err := a.accounts.Logout(sessionID); err != nil {
		return err
	}
	active := a.accounts.Active()
	metrics.ActiveSessions.Set(float64(active))
	a.logger.Info("logout", "session", sessionID, "remaining", active)
	if active == 0 {
		a.worker.Stop()
	}
	return nil
}
