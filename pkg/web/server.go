// Package web serves the moodbot dashboard: a JSON API for accounts and
// state, websocket streams for live updates and camera frames, and the
// Prometheus endpoint.
package web

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teslashibe/go-moodbot/pkg/account"
	"github.com/teslashibe/go-moodbot/pkg/camera"
	"github.com/teslashibe/go-moodbot/pkg/hub"
	"github.com/teslashibe/go-moodbot/pkg/pipeline"
	"github.com/teslashibe/go-moodbot/pkg/stabilizer"
	"github.com/teslashibe/go-moodbot/pkg/ui"
)

// Status describes the pipeline and sessions.
type Status struct {
	Mode     pipeline.Mode `json:"mode"`
	Running  bool          `json:"running"`
	Sessions int           `json:"sessions"`
}

// Backend is what the dashboard drives. Login and Logout also start and
// stop the pipeline.
type Backend interface {
	Snapshot() *ui.Snapshot
	Status() Status
	Register(username, email, password, confirm string) error
	Login(username, password string) (*account.Session, error)
	Logout(sessionID string) error
}

// Server is the web dashboard server
type Server struct {
	app       *fiber.App
	port      string
	backend   Backend
	cameras   *camera.Manager
	logger    *slog.Logger
	updateHub *hub.Hub
	cameraHub *hub.Hub
}

// Config holds server settings.
type Config struct {
	Port      string
	StaticDir string
}

// NewServer creates the dashboard. cameras may be nil, in which case the
// camera settings routes are not registered.
func NewServer(cfg Config, backend Backend, cameras *camera.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		port:      cfg.Port,
		backend:   backend,
		cameras:   cameras,
		logger:    logger,
		updateHub: hub.New("updates", logger),
		cameraHub: hub.New("camera", logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Moodbot Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Get("/history", s.handleHistory)
	api.Get("/status", s.handleStatus)
	api.Post("/register", s.handleRegister)
	api.Post("/login", s.handleLogin)
	api.Post("/logout", s.handleLogout)
	if cameras != nil {
		api.Get("/camera", s.handleGetCamera)
		api.Post("/camera", s.handleSetCamera)
		api.Get("/camera/presets", s.handleCameraPresets)
	}

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/updates", websocket.New(s.handleUpdatesWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	s.app = app
	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go s.updateHub.Run(ctx)
	go s.cameraHub.Run(ctx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("web dashboard listening", "url", "http://localhost:"+s.port)
		errc <- s.app.Listen(":" + s.port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.app.ShutdownWithContext(shutdownCtx)
	}
}

// Render implements ui.Renderer. It runs on the UI loop and never blocks:
// the hubs drop messages for clients that fall behind.
func (s *Server) Render(ev pipeline.UpdateEvent, snap *ui.Snapshot) {
	if err := s.updateHub.BroadcastJSON(NewUpdateMessage(ev, snap)); err != nil {
		s.logger.Warn("encode update failed", "error", err)
	}
	if ev.Frame != nil {
		s.cameraHub.BroadcastBinary(ev.Frame)
	}
}

// UpdateMessage is sent on /ws/updates for every applied event.
type UpdateMessage struct {
	Type      string       `json:"type"` // snapshot, update or notice
	Seq       uint64       `json:"seq,omitempty"`
	Observed  string       `json:"observed,omitempty"`
	Decision  string       `json:"decision,omitempty"`
	Emotion   string       `json:"emotion,omitempty"`
	Color     string       `json:"color,omitempty"`
	Response  string       `json:"response,omitempty"`
	Faces     int          `json:"faces"`
	Notice    string       `json:"notice,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	State     *ui.Snapshot `json:"state,omitempty"`
}

// NewUpdateMessage converts an applied event. The full state is attached
// whenever the visible text changed.
func NewUpdateMessage(ev pipeline.UpdateEvent, snap *ui.Snapshot) UpdateMessage {
	if ev.Notice != "" {
		return UpdateMessage{Type: "notice", Notice: ev.Notice, Timestamp: ev.Timestamp, State: snap}
	}
	msg := UpdateMessage{
		Type:      "update",
		Seq:       ev.Seq,
		Observed:  string(ev.Observed),
		Decision:  ev.Decision.Kind.String(),
		Emotion:   string(ev.Emotion),
		Color:     ev.Color,
		Response:  ev.Response,
		Faces:     len(ev.Detections),
		Timestamp: ev.Timestamp,
	}
	if ev.Decision.Kind != stabilizer.None {
		msg.State = snap
	}
	return msg
}

// SnapshotMessage is the first message a new /ws/updates client receives.
func SnapshotMessage(snap *ui.Snapshot) UpdateMessage {
	return UpdateMessage{Type: "snapshot", Seq: snap.Seq, Timestamp: snap.UpdatedAt, State: snap}
}
