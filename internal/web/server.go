// Package web exposes the published snapshot to overlay clients: a
// rendered widget page per layout, a flat JSON endpoint polled by the
// page, and small control routes for layout and lock changes.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net"
	"net/http"

	"github.com/Crypto90/nowplayingd/internal/config"
	"github.com/Crypto90/nowplayingd/internal/domain"
	"github.com/Crypto90/nowplayingd/internal/settings"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server is a pure reader of the snapshot store; its only writes go to
// the settings manager on user action.
type Server struct {
	logger   *zap.Logger
	snapshot domain.SnapshotReader
	settings *settings.Manager
	addr     string
	tmpl     *template.Template
	srv      *http.Server
}

// NewServer creates the HTTP surface; Start binds and serves.
func NewServer(
	logger *zap.Logger,
	cfg *config.AppConfig,
	snap domain.SnapshotReader,
	mgr *settings.Manager,
) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		logger:   logger,
		snapshot: snap,
		settings: mgr,
		addr:     cfg.Addr(),
		tmpl:     tmpl,
	}
	s.srv = &http.Server{Addr: cfg.Addr(), Handler: s.Handler()}
	return s, nil
}

// Handler returns the route table; exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/media", s.handleMedia)
	mux.HandleFunc("/reload", s.handleReload)
	mux.HandleFunc("/layout", s.handleLayout)
	mux.HandleFunc("/lock", s.handleLock)
	return mux
}

// Start binds the listen address and serves in the background. Binding
// happens synchronously so a taken port fails startup instead of being
// logged from a goroutine.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.addr, err)
	}
	s.logger.Info("HTTP surface listening", zap.String("addr", s.addr))

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server terminated", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the server down, waiting for in-flight requests up to the
// context deadline.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	layout := s.settings.Get().Layout
	snap := s.snapshot.Get()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, string(layout)+".html", snap); err != nil {
		s.logger.Error("Failed to render layout",
			zap.String("layout", string(layout)),
			zap.Error(err))
	}
}

// mediaPayload is the flat wire structure overlay clients poll.
type mediaPayload struct {
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
	Cover    string  `json:"cover"`
	AppID    string  `json:"app_id"`
	Status   string  `json:"status"`
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot.Get()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	if err := json.NewEncoder(w).Encode(mediaPayload{
		Title:    snap.Title,
		Artist:   snap.Artist,
		Position: snap.Position,
		Duration: snap.Duration,
		Cover:    snap.Cover,
		AppID:    snap.AppID,
		Status:   string(snap.Status),
	}); err != nil {
		s.logger.Error("Failed to encode media payload", zap.Error(err))
	}
}

// handleReload forces connected browser sources to re-render after a
// layout change.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	layout := domain.Layout(r.FormValue("layout"))
	if !layout.Valid() {
		http.Error(w, "unknown layout", http.StatusBadRequest)
		return
	}

	s.settings.SetLayout(layout)
	http.Redirect(w, r, "/reload", http.StatusSeeOther)
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Empty app clears the lock.
	s.settings.SetLockedApp(r.FormValue("app"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
