package rest

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gridrooms/tictactoe-server/internal/registry"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server serves the index and per-match pages. The pages are thin
// shells; all game traffic goes over the WebSocket server.
type Server struct {
	logger     *slog.Logger
	registry   *registry.Registry
	templates  *template.Template
	socketPort string
}

func New(logger *slog.Logger, reg *registry.Registry, socketPort string) (*Server, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		logger:     logger.With("component", "rest"),
		registry:   reg,
		templates:  templates,
		socketPort: socketPort,
	}, nil
}

// Start - starts the HTTP server and shuts it down when the context is
// canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", that.indexHandler)
	mux.HandleFunc("/game/", that.gameHandler)
	mux.HandleFunc("/ping", that.pingHandler)

	return mux
}

func (that *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := map[string]string{"SocketPort": that.socketPort}
	if err := that.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		that.logger.Error("failed to render index page", "error", err)
	}
}

// gameHandler - renders the page for one match; unknown identifiers get
// a 404 rather than creating anything.
func (that *Server) gameHandler(w http.ResponseWriter, r *http.Request) {
	matchID := strings.TrimPrefix(r.URL.Path, "/game/")
	if matchID == "" || strings.Contains(matchID, "/") {
		http.NotFound(w, r)
		return
	}

	if _, err := that.registry.Get(matchID); err != nil {
		http.NotFound(w, r)
		return
	}

	data := map[string]string{
		"MatchID":    matchID,
		"SocketPort": that.socketPort,
	}
	if err := that.templates.ExecuteTemplate(w, "game.html", data); err != nil {
		that.logger.Error("failed to render game page", "error", err, "matchID", matchID)
	}
}

func (that *Server) pingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
