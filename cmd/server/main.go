package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	chatwebui "github.com/okibram/chat-web-ui"
	"github.com/okibram/chat-web-ui/internal/api"
	"github.com/okibram/chat-web-ui/internal/handlers"
	"github.com/okibram/chat-web-ui/internal/services"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	// A .env file is optional; environment beats file either way.
	_ = godotenv.Load()

	cfgDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatal(fmt.Errorf("error getting user config dir: %w", err))
	}
	cfgPath := filepath.Join(cfgDir, "chatwebui")
	if err := os.MkdirAll(cfgPath, 0755); err != nil {
		log.Fatal(fmt.Errorf("error creating config directory: %w", err))
	}

	cfg, err := loadConfig(filepath.Join(cfgPath, "config.yaml"))
	if err != nil {
		log.Fatal(err)
	}

	logger := newLogger(cfg)

	prefs, err := services.NewPrefs(filepath.Join(cfgPath, "prefs.db"))
	if err != nil {
		log.Fatal(fmt.Errorf("error opening preference store: %w", err))
	}

	apiClient := api.NewClient(cfg.APIBaseURL, cfg.requestTimeout(), logger)

	m, err := handlers.NewMain(apiClient, apiClient, apiClient, prefs, logger)
	if err != nil {
		log.Fatal(err)
	}

	// Serve static files
	staticFS, err := fs.Sub(chatwebui.StaticFS, "static")
	if err != nil {
		log.Fatal(err)
	}
	fileServer := http.FileServer(http.FS(staticFS))

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	r.Get("/", m.HandleHome)
	r.Get("/sse", m.HandleSSE)
	r.Get("/healthz", m.HandleHealth)

	r.Post("/sessions", m.HandleNewChat)
	r.Post("/sessions/{id}/rename", m.HandleRenameSession)
	r.Post("/sessions/{id}/delete", m.HandleDeleteSession)
	r.Post("/sessions/{id}/clear", m.HandleClearSession)
	r.Post("/chat", m.HandleChat)

	r.Post("/tools/password-check", m.HandlePasswordCheck)
	r.Post("/tools/scan-text", m.HandleScanText)

	r.Get("/prefs/sidebar", m.HandleGetSidebarPref)
	r.Post("/prefs/sidebar", m.HandleSetSidebarPref)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv.RegisterOnShutdown(func() {
		if err := m.Shutdown(context.Background()); err != nil {
			logger.Error("Failed to shutdown sse server", "err", err.Error())
		}
		if err := prefs.Close(); err != nil {
			logger.Error("Failed to close preference store", "err", err.Error())
		}
	})

	// Channel to listen for errors coming from the listener
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("api", cfg.APIBaseURL))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Blocking select waiting for either interrupt or server error
	select {
	case err := <-serverErrors:
		logger.Error("Server error", "err", err.Error())

	case sig := <-shutdown:
		logger.Info("Start shutdown", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown failed", "err", err.Error())
			if err := srv.Close(); err != nil {
				logger.Error("Forcing server close", "err", err.Error())
			}
		}
	}
}

// newLogger builds the application logger: JSON with rotation when a log file is
// configured, plain text on stdout otherwise.
func newLogger(cfg config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.logLevel()}

	var handler slog.Handler
	if cfg.LogFile != "" {
		handler = slog.NewJSONHandler(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
