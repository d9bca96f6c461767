package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gamma-omg/lexi-cards/internal/pkg/middleware"
	"github.com/gamma-omg/lexi-cards/internal/pkg/router"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/config"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/media"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/rest"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/service"
	"github.com/gamma-omg/lexi-cards/internal/services/lessons/internal/store"
	"github.com/spf13/cobra"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), a.cfg)
		},
	}
}

func run(ctx context.Context, cfg config.Config) error {
	slog.Info("starting lessons service", "db_driver", cfg.DB.Driver)

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	st := store.NewSQLStore(db)
	mediaStore := media.NewStore(media.Config{
		Root:      cfg.Media.Root,
		MaxWidth:  cfg.Media.MaxWidth,
		MaxHeight: cfg.Media.MaxHeight,
	})

	opts := []rest.APIOption{
		rest.WithLessonService(service.NewLessonService(st)),
		rest.WithCardService(service.NewCardService(st)),
		rest.WithProgressService(service.NewProgressService(st)),
		rest.WithMediaStore(mediaStore),
		rest.WithMaxUploadSize(cfg.Media.MaxSize),
	}
	if cfg.Media.BaseURL != "" {
		base, err := url.Parse(cfg.Media.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid media base url: %w", err)
		}
		opts = append(opts, rest.WithMediaBaseURL(base))
	}
	api := rest.NewAPI(opts...)

	r := router.New()
	r.Use(middleware.Log(), middleware.Recover(), middleware.CORS(cfg.Cors.AllowedOrigins))
	r.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			slog.Warn("readiness check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("GET "+rest.MediaPrefix, http.StripPrefix(rest.MediaPrefix, mediaStore.Handler()))

	public := r.SubRouter("/api")
	api.RegisterPublic(public)

	admin := public.SubRouter("/admin")
	if cfg.Auth.AdminSecret != "" {
		admin.Use(middleware.Auth([]byte(cfg.Auth.AdminSecret)))
	} else {
		slog.Warn("admin endpoints are not protected, set AUTH_ADMIN_SECRET to require a token")
	}
	api.RegisterAdmin(admin)

	httpSrv := &http.Server{
		Addr:         cfg.Http.ListenAddr,
		IdleTimeout:  cfg.Http.IdleTimeout,
		ReadTimeout:  cfg.Http.ReadTimeout,
		WriteTimeout: cfg.Http.WriteTimeout,
		Handler:      r,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Http.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
