package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/web-agent/internal/agent"
	"github.com/sells-group/web-agent/internal/model"
	"github.com/sells-group/web-agent/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for research requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rt, err := initRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Post("/api/research", handleResearch(ctx, rt))
		r.Get("/api/runs", handleListRuns(rt))
		r.Get("/api/runs/{id}", handleGetRun(rt))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

type researchRequest struct {
	Topic       string   `json:"topic"`
	Depth       int      `json:"depth,omitempty"`
	MaxTimeSecs int      `json:"max_time_secs,omitempty"`
	URLs        []string `json:"urls,omitempty"`
}

// handleResearch accepts a request, archives a running entry, and kicks
// the run off in the background. The response carries the run ID for
// later polling.
func handleResearch(serverCtx context.Context, rt *runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req researchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Topic == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "topic is required"})
			return
		}

		var seeds agent.SeedSource
		switch {
		case len(req.URLs) > 0:
			seeds = agent.StaticSeeds(req.URLs)
		case rt.Jina != nil:
			seeds = agent.NewSearchSeeds(rt.Jina, cfg.Agent.Seeds)
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "urls are required when no search key is configured"})
			return
		}

		run, err := rt.Store.CreateRun(r.Context(), req.Topic)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "archive run"})
			return
		}

		opts := agentOptions(req.Depth, -1)
		if req.MaxTimeSecs > 0 {
			opts.MaxTime = time.Duration(req.MaxTimeSecs) * time.Second
		}

		go func() {
			rep, err := agent.New(rt.Fetcher, rt.Analyzer, opts).Run(serverCtx, req.Topic, seeds)
			if err != nil {
				zap.L().Error("api research failed",
					zap.String("run_id", run.ID),
					zap.String("topic", req.Topic),
					zap.Error(err),
				)
				_ = rt.Store.FailRun(serverCtx, run.ID, err.Error())
				return
			}
			if err := rt.Store.CompleteRun(serverCtx, run.ID, rep); err != nil {
				zap.L().Error("api archive failed", zap.String("run_id", run.ID), zap.Error(err))
			}
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"run_id": run.ID,
			"status": string(model.RunStatusRunning),
		})
	}
}

func handleListRuns(rt *runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := store.RunFilter{
			Status: model.RunStatus(r.URL.Query().Get("status")),
			Topic:  r.URL.Query().Get("topic"),
		}
		runs, err := rt.Store.ListRuns(r.Context(), filter)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list runs"})
			return
		}
		writeJSON(w, http.StatusOK, runs)
	}
}

func handleGetRun(rt *runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := rt.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "get run"})
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
