package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/validation"
)

var servePort int

// shutdownTimeout bounds the drain window for in-flight requests.
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server for inference, scoring, and rendering",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initCore(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		limiter := rate.NewLimiter(rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst)
		mux := newServeMux(env, limiter)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go shutdownOnDone(ctx, srv)

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// shutdownOnDone drains the server once ctx is cancelled. The drain runs
// under a fresh timeout, not the cancelled signal context, so in-flight
// requests get their full window.
func shutdownOnDone(ctx context.Context, srv *http.Server) {
	<-ctx.Done()
	zap.L().Info("shutting down server")
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		zap.L().Warn("server shutdown", zap.Error(err))
	}
}

func newServeMux(env *coreEnv, limiter *rate.Limiter) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /infer", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Context map[string]any `json:"context"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		inferences := env.Engine.Infer(model.Context(req.Context))
		writeJSON(w, http.StatusOK, map[string]any{
			"inferences": env.Engine.ValidateInferences(inferences),
		})
	})

	mux.HandleFunc("POST /score", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Field   string         `json:"field"`
			Value   string         `json:"value"`
			Context map[string]any `json:"context"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Field == "" {
			http.Error(w, `{"error":"field is required"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, env.Scorer.Score(req.Field, req.Value, model.Context(req.Context)))
	})

	mux.HandleFunc("POST /render", func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
			return
		}
		var req struct {
			Template string         `json:"template"`
			Context  map[string]any `json:"context"`
			Pipeline bool           `json:"pipeline"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Template == "" {
			http.Error(w, `{"error":"template is required"}`, http.StatusBadRequest)
			return
		}

		if req.Pipeline {
			result, err := env.Pipeline.Run(r.Context(), model.Context(req.Context), req.Template)
			if err != nil {
				zap.L().Error("render pipeline failed", zap.Error(err))
				http.Error(w, `{"error":"pipeline failed"}`, http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, result)
			return
		}

		ctx := model.Context(req.Context)
		writeJSON(w, http.StatusOK, map[string]any{
			"rendered":   env.Templates.Substitute(req.Template, ctx),
			"validation": env.Templates.Validate(req.Template, ctx),
		})
	})

	mux.HandleFunc("POST /validation/requests", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Field       string         `json:"field"`
			Value       string         `json:"value"`
			Confidence  float64        `json:"confidence"`
			Context     map[string]any `json:"context"`
			RequestedBy string         `json:"requested_by"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		created, err := env.Queue.CreateRequest(r.Context(), req.Field, req.Value, req.Confidence, model.Context(req.Context), req.RequestedBy)
		if err != nil {
			writeQueueError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	})

	mux.HandleFunc("POST /validation/requests/{id}/response", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Status               string   `json:"status"`
			Feedback             string   `json:"feedback"`
			ValidatedBy          string   `json:"validated_by"`
			ConfidenceAdjustment *float64 `json:"confidence_adjustment"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		resp, err := env.Queue.SubmitResponse(r.Context(), r.PathValue("id"), req.Status, req.Feedback, req.ValidatedBy, req.ConfidenceAdjustment)
		if err != nil {
			writeQueueError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	mux.HandleFunc("GET /validation/pending", func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		pending := env.Queue.Pending(limit)
		if pending == nil {
			pending = []model.ValidationRequest{}
		}
		writeJSON(w, http.StatusOK, pending)
	})

	mux.HandleFunc("GET /validation/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, env.Queue.Stats())
	})

	return mux
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

func writeQueueError(w http.ResponseWriter, err error) {
	switch {
	case eris.Is(err, validation.ErrNotFound):
		http.Error(w, `{"error":"request not found"}`, http.StatusNotFound)
	case eris.Is(err, validation.ErrAlreadyResolved):
		http.Error(w, `{"error":"request already resolved"}`, http.StatusConflict)
	case eris.Is(err, validation.ErrInvalidInput):
		http.Error(w, `{"error":"invalid input"}`, http.StatusBadRequest)
	default:
		zap.L().Error("validation request failed", zap.Error(err))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
