package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/vendscout/internal/category"
	"github.com/sells-group/vendscout/internal/estimate"
	"github.com/sells-group/vendscout/internal/goldenhours"
	"github.com/sells-group/vendscout/internal/scoring"
	"github.com/sells-group/vendscout/internal/scout"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON scoring API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		svc, cache, err := initScout(ctx)
		if err != nil {
			return err
		}
		defer cache.Close() //nolint:errcheck

		mux := buildMux(svc)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// buildMux wires the API routes. The scout service may be nil; the
// pure-engine routes still work without it.
func buildMux(svc *scout.Service) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /v1/categories", func(w http.ResponseWriter, r *http.Request) {
		type entry struct {
			ID          string             `json:"id"`
			Name        string             `json:"name"`
			Weights     category.Weights   `json:"weights"`
			GoldenHours string             `json:"golden_hours"`
			Benchmark   estimate.Benchmark `json:"revenue_benchmark"`
		}
		out := make([]entry, 0, len(category.All()))
		for _, cat := range category.All() {
			prof := category.Get(cat)
			out = append(out, entry{
				ID:          string(cat),
				Name:        prof.Name,
				Weights:     prof.Weights,
				GoldenHours: goldenhours.Description(cat),
				Benchmark:   estimate.CategoryBenchmark(cat),
			})
		}
		writeJSON(w, http.StatusOK, out)
	})

	mux.HandleFunc("POST /v1/score", func(w http.ResponseWriter, r *http.Request) {
		var in scoring.Input
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if _, err := category.Parse(string(in.Category)); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		score := scoring.Compute(in)
		writeJSON(w, http.StatusOK, struct {
			Score     scoring.Score            `json:"score"`
			Label     string                   `json:"label"`
			Reasoning []string                 `json:"reasoning"`
			Revenue   estimate.RevenueEstimate `json:"revenue"`
		}{
			Score:     score,
			Label:     scoring.Label(score.Overall),
			Reasoning: scoring.Reasoning(score, in.Category),
			Revenue:   estimate.Revenue(score.Overall, in.Category),
		})
	})

	mux.HandleFunc("POST /v1/scout", func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "providers not configured"})
			return
		}

		var req scout.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Lat == 0 && req.Lng == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat and lng are required"})
			return
		}

		report, err := svc.Scout(r.Context(), req)
		if err != nil {
			zap.L().Error("scout request failed",
				zap.String("place", req.PlaceName),
				zap.Error(err),
			)
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, report)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
