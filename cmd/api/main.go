// Package main implements the LeadScope API server: latest batch report,
// trend projections, company graph reads, similar-company lookup, and
// Prometheus metrics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/LeadScopeAI/leadscope-mvp/engine/batch"
	"github.com/LeadScopeAI/leadscope-mvp/engine/graph"
	"github.com/LeadScopeAI/leadscope-mvp/engine/semantic"
	"github.com/LeadScopeAI/leadscope-mvp/engine/trend"
	"github.com/LeadScopeAI/leadscope-mvp/pkg/metrics"
	"github.com/LeadScopeAI/leadscope-mvp/pkg/mid"
	"github.com/LeadScopeAI/leadscope-mvp/pkg/repo"
)

var met = metrics.New()

var (
	mRequests     = met.Counter("leadscope_api_requests_total", "API requests served")
	mReportReads  = met.Counter("leadscope_api_report_reads_total", "Report file reads")
	mSimilarCalls = met.Counter("leadscope_api_similar_lookups_total", "Similar-company lookups")
)

// Config holds all environment-based configuration.
type Config struct {
	Port       string
	ReportPath string
	Snapshots  string
	Neo4jURL   string
	Neo4jUser  string
	Neo4jPass  string
	QdrantURL  string
	Collection string
	CORSOrigin string
}

func loadConfig() Config {
	return Config{
		Port:       envOr("PORT", "8080"),
		ReportPath: envOr("REPORT_PATH", "report.json"),
		Snapshots:  envOr("SNAPSHOTS_PATH", "data/trend-history.json"),
		Neo4jURL:   envOr("NEO4J_URL", "neo4j://localhost:7687"),
		Neo4jUser:  envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:  envOr("NEO4J_PASS", "leadscope123"),
		QdrantURL:  envOr("QDRANT_URL", "localhost:6334"),
		Collection: envOr("QDRANT_COLLECTION", "leadscope-profiles"),
		CORSOrigin: envOr("CORS_ORIGIN", "*"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(loadConfig(), logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
	if err != nil {
		return fmt.Errorf("neo4j driver: %w", err)
	}
	defer driver.Close(ctx)
	companyGraph := graph.New(driver)

	profiles, err := semantic.New(cfg.QdrantURL, cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer profiles.Close()

	snapshots, err := trend.NewFileStore(cfg.Snapshots)
	if err != nil {
		return fmt.Errorf("snapshot store: %w", err)
	}

	api := &server{
		cfg:       cfg,
		log:       logger,
		graph:     companyGraph,
		profiles:  profiles,
		snapshots: snapshots,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", api.handleHealth)
	mux.HandleFunc("GET /api/v1/report", api.handleReport)
	mux.HandleFunc("GET /api/v1/trends", api.handleTrends)
	mux.HandleFunc("GET /api/v1/companies", api.handleCompanies)
	mux.HandleFunc("GET /api/v1/companies/{name}", api.handleCompany)
	mux.HandleFunc("GET /api/v1/companies/{name}/similar", api.handleSimilar)
	mux.Handle("GET /metrics", met.Handler())

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("leadscope-api"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type server struct {
	cfg       Config
	log       *slog.Logger
	graph     *graph.CompanyGraph
	profiles  *semantic.ProfileStore
	snapshots trend.Store
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	mRequests.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReport serves the most recent batch report written by process/worker.
func (s *server) handleReport(w http.ResponseWriter, _ *http.Request) {
	mRequests.Inc()
	report, err := s.loadReport()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.Error(w, "no report yet", http.StatusNotFound)
			return
		}
		s.log.Error("read report", "err", err)
		http.Error(w, "report unavailable", http.StatusInternalServerError)
		return
	}
	mReportReads.Inc()
	writeJSON(w, http.StatusOK, report)
}

func (s *server) handleTrends(w http.ResponseWriter, r *http.Request) {
	mRequests.Inc()
	history, err := s.snapshots.History(r.Context())
	if err != nil {
		s.log.Error("read history", "err", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"snapshots":   len(history),
		"projections": trend.Predict(history),
	})
}

func (s *server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	mRequests.Inc()
	companies, err := s.graph.ListCompanies(r.Context(), repo.ListOpts{Limit: 100})
	if err != nil {
		s.log.Error("list companies", "err", err)
		http.Error(w, "graph unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

func (s *server) handleCompany(w http.ResponseWriter, r *http.Request) {
	mRequests.Inc()
	rec, err := s.graph.GetCompany(r.Context(), r.PathValue("name"))
	if err != nil {
		http.Error(w, "company not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleSimilar looks the company's profile up in the latest report and runs
// a vector search against the profile store.
func (s *server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	mRequests.Inc()
	name := r.PathValue("name")

	report, err := s.loadReport()
	if err != nil {
		http.Error(w, "no report yet", http.StatusNotFound)
		return
	}
	for _, p := range report.Profiles {
		if p.Company != name {
			continue
		}
		similar, err := s.profiles.SimilarCompanies(r.Context(), p, 5)
		if err != nil {
			s.log.Error("similar lookup", "err", err, "company", name)
			http.Error(w, "vector store unavailable", http.StatusInternalServerError)
			return
		}
		mSimilarCalls.Inc()
		writeJSON(w, http.StatusOK, similar)
		return
	}
	http.Error(w, "company not in latest batch", http.StatusNotFound)
}

func (s *server) loadReport() (*batch.Report, error) {
	data, err := os.ReadFile(s.cfg.ReportPath)
	if err != nil {
		return nil, err
	}
	var report batch.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &report, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
