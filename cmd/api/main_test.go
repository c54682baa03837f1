package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/LeadScopeAI/leadscope-mvp/engine/batch"
	"github.com/LeadScopeAI/leadscope-mvp/engine/trend"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *server {
	t.Helper()
	dir := t.TempDir()
	store, err := trend.NewFileStore(filepath.Join(dir, "history.json"))
	if err != nil {
		t.Fatal(err)
	}
	return &server{
		cfg:       Config{ReportPath: filepath.Join(dir, "report.json")},
		log:       discardLogger(),
		snapshots: store,
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest("GET", "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %s", resp["status"])
	}
}

func TestReportEndpoint_NotFound(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handleReport(rec, httptest.NewRequest("GET", "/api/v1/report", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any batch, got %d", rec.Code)
	}
}

func TestReportEndpoint_ServesLatest(t *testing.T) {
	s := newTestServer(t)
	report := batch.Report{BatchID: "b-1", LexiconVersion: "test"}
	data, _ := json.Marshal(report)
	if err := os.WriteFile(s.cfg.ReportPath, data, 0o644); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	s.handleReport(rec, httptest.NewRequest("GET", "/api/v1/report", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got batch.Report
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.BatchID != "b-1" {
		t.Fatalf("got batch %q", got.BatchID)
	}
}

func TestTrendsEndpoint_EmptyHistory(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handleTrends(rec, httptest.NewRequest("GET", "/api/v1/trends", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Snapshots   int                         `json:"snapshots"`
		Projections map[string]trend.Projection `json:"projections"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Snapshots != 0 {
		t.Fatalf("expected empty history, got %d", resp.Snapshots)
	}
	for key, p := range resp.Projections {
		if p.Direction != trend.Flat {
			t.Errorf("%s: expected flat with no history, got %s", key, p.Direction)
		}
	}
}

func TestTrendsEndpoint_WithHistory(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		err := s.snapshots.Append(ctx, trend.Snapshot{
			BatchID: "b",
			Metrics: map[string]float64{trend.MetricJobVolume: float64(10 + 10*i)},
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	rec := httptest.NewRecorder()
	s.handleTrends(rec, httptest.NewRequest("GET", "/api/v1/trends", nil))
	var resp struct {
		Projections map[string]trend.Projection `json:"projections"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Projections[trend.MetricJobVolume].Direction != trend.Up {
		t.Fatalf("rising volume should project up, got %+v", resp.Projections[trend.MetricJobVolume])
	}
}
