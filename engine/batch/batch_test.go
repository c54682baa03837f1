package batch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/LeadScopeAI/leadscope-mvp/engine/domain"
	"github.com/LeadScopeAI/leadscope-mvp/engine/feature"
	"github.com/LeadScopeAI/leadscope-mvp/engine/score"
	"github.com/LeadScopeAI/leadscope-mvp/engine/trend"
)

func quietOpts() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func samplePostings() []domain.Posting {
	return []domain.Posting{
		{ID: "1", Company: "Acme", Title: "Backend Engineer",
			Description: "Urgent: Python and AWS engineer needed ASAP, salary $120k-$150k, legacy system migration"},
		{ID: "2", Company: "Acme", Title: "Data Engineer",
			Description: "Data engineer with Spark and Kafka for our growing analytics platform"},
		{ID: "3", Company: "Globex", Title: "Frontend Developer",
			Description: "React developer to modernize our frontend, stock options included"},
		{ID: "4", Company: "Initech", Title: "SRE",
			Description: "Kubernetes and Terraform expert to tame our technical debt, start immediately, $90/hour"},
	}
}

func TestRunCompleteReport(t *testing.T) {
	report, err := Run(context.Background(), samplePostings(), quietOpts())
	if err != nil {
		t.Fatal(err)
	}

	if report.BatchID == "" || report.TakenAt.IsZero() || report.LexiconVersion == "" {
		t.Fatalf("report metadata incomplete: %+v", report)
	}
	if report.ModelVersion != "" {
		t.Errorf("no model loaded, version should be empty: %q", report.ModelVersion)
	}
	if len(report.Postings) != 4 {
		t.Fatalf("got %d enriched postings", len(report.Postings))
	}
	if report.Stats.TotalPostings != 4 || report.Stats.UrgentCount == 0 {
		t.Errorf("stats: %+v", report.Stats)
	}
	if len(report.Profiles) != 3 {
		t.Fatalf("got %d profiles", len(report.Profiles))
	}
	for _, p := range report.Profiles {
		if p.ClusterID < 0 {
			t.Errorf("%s: cluster not assigned", p.Company)
		}
		if p.ClusterID != report.Segmentation.Assignments[p.Company] {
			t.Errorf("%s: profile cluster disagrees with segmentation", p.Company)
		}
	}
	if len(report.Scores) != 3 {
		t.Fatalf("got %d scores", len(report.Scores))
	}
	for i, s := range report.Scores {
		if s.Rank != i+1 {
			t.Errorf("rank at %d: got %d", i, s.Rank)
		}
	}
	if report.Diagnostics.Skipped != 0 {
		t.Errorf("nothing to skip, got %+v", report.Diagnostics)
	}
	if report.Diagnostics.UrgencyFallbacks != 0 || report.Diagnostics.TechFallbacks != 0 {
		t.Errorf("fallback-only runs are not degraded: %+v", report.Diagnostics)
	}
}

func TestRunSkipsInvalidPostings(t *testing.T) {
	postings := append(samplePostings(),
		domain.Posting{ID: "bad-1", Company: "", Description: "no company"},
		domain.Posting{ID: "bad-2", Company: "Hooli", Description: "   "},
	)
	report, err := Run(context.Background(), postings, quietOpts())
	if err != nil {
		t.Fatal(err)
	}
	if report.Diagnostics.Skipped != 2 {
		t.Fatalf("skipped: got %d", report.Diagnostics.Skipped)
	}
	if len(report.Postings) != 4 {
		t.Fatalf("got %d enriched postings", len(report.Postings))
	}
	for _, p := range report.Profiles {
		if p.Company == "Hooli" {
			t.Fatal("skipped posting leaked into profiles")
		}
	}
}

func TestRunDeterministicModuloIdentity(t *testing.T) {
	a, err := Run(context.Background(), samplePostings(), quietOpts())
	if err != nil {
		t.Fatal(err)
	}
	opts := quietOpts()
	opts.Workers = 1
	b, err := Run(context.Background(), samplePostings(), opts)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(a.Postings, b.Postings) {
		t.Error("enriched postings differ across runs")
	}
	if !reflect.DeepEqual(a.Profiles, b.Profiles) {
		t.Error("profiles differ across runs")
	}
	if !reflect.DeepEqual(a.Segmentation, b.Segmentation) {
		t.Error("segmentation differs across runs")
	}
	if !reflect.DeepEqual(a.Scores, b.Scores) {
		t.Error("rankings differ across runs")
	}
}

func TestRunInvalidWeightsFailsFast(t *testing.T) {
	opts := quietOpts()
	opts.Weights = score.Weights{Urgency: 2}
	_, err := Run(context.Background(), samplePostings(), opts)
	if !errors.Is(err, domain.ErrInvalidWeights) {
		t.Fatalf("got %v", err)
	}
}

func TestRunEmptyBatch(t *testing.T) {
	report, err := Run(context.Background(), nil, quietOpts())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Postings) != 0 || len(report.Profiles) != 0 || len(report.Scores) != 0 {
		t.Fatalf("empty batch should produce an empty report: %+v", report)
	}
	if report.Stats.TotalPostings != 0 {
		t.Errorf("stats: %+v", report.Stats)
	}
}

func TestRunSingleCompanyDegenerate(t *testing.T) {
	postings := samplePostings()[:2]
	report, err := Run(context.Background(), postings, quietOpts())
	if err != nil {
		t.Fatal(err)
	}
	if report.Segmentation.K != 1 {
		t.Fatalf("expected single segment, got k=%d", report.Segmentation.K)
	}
	if report.Diagnostics.ClusterWarning == "" {
		t.Error("degenerate clustering should surface a warning")
	}
	if len(report.Scores) != 1 || report.Scores[0].Rank != 1 {
		t.Fatalf("scores: %+v", report.Scores)
	}
}

// flakyModel errors on every call, forcing per-posting fallbacks.
type flakyModel struct{}

func (flakyModel) ScoreUrgency(feature.Vector, []string) (float64, error) {
	return 0, domain.ErrModelUnavailable
}

func (flakyModel) ScoreTech(feature.Vector, []string) (map[string]float64, error) {
	return nil, domain.ErrModelUnavailable
}

func (flakyModel) Version() string { return "flaky-0" }

func TestRunCountsModelFallbacks(t *testing.T) {
	opts := quietOpts()
	opts.Model = flakyModel{}
	report, err := Run(context.Background(), samplePostings(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if report.ModelVersion != "flaky-0" {
		t.Errorf("model version: got %q", report.ModelVersion)
	}
	if report.Diagnostics.UrgencyFallbacks != 4 || report.Diagnostics.TechFallbacks != 4 {
		t.Fatalf("fallback counts: %+v", report.Diagnostics)
	}
}

func TestSnapshotFrom(t *testing.T) {
	report, err := Run(context.Background(), samplePostings(), quietOpts())
	if err != nil {
		t.Fatal(err)
	}
	snap := SnapshotFrom(report)

	if snap.BatchID != report.BatchID || !snap.TakenAt.Equal(report.TakenAt) {
		t.Fatalf("snapshot identity: %+v", snap)
	}
	if snap.Metrics[trend.MetricJobVolume] != 4 {
		t.Errorf("job volume: got %v", snap.Metrics[trend.MetricJobVolume])
	}
	for _, key := range trend.MetricKeys {
		if _, ok := snap.Metrics[key]; !ok {
			t.Errorf("metric %s missing", key)
		}
	}
	if snap.Metrics[trend.MetricAvgTechCount] <= 0 {
		t.Errorf("avg tech count: got %v", snap.Metrics[trend.MetricAvgTechCount])
	}
}

func TestSnapshotFromEmptyReport(t *testing.T) {
	report, err := Run(context.Background(), nil, quietOpts())
	if err != nil {
		t.Fatal(err)
	}
	snap := SnapshotFrom(report)
	for _, key := range trend.MetricKeys {
		if snap.Metrics[key] != 0 {
			t.Errorf("%s: got %v, want 0", key, snap.Metrics[key])
		}
	}
}
