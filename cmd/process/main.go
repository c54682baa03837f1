// Command process runs one posting batch from JSON files on disk: it writes
// the report, appends the trend snapshot, and prints a summary.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/LeadScopeAI/leadscope-mvp/engine/batch"
	"github.com/LeadScopeAI/leadscope-mvp/engine/classify"
	"github.com/LeadScopeAI/leadscope-mvp/engine/domain"
	"github.com/LeadScopeAI/leadscope-mvp/engine/score"
	"github.com/LeadScopeAI/leadscope-mvp/engine/trend"
)

func main() {
	var (
		in        = flag.String("in", "", "posting JSON file or directory of *.json files")
		out       = flag.String("out", "report.json", "report output path")
		modelPath = flag.String("model", "", "optional classifier model JSON")
		weights   = flag.String("weights", "", "optional scorer weights JSON")
		snapshots = flag.String("snapshots", "data/trend-history.json", "trend snapshot history file")
		workers   = flag.Int("workers", 0, "parallel workers (0 = GOMAXPROCS)")
		threshold = flag.Float64("threshold", 0, "model confidence threshold (0 = default)")
	)
	flag.Parse()

	log := slog.Default()
	if *in == "" {
		log.Error("missing -in")
		os.Exit(2)
	}
	ctx := context.Background()

	postings, err := loadPostings(*in)
	if err != nil {
		log.Error("load postings", "error", err)
		os.Exit(1)
	}
	log.Info("postings loaded", "count", len(postings), "from", *in)

	opts := batch.Options{
		Workers:   *workers,
		Threshold: *threshold,
		Logger:    log,
	}
	if *modelPath != "" {
		model, err := classify.LoadModelFile(*modelPath)
		if err != nil {
			log.Error("load model", "error", err)
			os.Exit(1)
		}
		opts.Model = model
		log.Info("model loaded", "version", model.Version())
	}
	if *weights != "" {
		w, err := loadWeights(*weights)
		if err != nil {
			log.Error("load weights", "error", err)
			os.Exit(1)
		}
		opts.Weights = w
	}

	report, err := batch.Run(ctx, postings, opts)
	if err != nil {
		log.Error("batch run", "error", err)
		os.Exit(1)
	}

	if err := writeJSON(*out, report); err != nil {
		log.Error("write report", "error", err)
		os.Exit(1)
	}
	log.Info("report written", "path", *out, "batch_id", report.BatchID)

	store, err := trend.NewFileStore(*snapshots)
	if err != nil {
		log.Error("open snapshot store", "error", err)
		os.Exit(1)
	}
	history, err := store.History(ctx)
	if err != nil {
		log.Error("read snapshot history", "error", err)
		os.Exit(1)
	}
	snap := batch.SnapshotFrom(report)
	if err := store.Append(ctx, snap); err != nil {
		log.Error("append snapshot", "error", err)
		os.Exit(1)
	}

	printSummary(report, trend.Predict(append(history, snap)))
}

// loadPostings reads one JSON array file, or every *.json file in a
// directory. Files that hold a single posting object are accepted too.
func loadPostings(path string) ([]domain.Posting, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return readPostingFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var all []domain.Posting
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		part, err := readPostingFile(filepath.Join(path, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		all = append(all, part...)
	}
	return all, nil
}

func readPostingFile(path string) ([]domain.Posting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var postings []domain.Posting
	if err := json.Unmarshal(data, &postings); err == nil {
		return postings, nil
	}
	var one domain.Posting
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return []domain.Posting{one}, nil
}

func loadWeights(path string) (score.Weights, error) {
	var w score.Weights
	data, err := os.ReadFile(path)
	if err != nil {
		return w, err
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return w, fmt.Errorf("parse weights %s: %w", path, err)
	}
	return w, nil
}

func writeJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printSummary(r *batch.Report, projections map[string]trend.Projection) {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("BATCH PROCESSING SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Batch:        %s\n", r.BatchID)
	fmt.Printf("Postings:     %d processed, %d skipped\n", len(r.Postings), r.Diagnostics.Skipped)
	fmt.Printf("Urgent:       %d (%.1f%%)\n", r.Stats.UrgentCount, r.Stats.UrgentRatio*100)
	fmt.Printf("Companies:    %d in %d segments (quality %.3f)\n",
		len(r.Profiles), r.Segmentation.K, r.Segmentation.Quality)
	if r.Diagnostics.ClusterWarning != "" {
		fmt.Printf("Warning:      %s\n", r.Diagnostics.ClusterWarning)
	}

	fmt.Println("\nTOP TECHNOLOGIES:")
	for _, t := range r.Stats.TopTechnologies {
		fmt.Printf("  %-20s %d\n", t.Key, t.Count)
	}

	fmt.Println("\nTOP OPPORTUNITIES:")
	top := r.Scores
	if len(top) > 10 {
		top = top[:10]
	}
	for _, s := range top {
		fmt.Printf("  %2d. %-30s %.3f\n", s.Rank, s.Company, s.Score)
	}

	fmt.Println("\nTRENDS:")
	keys := make([]string, 0, len(projections))
	for k := range projections {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p := projections[k]
		fmt.Printf("  %-22s %-5s %.3f\n", k, p.Direction, p.Magnitude)
	}
}
