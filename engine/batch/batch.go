// Package batch wires the pipeline stages into a single run: validate,
// extract, vectorize, classify, aggregate, segment, score, report. A run
// always produces a complete report; the only pre-flight failure is a
// misconfigured scorer.
package batch

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/LeadScopeAI/leadscope-mvp/engine/aggregate"
	"github.com/LeadScopeAI/leadscope-mvp/engine/classify"
	"github.com/LeadScopeAI/leadscope-mvp/engine/domain"
	"github.com/LeadScopeAI/leadscope-mvp/engine/extract"
	"github.com/LeadScopeAI/leadscope-mvp/engine/feature"
	"github.com/LeadScopeAI/leadscope-mvp/engine/lexicon"
	"github.com/LeadScopeAI/leadscope-mvp/engine/score"
	"github.com/LeadScopeAI/leadscope-mvp/engine/segment"
	"github.com/LeadScopeAI/leadscope-mvp/engine/trend"
	"github.com/LeadScopeAI/leadscope-mvp/pkg/fn"
)

// Options configures one batch run. Zero values select defaults.
type Options struct {
	Workers   int            // bounded parallelism, default GOMAXPROCS
	Model     classify.Model // nil runs fallback-only classification
	Threshold float64        // model confidence floor, default classify.DefaultThreshold
	Weights   score.Weights  // zero value selects score.DefaultWeights
	Segment   segment.Options
	Logger    *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Weights == (score.Weights{}) {
		o.Weights = score.DefaultWeights
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Diagnostics records what the run skipped or degraded.
type Diagnostics struct {
	Skipped          int    `json:"skipped"`           // postings dropped at the validation gate
	UrgencyFallbacks int    `json:"urgency_fallbacks"` // model present but urgency fell back
	TechFallbacks    int    `json:"tech_fallbacks"`    // model present but tech fell back
	ClusterWarning   string `json:"cluster_warning,omitempty"`
}

// Report is the complete batch output.
type Report struct {
	BatchID        string                   `json:"batch_id"`
	TakenAt        time.Time                `json:"taken_at"`
	LexiconVersion string                   `json:"lexicon_version"`
	ModelVersion   string                   `json:"model_version,omitempty"`
	Postings       []domain.EnrichedPosting `json:"postings"`
	Stats          aggregate.Stats          `json:"stats"`
	Profiles       []domain.CompanyProfile  `json:"profiles"`
	Segmentation   segment.Segmentation     `json:"segmentation"`
	Scores         []score.OpportunityScore `json:"scores"`
	Diagnostics    Diagnostics              `json:"diagnostics"`
}

// Run processes one batch end to end. Identical postings, lexicon version,
// and model version yield an identical report modulo BatchID and TakenAt.
func Run(ctx context.Context, postings []domain.Posting, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	if err := opts.Weights.Validate(); err != nil {
		return nil, err
	}

	report := &Report{
		BatchID:        uuid.NewString(),
		TakenAt:        time.Now().UTC(),
		LexiconVersion: lexicon.Version,
	}

	pipeline := fn.Then(
		fn.TracedStage("batch.enrich", enrichStage(opts, report)),
		fn.TracedStage("batch.rank", rankStage(opts, report)),
	)
	if r := pipeline(ctx, postings); r.IsErr() {
		_, err := r.Unwrap()
		return nil, err
	}
	return report, nil
}

// enrichStage covers the per-posting half of the run: validation gate,
// parallel extraction, vocabulary fit, parallel vectorization and
// classification. It fills report.Postings and returns the enriched set.
func enrichStage(opts Options, report *Report) fn.Stage[[]domain.Posting, []domain.EnrichedPosting] {
	return func(ctx context.Context, postings []domain.Posting) fn.Result[[]domain.EnrichedPosting] {
		valid := make([]domain.Posting, 0, len(postings))
		for _, p := range postings {
			if err := domain.ValidatePosting(p); err != nil {
				report.Diagnostics.Skipped++
				opts.Logger.Warn("batch: posting skipped", "posting_id", p.ID, "error", err)
				continue
			}
			valid = append(valid, p)
		}

		signals := fn.ParMap(valid, opts.Workers, func(p domain.Posting) domain.SignalSet {
			return extract.Signals(p.Description)
		})

		// Vocabulary fit is the batch synchronization point: every posting
		// must be tokenized before any vector exists.
		matrix := feature.Build(valid, signals, opts.Workers)

		clf := classify.New(opts.Model, opts.Threshold, matrix.Vocabulary)
		report.ModelVersion = clf.ModelVersion()

		idxs := make([]int, len(valid))
		for i := range idxs {
			idxs[i] = i
		}
		classifications := fn.ParMap(idxs, opts.Workers, func(i int) domain.Classification {
			return clf.Classify(matrix.Vectors[i], signals[i])
		})

		enriched := make([]domain.EnrichedPosting, len(valid))
		for i := range valid {
			enriched[i] = domain.EnrichedPosting{
				Posting:        valid[i],
				SignalSet:      signals[i],
				Classification: classifications[i],
			}
			if opts.Model != nil {
				if classifications[i].UrgencyDecision == domain.DecisionFallback {
					report.Diagnostics.UrgencyFallbacks++
				}
				if classifications[i].TechDecision == domain.DecisionFallback {
					report.Diagnostics.TechFallbacks++
				}
			}
		}
		if opts.Model != nil && (report.Diagnostics.UrgencyFallbacks > 0 || report.Diagnostics.TechFallbacks > 0) {
			opts.Logger.Warn("batch: degraded classification",
				"urgency_fallbacks", report.Diagnostics.UrgencyFallbacks,
				"tech_fallbacks", report.Diagnostics.TechFallbacks)
		}

		report.Postings = enriched
		return fn.Ok(enriched)
	}
}

// rankStage covers the whole-batch half: aggregation, segmentation, scoring.
func rankStage(opts Options, report *Report) fn.Stage[[]domain.EnrichedPosting, []score.OpportunityScore] {
	return func(ctx context.Context, enriched []domain.EnrichedPosting) fn.Result[[]score.OpportunityScore] {
		report.Stats = aggregate.Statistics(enriched)
		report.Profiles = aggregate.Profiles(enriched)

		report.Segmentation = segment.Segment(report.Profiles, opts.Segment)
		if report.Segmentation.Warning != "" {
			report.Diagnostics.ClusterWarning = report.Segmentation.Warning
			opts.Logger.Warn("batch: clustering degraded", "warning", report.Segmentation.Warning)
		}
		for i := range report.Profiles {
			report.Profiles[i].ClusterID = report.Segmentation.Assignments[report.Profiles[i].Company]
		}

		scores, err := score.Rank(report.Profiles, opts.Weights)
		if err != nil {
			return fn.Err[[]score.OpportunityScore](err)
		}
		report.Scores = scores
		return fn.Ok(scores)
	}
}

// SnapshotFrom derives the trend snapshot for a finished run.
func SnapshotFrom(r *Report) trend.Snapshot {
	n := float64(len(r.Postings))
	metrics := map[string]float64{
		trend.MetricJobVolume:          n,
		trend.MetricUrgentRatio:        r.Stats.UrgentRatio,
		trend.MetricAvgTechCount:       0,
		trend.MetricPainDensity:        0,
		trend.MetricBudgetTransparency: 0,
	}
	if n > 0 {
		techs, pains, budgets := 0, 0, 0
		for _, p := range r.Postings {
			techs += len(p.Technologies)
			pains += len(p.PainPoints)
			if !p.Budget.Empty() {
				budgets++
			}
		}
		metrics[trend.MetricAvgTechCount] = float64(techs) / n
		metrics[trend.MetricPainDensity] = float64(pains) / n
		metrics[trend.MetricBudgetTransparency] = float64(budgets) / n
	}
	return trend.Snapshot{BatchID: r.BatchID, TakenAt: r.TakenAt, Metrics: metrics}
}
