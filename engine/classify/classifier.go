// Package classify labels postings for urgency and technology stack. Two
// paths exist per label: a trained model handle when one is loaded and
// confident, and a deterministic lexicon-rule fallback otherwise. The
// selection is made independently for urgency and tech, so a posting is
// never left unlabeled and quality degrades gracefully without a model.
package classify

import (
	"sort"

	"github.com/LeadScopeAI/leadscope-mvp/engine/domain"
	"github.com/LeadScopeAI/leadscope-mvp/engine/feature"
)

// DefaultThreshold is the minimum model confidence required to prefer the
// model path over the rule fallback for a label.
const DefaultThreshold = 0.6

// Model is a ready-to-call scoring surface. Loading (disk, registry, remote)
// is the caller's concern; the handle must be safe for concurrent reads and
// must not be mutated during scoring.
type Model interface {
	// ScoreUrgency returns the probability the posting is urgent.
	ScoreUrgency(vec feature.Vector, vocab []string) (float64, error)
	// ScoreTech returns per-technology probabilities.
	ScoreTech(vec feature.Vector, vocab []string) (map[string]float64, error)
	Version() string
}

// Classifier applies the hybrid model/fallback policy for one batch.
type Classifier struct {
	model     Model
	threshold float64
	vocab     []string
}

// New creates a Classifier. model may be nil, in which case every label uses
// the fallback path. A non-positive threshold selects DefaultThreshold.
func New(model Model, threshold float64, vocab []string) *Classifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Classifier{model: model, threshold: threshold, vocab: vocab}
}

// ModelVersion returns the loaded model's version, or "" when running
// fallback-only.
func (c *Classifier) ModelVersion() string {
	if c.model == nil {
		return ""
	}
	return c.model.Version()
}

// Classify produces the per-posting Classification. Deterministic given
// identical inputs and model version.
func (c *Classifier) Classify(vec feature.Vector, signals domain.SignalSet) domain.Classification {
	out := domain.Classification{}
	c.classifyUrgency(&out, vec, signals)
	c.classifyTech(&out, vec, signals)
	return out
}

func (c *Classifier) classifyUrgency(out *domain.Classification, vec feature.Vector, signals domain.SignalSet) {
	if c.model != nil {
		prob, err := c.model.ScoreUrgency(vec, c.vocab)
		conf := prob
		if prob < 0.5 {
			conf = 1 - prob
		}
		if err == nil && conf > c.threshold {
			out.UrgencyLabel = domain.UrgencyNormal
			if prob >= 0.5 {
				out.UrgencyLabel = domain.UrgencyUrgent
			}
			out.UrgencyConfidence = conf
			out.UrgencyDecision = domain.DecisionModel
			return
		}
	}

	// Rule fallback: urgent iff any urgency phrase was extracted. Lexicon
	// matches are treated as ground truth.
	out.UrgencyLabel = domain.UrgencyNormal
	if len(signals.UrgencyPhrases) > 0 {
		out.UrgencyLabel = domain.UrgencyUrgent
	}
	out.UrgencyConfidence = 1.0
	out.UrgencyDecision = domain.DecisionFallback
}

func (c *Classifier) classifyTech(out *domain.Classification, vec feature.Vector, signals domain.SignalSet) {
	if c.model != nil {
		probs, err := c.model.ScoreTech(vec, c.vocab)
		if err == nil {
			var labels []string
			conf := make(map[string]float64)
			for tech, p := range probs {
				if p > c.threshold {
					labels = append(labels, tech)
					conf[tech] = p
				}
			}
			if len(labels) > 0 {
				sort.Strings(labels)
				out.TechLabels = labels
				out.TechConfidence = conf
				out.TechDecision = domain.DecisionModel
				return
			}
		}
	}

	labels := make([]string, len(signals.Technologies))
	copy(labels, signals.Technologies)
	conf := make(map[string]float64, len(labels))
	for _, t := range labels {
		conf[t] = 1.0
	}
	out.TechLabels = labels
	out.TechConfidence = conf
	out.TechDecision = domain.DecisionFallback
}
