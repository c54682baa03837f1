// Package score ranks companies by opportunity. The score is a weighted sum
// of min-max-normalized profile components, so every score is relative to the
// current batch: re-running with a different company set shifts everyone.
package score

import (
	"fmt"
	"math"
	"sort"

	"github.com/LeadScopeAI/leadscope-mvp/engine/domain"
)

// Component keys in OpportunityScore.Components.
const (
	ComponentUrgency            = "urgency"
	ComponentTechBreadth        = "tech_breadth"
	ComponentPainSeverity       = "pain_severity"
	ComponentBudgetTransparency = "budget_transparency"
)

// Weights configures the linear combination. Must be non-negative and sum
// to 1 within tolerance.
type Weights struct {
	Urgency            float64 `json:"urgency"`
	TechBreadth        float64 `json:"tech_breadth"`
	PainSeverity       float64 `json:"pain_severity"`
	BudgetTransparency float64 `json:"budget_transparency"`
}

// DefaultWeights weight urgency highest: urgent hiring is the strongest
// buying signal.
var DefaultWeights = Weights{
	Urgency:            0.35,
	TechBreadth:        0.25,
	PainSeverity:       0.25,
	BudgetTransparency: 0.15,
}

const weightTolerance = 1e-6

// Validate rejects negative weights and weight sets that do not sum to 1.
// A misconfigured scorer would silently produce a meaningless ranking, so
// this is checked before any batch work starts.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		ComponentUrgency:            w.Urgency,
		ComponentTechBreadth:        w.TechBreadth,
		ComponentPainSeverity:       w.PainSeverity,
		ComponentBudgetTransparency: w.BudgetTransparency,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s weight %v is negative", domain.ErrInvalidWeights, name, v)
		}
	}
	sum := w.Urgency + w.TechBreadth + w.PainSeverity + w.BudgetTransparency
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: weights sum to %v, want 1", domain.ErrInvalidWeights, sum)
	}
	return nil
}

// OpportunityScore is one company's ranked result. Always recomputable from
// its profile; never edited directly.
type OpportunityScore struct {
	Company    string             `json:"company"`
	Score      float64            `json:"score"`
	Rank       int                `json:"rank"`
	Components map[string]float64 `json:"components"`
}

// Rank scores and orders the profiles. Sort is total: score descending, then
// job count descending, then company ascending; ranks are contiguous 1..N.
func Rank(profiles []domain.CompanyProfile, w Weights) ([]OpportunityScore, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}

	urgency := normalize(profiles, func(p domain.CompanyProfile) float64 { return p.UrgentRatio })
	breadth := normalize(profiles, func(p domain.CompanyProfile) float64 { return float64(len(p.TechnologyCounts)) })
	pain := normalize(profiles, painDensity)
	budget := normalize(profiles, func(p domain.CompanyProfile) float64 { return p.BudgetTransparencyRatio })

	jobCount := make(map[string]int, len(profiles))
	scores := make([]OpportunityScore, len(profiles))
	for i, p := range profiles {
		jobCount[p.Company] = p.JobCount
		c := map[string]float64{
			ComponentUrgency:            urgency[i],
			ComponentTechBreadth:        breadth[i],
			ComponentPainSeverity:       pain[i],
			ComponentBudgetTransparency: budget[i],
		}
		scores[i] = OpportunityScore{
			Company: p.Company,
			Score: w.Urgency*c[ComponentUrgency] +
				w.TechBreadth*c[ComponentTechBreadth] +
				w.PainSeverity*c[ComponentPainSeverity] +
				w.BudgetTransparency*c[ComponentBudgetTransparency],
			Components: c,
		}
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		ji, jj := jobCount[scores[i].Company], jobCount[scores[j].Company]
		if ji != jj {
			return ji > jj
		}
		return scores[i].Company < scores[j].Company
	})
	for i := range scores {
		scores[i].Rank = i + 1
	}
	return scores, nil
}

func painDensity(p domain.CompanyProfile) float64 {
	total := 0
	for _, c := range p.PainPointCounts {
		total += c
	}
	if p.JobCount == 0 {
		return 0
	}
	return float64(total) / float64(p.JobCount)
}

// normalize min-max scales the metric across the batch. A constant metric
// maps to 0 for everyone: no spread means no ranking signal.
func normalize(profiles []domain.CompanyProfile, metric func(domain.CompanyProfile) float64) []float64 {
	vals := make([]float64, len(profiles))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, p := range profiles {
		vals[i] = metric(p)
		lo = math.Min(lo, vals[i])
		hi = math.Max(hi, vals[i])
	}
	out := make([]float64, len(vals))
	if hi == lo {
		return out
	}
	for i, v := range vals {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}
