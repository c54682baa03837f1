// Package segment groups company profiles into behavioral clusters. Candidate
// cluster counts are tried concurrently and the silhouette metric picks the
// winner; degenerate inputs collapse to a single segment with a warning
// instead of failing the batch.
package segment

import (
	"fmt"
	"math"

	"github.com/LeadScopeAI/leadscope-mvp/engine/domain"
	"github.com/LeadScopeAI/leadscope-mvp/pkg/fn"
)

// FeatureNames is the fixed profile feature schema, in vector order.
var FeatureNames = []string{
	"job_count",
	"urgent_ratio",
	"unique_tech_count",
	"tech_mention_volume",
	"budget_transparency",
	"pain_density",
	"avg_description_length",
}

// Options tunes a segmentation run. Zero values select the defaults.
type Options struct {
	KMin          int   // default 2
	KMax          int   // default 5
	Seed          int64 // default 42
	MaxIterations int   // default 100
}

func (o Options) withDefaults() Options {
	if o.KMin <= 0 {
		o.KMin = 2
	}
	if o.KMax <= 0 {
		o.KMax = 5
	}
	if o.Seed == 0 {
		o.Seed = 42
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = 100
	}
	return o
}

// Segmentation is the clustering outcome. Cluster ids are run-local integers
// with no meaning across runs.
type Segmentation struct {
	K           int            `json:"k"`
	Quality     float64        `json:"quality"` // mean silhouette, 0 for a single segment
	Warning     string         `json:"warning,omitempty"`
	Centroids   [][]float64    `json:"centroids"`
	Assignments map[string]int `json:"assignments"` // company -> cluster id
}

// Segment clusters the profiles and returns the selected partition. Profiles
// are not mutated; callers apply Assignments to ClusterID themselves.
func Segment(profiles []domain.CompanyProfile, opts Options) Segmentation {
	opts = opts.withDefaults()

	if len(profiles) < opts.KMin {
		return singleSegment(profiles, fmt.Sprintf("only %d companies, need %d for clustering", len(profiles), opts.KMin))
	}

	points := standardize(fn.Map(profiles, Vectorize))
	if points == nil {
		return singleSegment(profiles, "profile features have zero variance")
	}

	kMax := opts.KMax
	if kMax > len(profiles)-1 {
		kMax = len(profiles) - 1
	}
	if kMax < opts.KMin {
		kMax = opts.KMin
	}

	type run struct {
		k         int
		quality   float64
		assign    []int
		centroids [][]float64
	}
	var candidates []func() run
	for k := opts.KMin; k <= kMax; k++ {
		k := k
		candidates = append(candidates, func() run {
			assign, centroids := kmeans(points, k, opts.Seed, opts.MaxIterations)
			return run{k: k, quality: silhouette(points, assign, k), assign: assign, centroids: centroids}
		})
	}
	runs := fn.FanOut(candidates...)

	// Ties go to the smaller k; runs is ordered ascending by k, so strict
	// greater-than gives exactly that.
	best := runs[0]
	for _, r := range runs[1:] {
		if r.quality > best.quality {
			best = r
		}
	}

	out := Segmentation{
		K:           best.k,
		Quality:     best.quality,
		Centroids:   best.centroids,
		Assignments: make(map[string]int, len(profiles)),
	}
	for i, p := range profiles {
		out.Assignments[p.Company] = best.assign[i]
	}
	return out
}

func singleSegment(profiles []domain.CompanyProfile, warning string) Segmentation {
	out := Segmentation{
		K:           1,
		Warning:     warning,
		Assignments: make(map[string]int, len(profiles)),
	}
	for _, p := range profiles {
		out.Assignments[p.Company] = 0
	}
	return out
}

// Vectorize maps a profile onto the FeatureNames schema. The raw vector is
// also what the semantic store persists, so the schema is part of the
// cross-batch contract.
func Vectorize(p domain.CompanyProfile) []float64 {
	techVolume := 0
	for _, c := range p.TechnologyCounts {
		techVolume += c
	}
	painVolume := 0
	for _, c := range p.PainPointCounts {
		painVolume += c
	}
	jobs := float64(p.JobCount)
	if jobs == 0 {
		jobs = 1
	}
	return []float64{
		float64(p.JobCount),
		p.UrgentRatio,
		float64(len(p.TechnologyCounts)),
		float64(techVolume),
		p.BudgetTransparencyRatio,
		float64(painVolume) / jobs,
		p.AvgDescriptionLength / 100,
	}
}

// standardize z-scores each column over the batch. Constant columns become
// zeros; if every column is constant the matrix is degenerate and nil is
// returned.
func standardize(points [][]float64) [][]float64 {
	if len(points) == 0 {
		return nil
	}
	dims := len(points[0])
	mean := make([]float64, dims)
	for _, p := range points {
		for d, v := range p {
			mean[d] += v
		}
	}
	n := float64(len(points))
	for d := range mean {
		mean[d] /= n
	}

	std := make([]float64, dims)
	for _, p := range points {
		for d, v := range p {
			diff := v - mean[d]
			std[d] += diff * diff
		}
	}
	anyVar := false
	for d := range std {
		std[d] = math.Sqrt(std[d] / n)
		if std[d] > 0 {
			anyVar = true
		}
	}
	if !anyVar {
		return nil
	}

	out := make([][]float64, len(points))
	for i, p := range points {
		row := make([]float64, dims)
		for d, v := range p {
			if std[d] > 0 {
				row[d] = (v - mean[d]) / std[d]
			}
		}
		out[i] = row
	}
	return out
}
