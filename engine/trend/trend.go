// Package trend projects batch-level metrics forward from snapshot history.
// The predictor is pure; history storage is an injected capability so the
// core never touches disk itself.
package trend

import (
	"math"
	"time"

	"github.com/LeadScopeAI/leadscope-mvp/pkg/fn"
)

// Metric keys every snapshot carries.
const (
	MetricJobVolume          = "job_volume"
	MetricUrgentRatio        = "urgent_ratio"
	MetricAvgTechCount       = "avg_tech_count"
	MetricPainDensity        = "pain_density"
	MetricBudgetTransparency = "budget_transparency"
)

// MetricKeys lists every snapshot metric in canonical order.
var MetricKeys = []string{
	MetricJobVolume,
	MetricUrgentRatio,
	MetricAvgTechCount,
	MetricPainDensity,
	MetricBudgetTransparency,
}

// Snapshot is one batch's metric readings, appended to history after each run.
type Snapshot struct {
	BatchID string             `json:"batch_id"`
	TakenAt time.Time          `json:"taken_at"`
	Metrics map[string]float64 `json:"metrics"`
}

// Direction of a projected metric.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
	Flat Direction = "flat"
)

// Projection is one metric's trend estimate.
type Projection struct {
	Direction Direction `json:"direction"`
	Magnitude float64   `json:"magnitude"` // |slope| / series stddev
}

// flatBelow is the normalized-magnitude floor under which a slope is treated
// as noise rather than a trend.
const flatBelow = 0.05

// Predict projects every metric from the snapshot history. Fewer than two
// snapshots is insufficient history: every metric comes back flat/0, never an
// error. With exactly two the slope is the last delta; with more it is a
// least-squares fit over snapshot index.
func Predict(history []Snapshot) map[string]Projection {
	out := make(map[string]Projection, len(MetricKeys))
	for _, key := range MetricKeys {
		out[key] = Projection{Direction: Flat}
	}
	if len(history) < 2 {
		return out
	}

	for _, key := range MetricKeys {
		series := fn.Map(history, func(s Snapshot) float64 { return s.Metrics[key] })
		out[key] = project(series)
	}
	return out
}

func project(series []float64) Projection {
	var slope float64
	if len(series) == 2 {
		slope = series[1] - series[0]
	} else {
		slope = leastSquaresSlope(series)
	}

	sd := stddev(series)
	if sd == 0 {
		return Projection{Direction: Flat}
	}
	mag := math.Abs(slope) / sd
	if mag < flatBelow {
		return Projection{Direction: Flat, Magnitude: mag}
	}
	dir := Up
	if slope < 0 {
		dir = Down
	}
	return Projection{Direction: dir, Magnitude: mag}
}

// leastSquaresSlope fits y = a + b*i over snapshot index i and returns b.
func leastSquaresSlope(y []float64) float64 {
	n := float64(len(y))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// stddev is the population standard deviation.
func stddev(series []float64) float64 {
	n := float64(len(series))
	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= n
	varsum := 0.0
	for _, v := range series {
		d := v - mean
		varsum += d * d
	}
	return math.Sqrt(varsum / n)
}
