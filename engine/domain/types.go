// Package domain defines core record types, constants, and validation for the
// LeadScope engine pipeline. It acts as the validation gate at pipeline entry points.
package domain

import "time"

// Posting is one job advertisement record as delivered by source ingestion.
// Immutable once ingested; the engine only reads it.
type Posting struct {
	ID          string    `json:"id"`
	Company     string    `json:"company"`
	Title       string    `json:"title,omitempty"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description"`
	PostedAt    time.Time `json:"posted_at,omitempty"`
	Source      string    `json:"source,omitempty"`
}

// Budget holds compensation details parsed out of a posting.
type Budget struct {
	SalaryRange     string `json:"salary_range,omitempty"`
	HourlyRate      string `json:"hourly_rate,omitempty"`
	EquityMentioned bool   `json:"equity_mentioned"`
}

// Empty reports whether no budget signal of any kind was found.
func (b Budget) Empty() bool {
	return b.SalaryRange == "" && b.HourlyRate == "" && !b.EquityMentioned
}

// SignalSet is the per-posting extraction result. Created once by the
// extractor and never mutated; reprocessing replaces the whole value.
type SignalSet struct {
	Technologies   []string `json:"technologies"`
	UrgencyPhrases []string `json:"urgency_phrases"` // first-occurrence order
	Budget         Budget   `json:"budget"`
	PainPoints     []string `json:"pain_points"`
	Skills         []string `json:"skills"`
}

// UrgencyLabel is the binary urgency classification outcome.
type UrgencyLabel string

const (
	UrgencyUrgent UrgencyLabel = "urgent"
	UrgencyNormal UrgencyLabel = "normal"
)

// Decision records which classifier path produced a label.
type Decision string

const (
	DecisionModel    Decision = "model"
	DecisionFallback Decision = "fallback"
)

// Classification is the per-posting classifier output. Deterministic given
// identical input, lexicon version, and model version.
type Classification struct {
	UrgencyLabel      UrgencyLabel       `json:"urgency_label"`
	UrgencyConfidence float64            `json:"urgency_confidence"`
	UrgencyDecision   Decision           `json:"urgency_decision"`
	TechLabels        []string           `json:"tech_labels"`
	TechConfidence    map[string]float64 `json:"tech_confidence"`
	TechDecision      Decision           `json:"tech_decision"`
}

// CompanyProfile aggregates signals for one company across a batch.
// Rebuilt fully on every run; never merged incrementally.
type CompanyProfile struct {
	Company                 string         `json:"company"`
	JobCount                int            `json:"job_count"`
	UrgentRatio             float64        `json:"urgent_ratio"`
	TechnologyCounts        map[string]int `json:"technology_counts"`
	BudgetTransparencyRatio float64        `json:"budget_transparency_ratio"`
	PainPointCounts         map[string]int `json:"pain_point_counts"`
	AvgDescriptionLength    float64        `json:"avg_description_length"`
	ClusterID               int            `json:"cluster_id"` // -1 until segmentation assigns one
}

// EnrichedPosting is the per-posting output record: the original posting
// plus its extracted signals and classification, flattened for consumers.
type EnrichedPosting struct {
	Posting
	SignalSet
	Classification
}
