package classify

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/LeadScopeAI/leadscope-mvp/engine/domain"
	"github.com/LeadScopeAI/leadscope-mvp/engine/feature"
)

// stubModel returns fixed scores, optionally failing.
type stubModel struct {
	urgency float64
	tech    map[string]float64
	err     error
}

func (m *stubModel) ScoreUrgency(feature.Vector, []string) (float64, error) {
	return m.urgency, m.err
}

func (m *stubModel) ScoreTech(feature.Vector, []string) (map[string]float64, error) {
	return m.tech, m.err
}

func (m *stubModel) Version() string { return "stub-1" }

var urgentSignals = domain.SignalSet{
	Technologies:   []string{"Python", "AWS"},
	UrgencyPhrases: []string{"urgent"},
}

func TestNilModelFallsBack(t *testing.T) {
	c := New(nil, 0, nil)
	got := c.Classify(feature.Vector{}, urgentSignals)

	if got.UrgencyDecision != domain.DecisionFallback || got.TechDecision != domain.DecisionFallback {
		t.Fatalf("expected fallback decisions, got %+v", got)
	}
	if got.UrgencyLabel != domain.UrgencyUrgent || got.UrgencyConfidence != 1.0 {
		t.Errorf("urgency fallback: got %+v", got)
	}
	if !reflect.DeepEqual(got.TechLabels, []string{"Python", "AWS"}) {
		t.Errorf("tech fallback labels: got %v", got.TechLabels)
	}
	if got.TechConfidence["Python"] != 1.0 {
		t.Errorf("tech fallback confidence: got %v", got.TechConfidence)
	}
}

func TestFallbackNormalWithoutUrgencyPhrases(t *testing.T) {
	c := New(nil, 0, nil)
	got := c.Classify(feature.Vector{}, domain.SignalSet{})
	if got.UrgencyLabel != domain.UrgencyNormal {
		t.Fatalf("got %+v", got)
	}
}

func TestConfidentModelWins(t *testing.T) {
	model := &stubModel{urgency: 0.9, tech: map[string]float64{"Go": 0.8}}
	c := New(model, 0.6, nil)
	got := c.Classify(feature.Vector{}, urgentSignals)

	if got.UrgencyDecision != domain.DecisionModel || got.UrgencyLabel != domain.UrgencyUrgent {
		t.Errorf("urgency: got %+v", got)
	}
	if got.UrgencyConfidence != 0.9 {
		t.Errorf("urgency confidence: got %v", got.UrgencyConfidence)
	}
	if got.TechDecision != domain.DecisionModel || !reflect.DeepEqual(got.TechLabels, []string{"Go"}) {
		t.Errorf("tech: got %+v", got)
	}
}

func TestConfidentNormalPrediction(t *testing.T) {
	// Low urgency probability is a confident "normal".
	model := &stubModel{urgency: 0.05, tech: map[string]float64{}}
	c := New(model, 0.6, nil)
	got := c.Classify(feature.Vector{}, urgentSignals)

	if got.UrgencyDecision != domain.DecisionModel || got.UrgencyLabel != domain.UrgencyNormal {
		t.Errorf("got %+v", got)
	}
	if got.UrgencyConfidence < 0.94 || got.UrgencyConfidence > 0.96 {
		t.Errorf("confidence: got %v", got.UrgencyConfidence)
	}
}

func TestLowConfidenceFallsBackPerLabel(t *testing.T) {
	// Urgency is uncertain, tech is confident: only urgency falls back.
	model := &stubModel{urgency: 0.55, tech: map[string]float64{"Rust": 0.95}}
	c := New(model, 0.6, nil)
	got := c.Classify(feature.Vector{}, urgentSignals)

	if got.UrgencyDecision != domain.DecisionFallback {
		t.Errorf("urgency should fall back: %+v", got)
	}
	if got.TechDecision != domain.DecisionModel {
		t.Errorf("tech should stay on model: %+v", got)
	}
}

func TestModelErrorFallsBack(t *testing.T) {
	model := &stubModel{err: errors.New("model unavailable")}
	c := New(model, 0.6, nil)
	got := c.Classify(feature.Vector{}, urgentSignals)

	if got.UrgencyDecision != domain.DecisionFallback || got.TechDecision != domain.DecisionFallback {
		t.Fatalf("expected full fallback, got %+v", got)
	}
	if got.UrgencyLabel != domain.UrgencyUrgent {
		t.Errorf("fallback label: got %+v", got)
	}
}

func TestNoTechAboveThresholdFallsBack(t *testing.T) {
	model := &stubModel{urgency: 0.9, tech: map[string]float64{"Go": 0.3, "Rust": 0.5}}
	c := New(model, 0.6, nil)
	got := c.Classify(feature.Vector{}, urgentSignals)

	if got.TechDecision != domain.DecisionFallback {
		t.Fatalf("expected tech fallback, got %+v", got)
	}
}

func TestModelVersion(t *testing.T) {
	if v := New(nil, 0, nil).ModelVersion(); v != "" {
		t.Errorf("nil model version: got %q", v)
	}
	if v := New(&stubModel{}, 0, nil).ModelVersion(); v != "stub-1" {
		t.Errorf("got %q", v)
	}
}

func TestLoadModel(t *testing.T) {
	src := `{
		"id": "lead-urgency-v3",
		"urgency": {"bias": -1, "terms": {"urgent": 2.5}, "dense": {"urgency_phrase_count": 1.2}},
		"tech": {"Python": {"bias": 0, "terms": {"python": 3}}}
	}`
	m, err := LoadModel(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if m.Version() != "lead-urgency-v3" {
		t.Fatalf("version: got %q", m.Version())
	}

	vocab := []string{"python", "urgent"}
	loaded := feature.Vector{Terms: []float64{0, 2}, Dense: []float64{0, 0, 0, 2, 0, 0}}
	empty := feature.Vector{Terms: []float64{0, 0}, Dense: []float64{0, 0, 0, 0, 0, 0}}

	hi, _ := m.ScoreUrgency(loaded, vocab)
	lo, _ := m.ScoreUrgency(empty, vocab)
	if hi <= lo {
		t.Fatalf("urgent-weighted vector should score higher: %v <= %v", hi, lo)
	}

	probs, _ := m.ScoreTech(feature.Vector{Terms: []float64{1.5, 0}, Dense: empty.Dense}, vocab)
	if probs["Python"] <= 0.5 {
		t.Fatalf("python-weighted vector should score above 0.5, got %v", probs["Python"])
	}
}

func TestLoadModelRejectsMissingID(t *testing.T) {
	if _, err := LoadModel(strings.NewReader(`{"urgency": {}}`)); err == nil {
		t.Fatal("expected error for missing id")
	}
}
