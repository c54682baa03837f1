package classify

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/LeadScopeAI/leadscope-mvp/engine/feature"
)

// LinearModel is a logistic scorer over the batch vocabulary plus dense
// features. Term weights are keyed by term string and resolved against the
// batch vocabulary at score time, so the model survives vocabulary drift
// between batches: unknown terms contribute nothing.
type LinearModel struct {
	ID      string                `json:"id"`
	Urgency LinearHead            `json:"urgency"`
	Tech    map[string]LinearHead `json:"tech"`
}

// LinearHead is one sigmoid output over term and dense weights.
type LinearHead struct {
	Bias  float64            `json:"bias"`
	Terms map[string]float64 `json:"terms"`
	Dense map[string]float64 `json:"dense"`
}

// LoadModel reads a LinearModel from JSON.
func LoadModel(r io.Reader) (*LinearModel, error) {
	var m LinearModel
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("model missing id")
	}
	return &m, nil
}

// LoadModelFile reads a LinearModel from a JSON file on disk.
func LoadModelFile(path string) (*LinearModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model %s: %w", path, err)
	}
	defer f.Close()
	return LoadModel(f)
}

func (m *LinearModel) Version() string { return m.ID }

func (m *LinearModel) ScoreUrgency(vec feature.Vector, vocab []string) (float64, error) {
	return m.Urgency.score(vec, vocab), nil
}

func (m *LinearModel) ScoreTech(vec feature.Vector, vocab []string) (map[string]float64, error) {
	out := make(map[string]float64, len(m.Tech))
	for label, head := range m.Tech {
		out[label] = head.score(vec, vocab)
	}
	return out, nil
}

func (h LinearHead) score(vec feature.Vector, vocab []string) float64 {
	z := h.Bias
	for i, term := range vocab {
		if w, ok := h.Terms[term]; ok && i < len(vec.Terms) {
			z += w * vec.Terms[i]
		}
	}
	for i, name := range feature.DenseNames {
		if w, ok := h.Dense[name]; ok && i < len(vec.Dense) {
			z += w * vec.Dense[i]
		}
	}
	return 1 / (1 + math.Exp(-z))
}
