// Package feature converts postings and their signal sets into fixed-schema
// numeric vectors for classification. The text vocabulary is batch-local:
// it is fitted over the current batch and returned explicitly on the Matrix,
// so two batches can never share or leak vocabulary state, and vectors are
// not portable across runs.
package feature

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/LeadScopeAI/leadscope-mvp/engine/domain"
	"github.com/LeadScopeAI/leadscope-mvp/pkg/fn"
)

// MaxVocabulary caps the batch vocabulary at the highest-document-frequency
// terms, mirroring the upstream classifier's feature budget.
const MaxVocabulary = 1000

// DenseNames are the structured features appended after the term features,
// in vector order.
var DenseNames = []string{
	"description_length",
	"word_count",
	"technology_count",
	"urgency_phrase_count",
	"has_salary",
	"pain_point_count",
}

// Vector is one posting's feature vector: sparse-ish TF-IDF term weights
// followed by dense structured features. Every vector in a Matrix has
// identical dimensionality and ordering.
type Vector struct {
	Terms []float64 `json:"terms"`
	Dense []float64 `json:"dense"`
}

// Matrix is the batch feature set with its explicit vocabulary.
type Matrix struct {
	Vocabulary []string       `json:"vocabulary"` // sorted, index-aligned with Terms
	Index      map[string]int `json:"-"`
	IDF        []float64      `json:"idf"`
	Vectors    []Vector       `json:"vectors"` // posting order preserved
}

// Dims returns the full vector dimensionality.
func (m Matrix) Dims() int { return len(m.Vocabulary) + len(DenseNames) }

// Build fits the vocabulary over the whole batch, then vectorizes every
// posting against it. Tokenization of the first pass and vectorization of
// the second are both bounded-parallel; the vocabulary fit between them is
// the batch synchronization point. A single-posting batch still produces a
// valid vector.
func Build(postings []domain.Posting, signals []domain.SignalSet, workers int) Matrix {
	docs := fn.ParMap(postings, workers, func(p domain.Posting) []string {
		return Tokenize(p.Description)
	})

	vocab, idf := fitVocabulary(docs)
	index := make(map[string]int, len(vocab))
	for i, t := range vocab {
		index[t] = i
	}

	m := Matrix{Vocabulary: vocab, Index: index, IDF: idf}

	idxs := make([]int, len(postings))
	for i := range idxs {
		idxs[i] = i
	}
	m.Vectors = fn.ParMap(idxs, workers, func(i int) Vector {
		return vectorize(docs[i], postings[i], signals[i], index, idf)
	})
	return m
}

// fitVocabulary selects up to MaxVocabulary terms by document frequency
// (ties broken alphabetically) and computes smoothed IDF weights over the
// batch. The returned vocabulary is sorted so indices are deterministic.
func fitVocabulary(docs [][]string) ([]string, []float64) {
	df := make(map[string]int)
	for _, tokens := range docs {
		for _, t := range fn.Unique(tokens) {
			df[t]++
		}
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > MaxVocabulary {
		terms = terms[:MaxVocabulary]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for i, t := range terms {
		idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return terms, idf
}

func vectorize(tokens []string, p domain.Posting, s domain.SignalSet, index map[string]int, idf []float64) Vector {
	terms := make([]float64, len(index))
	for _, t := range tokens {
		if i, ok := index[t]; ok {
			terms[i] += idf[i]
		}
	}

	hasSalary := 0.0
	if s.Budget.SalaryRange != "" || s.Budget.HourlyRate != "" {
		hasSalary = 1
	}
	dense := []float64{
		float64(len(p.Description)),
		float64(len(tokens)),
		float64(len(s.Technologies)),
		float64(len(s.UrgencyPhrases)),
		hasSalary,
		float64(len(s.PainPoints)),
	}
	return Vector{Terms: terms, Dense: dense}
}

// Tokenize lowercases and splits text into alphanumeric tokens of length >= 2,
// dropping stop words.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var out []string
	for _, f := range fields {
		if len(f) < 2 || stopWords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true,
	"have": true, "in": true, "is": true, "it": true, "its": true, "of": true,
	"on": true, "or": true, "our": true, "that": true, "the": true,
	"their": true, "this": true, "to": true, "was": true, "we": true,
	"were": true, "will": true, "with": true, "you": true, "your": true,
}
