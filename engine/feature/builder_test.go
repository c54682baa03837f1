package feature

import (
	"reflect"
	"sort"
	"testing"

	"github.com/LeadScopeAI/leadscope-mvp/engine/domain"
	"github.com/LeadScopeAI/leadscope-mvp/engine/extract"
)

func buildFixture(t *testing.T, descriptions []string) ([]domain.Posting, []domain.SignalSet) {
	t.Helper()
	postings := make([]domain.Posting, len(descriptions))
	signals := make([]domain.SignalSet, len(descriptions))
	for i, d := range descriptions {
		postings[i] = domain.Posting{ID: "p", Company: "Acme", Description: d}
		signals[i] = extract.Signals(d)
	}
	return postings, signals
}

func TestBuildUniformDimensions(t *testing.T) {
	postings, signals := buildFixture(t, []string{
		"Python backend engineer for urgent migration work",
		"Senior React developer, legacy refactor",
		"Data engineer with Spark and Kafka",
	})
	m := Build(postings, signals, 2)

	if len(m.Vectors) != 3 {
		t.Fatalf("got %d vectors", len(m.Vectors))
	}
	dims := m.Dims()
	for i, v := range m.Vectors {
		if len(v.Terms)+len(v.Dense) != dims {
			t.Errorf("vector %d has %d dims, want %d", i, len(v.Terms)+len(v.Dense), dims)
		}
		if len(v.Dense) != len(DenseNames) {
			t.Errorf("vector %d dense size %d, want %d", i, len(v.Dense), len(DenseNames))
		}
	}
}

func TestBuildVocabularySortedAndIndexed(t *testing.T) {
	postings, signals := buildFixture(t, []string{
		"golang services and golang tooling",
		"python data pipelines",
	})
	m := Build(postings, signals, 1)

	if !sort.StringsAreSorted(m.Vocabulary) {
		t.Fatalf("vocabulary not sorted: %v", m.Vocabulary)
	}
	for i, term := range m.Vocabulary {
		if m.Index[term] != i {
			t.Fatalf("index mismatch for %q: %d != %d", term, m.Index[term], i)
		}
	}
	if len(m.IDF) != len(m.Vocabulary) {
		t.Fatalf("idf length %d, vocabulary %d", len(m.IDF), len(m.Vocabulary))
	}
}

func TestBuildDeterministic(t *testing.T) {
	descs := []string{
		"urgent python migration",
		"react frontend rebuild",
		"kafka streaming platform",
	}
	p1, s1 := buildFixture(t, descs)
	p2, s2 := buildFixture(t, descs)

	a := Build(p1, s1, 4)
	b := Build(p2, s2, 1)
	if !reflect.DeepEqual(a.Vocabulary, b.Vocabulary) {
		t.Fatalf("vocabulary differs across runs")
	}
	if !reflect.DeepEqual(a.Vectors, b.Vectors) {
		t.Fatalf("vectors differ across runs or worker counts")
	}
}

func TestBuildSinglePosting(t *testing.T) {
	postings, signals := buildFixture(t, []string{"lone python posting"})
	m := Build(postings, signals, 4)
	if len(m.Vectors) != 1 {
		t.Fatalf("got %d vectors", len(m.Vectors))
	}
	if m.Dims() == len(DenseNames) {
		t.Fatal("expected non-empty vocabulary for non-empty text")
	}
}

func TestBuildEmptyBatch(t *testing.T) {
	m := Build(nil, nil, 4)
	if len(m.Vectors) != 0 || len(m.Vocabulary) != 0 {
		t.Fatalf("empty batch should produce empty matrix, got %+v", m)
	}
}

func TestTokenizeDropsStopWordsAndShortTokens(t *testing.T) {
	tokens := Tokenize("The quick fix: we migrate to Go, a new stack!")
	for _, tok := range tokens {
		if stopWords[tok] {
			t.Errorf("stop word %q survived", tok)
		}
		if len(tok) < 2 {
			t.Errorf("short token %q survived", tok)
		}
	}
}

func TestDenseFeatures(t *testing.T) {
	desc := "Urgent Python role, salary $100k, legacy migration"
	postings, signals := buildFixture(t, []string{desc})
	m := Build(postings, signals, 1)

	dense := m.Vectors[0].Dense
	byName := map[string]float64{}
	for i, name := range DenseNames {
		byName[name] = dense[i]
	}
	if byName["description_length"] != float64(len(desc)) {
		t.Errorf("description_length: got %v", byName["description_length"])
	}
	if byName["technology_count"] != 1 {
		t.Errorf("technology_count: got %v", byName["technology_count"])
	}
	if byName["urgency_phrase_count"] != 1 {
		t.Errorf("urgency_phrase_count: got %v", byName["urgency_phrase_count"])
	}
	if byName["has_salary"] != 1 {
		t.Errorf("has_salary: got %v", byName["has_salary"])
	}
	if byName["pain_point_count"] < 1 {
		t.Errorf("pain_point_count: got %v", byName["pain_point_count"])
	}
}
