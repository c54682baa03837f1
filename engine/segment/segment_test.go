package segment

import (
	"reflect"
	"testing"

	"github.com/LeadScopeAI/leadscope-mvp/engine/domain"
)

func profile(company string, jobs int, urgent float64, techs map[string]int, budget float64) domain.CompanyProfile {
	return domain.CompanyProfile{
		Company:                 company,
		JobCount:                jobs,
		UrgentRatio:             urgent,
		TechnologyCounts:        techs,
		BudgetTransparencyRatio: budget,
		AvgDescriptionLength:    float64(100 * jobs),
		ClusterID:               -1,
	}
}

// Two well-separated populations: small quiet companies and large urgent ones.
func twoGroups() []domain.CompanyProfile {
	return []domain.CompanyProfile{
		profile("small-a", 1, 0, map[string]int{"PHP": 1}, 0),
		profile("small-b", 2, 0.1, map[string]int{"PHP": 2}, 0.1),
		profile("small-c", 1, 0, map[string]int{"Ruby": 1}, 0),
		profile("big-a", 40, 0.9, map[string]int{"Go": 30, "AWS": 25, "Kubernetes": 20}, 0.9),
		profile("big-b", 35, 0.8, map[string]int{"Go": 28, "AWS": 30, "Terraform": 15}, 1),
		profile("big-c", 45, 1, map[string]int{"Python": 40, "AWS": 35, "Docker": 22}, 0.8),
	}
}

func TestSegmentSeparatesGroups(t *testing.T) {
	seg := Segment(twoGroups(), Options{KMin: 2, KMax: 3})

	if seg.Warning != "" {
		t.Fatalf("unexpected warning: %s", seg.Warning)
	}
	if seg.K < 2 {
		t.Fatalf("expected at least 2 clusters, got %d", seg.K)
	}

	small := seg.Assignments["small-a"]
	if seg.Assignments["small-b"] != small || seg.Assignments["small-c"] != small {
		t.Errorf("small companies split: %v", seg.Assignments)
	}
	big := seg.Assignments["big-a"]
	if seg.Assignments["big-b"] != big || seg.Assignments["big-c"] != big {
		t.Errorf("big companies split: %v", seg.Assignments)
	}
	if small == big {
		t.Errorf("groups not separated: %v", seg.Assignments)
	}
	if seg.Quality <= 0 {
		t.Errorf("separated groups should have positive silhouette, got %v", seg.Quality)
	}
}

func TestSegmentDeterministic(t *testing.T) {
	a := Segment(twoGroups(), Options{})
	b := Segment(twoGroups(), Options{})
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("segmentation not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestSegmentTooFewCompanies(t *testing.T) {
	profiles := []domain.CompanyProfile{profile("only", 3, 0.5, map[string]int{"Go": 2}, 1)}
	seg := Segment(profiles, Options{KMin: 2})

	if seg.K != 1 {
		t.Fatalf("expected single segment, got k=%d", seg.K)
	}
	if seg.Warning == "" {
		t.Fatal("expected a degenerate-clustering warning")
	}
	if seg.Assignments["only"] != 0 {
		t.Fatalf("assignments: %v", seg.Assignments)
	}
	if seg.Quality != 0 {
		t.Fatalf("single segment quality should be 0, got %v", seg.Quality)
	}
}

func TestSegmentZeroVariance(t *testing.T) {
	profiles := []domain.CompanyProfile{
		profile("a", 2, 0.5, map[string]int{"Go": 2}, 0.5),
		profile("b", 2, 0.5, map[string]int{"Go": 2}, 0.5),
		profile("c", 2, 0.5, map[string]int{"Go": 2}, 0.5),
	}
	seg := Segment(profiles, Options{KMin: 2, KMax: 3})

	if seg.K != 1 || seg.Warning == "" {
		t.Fatalf("identical profiles should collapse to one warned segment: %+v", seg)
	}
}

func TestSegmentDoesNotMutateProfiles(t *testing.T) {
	profiles := twoGroups()
	Segment(profiles, Options{})
	for _, p := range profiles {
		if p.ClusterID != -1 {
			t.Fatalf("profile %s mutated", p.Company)
		}
	}
}

func TestVectorizeSchema(t *testing.T) {
	v := Vectorize(profile("x", 4, 0.25, map[string]int{"Go": 3, "AWS": 1}, 0.75))
	if len(v) != len(FeatureNames) {
		t.Fatalf("vector size %d, schema %d", len(v), len(FeatureNames))
	}
	if v[0] != 4 || v[1] != 0.25 || v[2] != 2 || v[3] != 4 || v[4] != 0.75 {
		t.Fatalf("unexpected features: %v", v)
	}
}

func TestStandardizeZeroMeanColumns(t *testing.T) {
	points := standardize([][]float64{{1, 10}, {2, 10}, {3, 10}})
	if points == nil {
		t.Fatal("variance exists in column 0, matrix is not degenerate")
	}
	sum := 0.0
	for _, p := range points {
		sum += p[0]
		if p[1] != 0 {
			t.Errorf("constant column should standardize to 0, got %v", p[1])
		}
	}
	if sum < -1e-9 || sum > 1e-9 {
		t.Errorf("standardized column mean should be 0, got %v", sum)
	}
}
