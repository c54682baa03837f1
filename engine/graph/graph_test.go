package graph

import "testing"

func TestCompanyFromProps(t *testing.T) {
	got := companyFromProps(map[string]any{
		"name":         "Acme",
		"job_count":    int64(7),
		"urgent_ratio": 0.25,
		"score":        0.81,
		"rank":         int64(2),
		"batch_id":     "batch-1",
	})
	want := CompanyRecord{Company: "Acme", JobCount: 7, UrgentRatio: 0.25, Score: 0.81, Rank: 2, BatchID: "batch-1"}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCompanyFromPropsMissingAndMistyped(t *testing.T) {
	got := companyFromProps(map[string]any{
		"name":      42,
		"job_count": "seven",
	})
	if got != (CompanyRecord{}) {
		t.Fatalf("missing or mistyped props should zero out, got %+v", got)
	}
}
