// Package aggregate rolls enriched postings up to company profiles and batch
// statistics. Grouping is exact-string on the company field; name
// normalization belongs to ingestion, not here.
package aggregate

import (
	"github.com/LeadScopeAI/leadscope-mvp/engine/domain"
	"github.com/LeadScopeAI/leadscope-mvp/pkg/fn"
)

// Stats summarizes one batch for the report.
type Stats struct {
	TotalPostings      int                  `json:"total_postings"`
	UrgentCount        int                  `json:"urgent_count"`
	UrgentRatio        float64              `json:"urgent_ratio"`
	WithSalary         int                  `json:"with_salary"`
	WithEquity         int                  `json:"with_equity"`
	UniqueTechnologies int                  `json:"unique_technologies"`
	TopTechnologies    []fn.Counted[string] `json:"top_technologies"` // top 10
	TopPainPoints      []fn.Counted[string] `json:"top_pain_points"`  // top 5
	TopSkills          []fn.Counted[string] `json:"top_skills"`       // top 15
	HiringVolume       []fn.Counted[string] `json:"hiring_volume"`    // top 10 companies
}

// Profiles builds one CompanyProfile per distinct company, sorted by company
// name so the output is deterministic. Profiles are rebuilt whole every run.
func Profiles(postings []domain.EnrichedPosting) []domain.CompanyProfile {
	groups := fn.GroupBy(postings, func(p domain.EnrichedPosting) string {
		return p.Company
	})

	profiles := make([]domain.CompanyProfile, 0, len(groups))
	for _, company := range fn.SortedKeys(groups) {
		profiles = append(profiles, buildProfile(company, groups[company]))
	}
	return profiles
}

func buildProfile(company string, postings []domain.EnrichedPosting) domain.CompanyProfile {
	p := domain.CompanyProfile{
		Company:          company,
		JobCount:         len(postings),
		TechnologyCounts: make(map[string]int),
		PainPointCounts:  make(map[string]int),
		ClusterID:        -1,
	}

	urgent := 0
	transparent := 0
	descLen := 0
	for _, post := range postings {
		if post.UrgencyLabel == domain.UrgencyUrgent {
			urgent++
		}
		if !post.Budget.Empty() {
			transparent++
		}
		descLen += len(post.Description)
		for _, t := range post.Technologies {
			p.TechnologyCounts[t]++
		}
		for _, pp := range post.PainPoints {
			p.PainPointCounts[pp]++
		}
	}

	n := float64(len(postings))
	p.UrgentRatio = float64(urgent) / n
	p.BudgetTransparencyRatio = float64(transparent) / n
	p.AvgDescriptionLength = float64(descLen) / n
	return p
}

// Statistics computes the batch-level summary.
func Statistics(postings []domain.EnrichedPosting) Stats {
	s := Stats{TotalPostings: len(postings)}
	if len(postings) == 0 {
		return s
	}

	techs := fn.FlatMap(postings, func(p domain.EnrichedPosting) []string { return p.Technologies })
	pains := fn.FlatMap(postings, func(p domain.EnrichedPosting) []string { return p.PainPoints })
	skills := fn.FlatMap(postings, func(p domain.EnrichedPosting) []string { return p.Skills })

	techCounts := fn.Tally(techs)
	byName := func(a, b string) bool { return a < b }

	for _, p := range postings {
		if p.UrgencyLabel == domain.UrgencyUrgent {
			s.UrgentCount++
		}
		if p.Budget.SalaryRange != "" || p.Budget.HourlyRate != "" {
			s.WithSalary++
		}
		if p.Budget.EquityMentioned {
			s.WithEquity++
		}
	}
	s.UrgentRatio = float64(s.UrgentCount) / float64(len(postings))
	s.UniqueTechnologies = len(techCounts)
	s.TopTechnologies = fn.TopN(techCounts, 10, byName)
	s.TopPainPoints = fn.TopN(fn.Tally(pains), 5, byName)
	s.TopSkills = fn.TopN(fn.Tally(skills), 15, byName)

	volume := fn.CountBy(postings, func(p domain.EnrichedPosting) string { return p.Company })
	s.HiringVolume = fn.TopN(volume, 10, byName)
	return s
}

// TechCountList flattens a profile's technology counts into a deterministic
// count-descending list, for graph writes and report rendering.
func TechCountList(p domain.CompanyProfile) []fn.Counted[string] {
	return fn.TopN(p.TechnologyCounts, 0, func(a, b string) bool { return a < b })
}
