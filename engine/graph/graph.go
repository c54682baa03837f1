// Package graph persists company intelligence to Neo4j: Company nodes carry
// profile and score properties, Technology nodes are shared across companies,
// and USES edges carry per-batch mention counts.
package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/LeadScopeAI/leadscope-mvp/engine/domain"
	"github.com/LeadScopeAI/leadscope-mvp/engine/score"
	"github.com/LeadScopeAI/leadscope-mvp/pkg/repo"
)

// CompanyGraph is the sole owner of all Neo4j operations.
type CompanyGraph struct {
	driver    neo4j.DriverWithContext
	companies *repo.Neo4jRepo[CompanyRecord, string]
}

// New creates a CompanyGraph on an existing driver. The caller owns the
// driver lifecycle.
func New(driver neo4j.DriverWithContext) *CompanyGraph {
	return &CompanyGraph{driver: driver, companies: newCompanyRepo(driver)}
}

// GetCompany returns one company node by name.
func (g *CompanyGraph) GetCompany(ctx context.Context, name string) (CompanyRecord, error) {
	return g.companies.Get(ctx, name)
}

// ListCompanies pages through company nodes.
func (g *CompanyGraph) ListCompanies(ctx context.Context, opts repo.ListOpts) ([]CompanyRecord, error) {
	return g.companies.List(ctx, opts)
}

// CompanyRecord is the read model for company nodes.
type CompanyRecord struct {
	Company     string  `json:"company"`
	JobCount    int     `json:"job_count"`
	UrgentRatio float64 `json:"urgent_ratio"`
	Score       float64 `json:"score"`
	Rank        int     `json:"rank"`
	BatchID     string  `json:"batch_id"`
}

// SaveBatch writes one batch's profiles and scores in a single transaction.
// Nodes are merged by company name, so each batch overwrites the previous
// snapshot of a company rather than duplicating it.
func (g *CompanyGraph) SaveBatch(ctx context.Context, batchID string, profiles []domain.CompanyProfile, scores []score.OpportunityScore) error {
	byCompany := make(map[string]score.OpportunityScore, len(scores))
	for _, s := range scores {
		byCompany[s.Company] = s
	}

	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	_, err := sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, p := range profiles {
			s := byCompany[p.Company]
			cypher := `MERGE (c:Company {name: $name}) SET c += $props`
			if _, err := tx.Run(ctx, cypher, map[string]any{
				"name": p.Company,
				"props": map[string]any{
					"job_count":           p.JobCount,
					"urgent_ratio":        p.UrgentRatio,
					"budget_transparency": p.BudgetTransparencyRatio,
					"cluster_id":          p.ClusterID,
					"score":               s.Score,
					"rank":                s.Rank,
					"batch_id":            batchID,
				},
			}); err != nil {
				return nil, err
			}

			for tech, count := range p.TechnologyCounts {
				cypher := `MERGE (c:Company {name: $company})
				           MERGE (t:Technology {name: $tech})
				           MERGE (c)-[r:USES]->(t)
				           SET r.count = $count, r.batch_id = $batch`
				if _, err := tx.Run(ctx, cypher, map[string]any{
					"company": p.Company,
					"tech":    tech,
					"count":   count,
					"batch":   batchID,
				}); err != nil {
					return nil, err
				}
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("graph: save batch %s: %w", batchID, err)
	}
	return nil
}

// TopCompanies returns the highest-scoring companies currently in the graph.
func (g *CompanyGraph) TopCompanies(ctx context.Context, limit int) ([]CompanyRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MATCH (c:Company) RETURN c ORDER BY c.score DESC, c.name ASC LIMIT $limit`
	result, err := sess.Run(ctx, cypher, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("graph: top companies: %w", err)
	}
	return collectCompanies(ctx, result)
}

// CompaniesUsing returns companies with a USES edge to the technology.
func (g *CompanyGraph) CompaniesUsing(ctx context.Context, technology string) ([]CompanyRecord, error) {
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MATCH (c:Company)-[:USES]->(:Technology {name: $tech})
	           RETURN c ORDER BY c.score DESC, c.name ASC`
	result, err := sess.Run(ctx, cypher, map[string]any{"tech": technology})
	if err != nil {
		return nil, fmt.Errorf("graph: companies using %s: %w", technology, err)
	}
	return collectCompanies(ctx, result)
}

func collectCompanies(ctx context.Context, result neo4j.ResultWithContext) ([]CompanyRecord, error) {
	var items []CompanyRecord
	for result.Next(ctx) {
		node, _, err := neo4j.GetRecordValue[dbtype.Node](result.Record(), "c")
		if err != nil {
			return nil, err
		}
		items = append(items, companyFromProps(node.Props))
	}
	return items, nil
}

func companyFromProps(props map[string]any) CompanyRecord {
	return CompanyRecord{
		Company:     strProp(props, "name"),
		JobCount:    intProp(props, "job_count"),
		UrgentRatio: floatProp(props, "urgent_ratio"),
		Score:       floatProp(props, "score"),
		Rank:        intProp(props, "rank"),
		BatchID:     strProp(props, "batch_id"),
	}
}

func strProp(props map[string]any, key string) string {
	if s, ok := props[key].(string); ok {
		return s
	}
	return ""
}

func intProp(props map[string]any, key string) int {
	if n, ok := props[key].(int64); ok {
		return int(n)
	}
	return 0
}

func floatProp(props map[string]any, key string) float64 {
	if f, ok := props[key].(float64); ok {
		return f
	}
	return 0
}
