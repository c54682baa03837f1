package graph

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/LeadScopeAI/leadscope-mvp/pkg/repo"
)

// newCompanyRepo builds the generic repository for Company nodes, keyed by
// company name.
func newCompanyRepo(driver neo4j.DriverWithContext) *repo.Neo4jRepo[CompanyRecord, string] {
	return repo.NewNeo4jRepo[CompanyRecord, string](
		driver,
		"Company",
		func(c CompanyRecord) map[string]any {
			return map[string]any{
				"name":         c.Company,
				"job_count":    c.JobCount,
				"urgent_ratio": c.UrgentRatio,
				"score":        c.Score,
				"rank":         c.Rank,
				"batch_id":     c.BatchID,
			}
		},
		func(rec *neo4j.Record) (CompanyRecord, error) {
			node, _, err := neo4j.GetRecordValue[dbtype.Node](rec, "n")
			if err != nil {
				return CompanyRecord{}, err
			}
			return companyFromProps(node.Props), nil
		},
		repo.WithIDKey[CompanyRecord, string]("name"),
	)
}
