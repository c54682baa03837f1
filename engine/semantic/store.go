// Package semantic stores company profile vectors in Qdrant for cross-batch
// similar-company lookup. One point per company, keyed deterministically by
// name, so each batch's write replaces the previous profile.
package semantic

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/LeadScopeAI/leadscope-mvp/engine/domain"
	"github.com/LeadScopeAI/leadscope-mvp/engine/score"
	"github.com/LeadScopeAI/leadscope-mvp/engine/segment"
)

// ProfileStore is the sole owner of all Qdrant operations.
type ProfileStore struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// New creates a ProfileStore connected to Qdrant at the given gRPC address.
func New(addr string, collection string) (*ProfileStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("semantic: dial qdrant %s: %w", addr, err)
	}
	return &ProfileStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// Close closes the underlying gRPC connection.
func (v *ProfileStore) Close() error {
	return v.conn.Close()
}

// EnsureCollection creates the collection if it doesn't exist. Dims must be
// len(segment.FeatureNames).
func (v *ProfileStore) EnsureCollection(ctx context.Context) error {
	list, err := v.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("semantic: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == v.collection {
			return nil
		}
	}

	_, err = v.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: v.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(len(segment.FeatureNames)),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("semantic: create collection %s: %w", v.collection, err)
	}
	return nil
}

// UpsertProfiles writes one point per company profile. Vectors are the raw
// (non-standardized) segmentation features so they stay comparable across
// batches.
func (v *ProfileStore) UpsertProfiles(ctx context.Context, batchID string, profiles []domain.CompanyProfile, scores []score.OpportunityScore) error {
	if len(profiles) == 0 {
		return nil
	}
	byCompany := make(map[string]score.OpportunityScore, len(scores))
	for _, s := range scores {
		byCompany[s.Company] = s
	}

	points := make([]*pb.PointStruct, len(profiles))
	for i, p := range profiles {
		s := byCompany[p.Company]
		raw := segment.Vectorize(p)
		vec := make([]float32, len(raw))
		for d, val := range raw {
			vec[d] = float32(val)
		}

		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: PointID(p.Company)},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: vec},
				},
			},
			Payload: map[string]*pb.Value{
				"company":    {Kind: &pb.Value_StringValue{StringValue: p.Company}},
				"batch_id":   {Kind: &pb.Value_StringValue{StringValue: batchID}},
				"cluster_id": {Kind: &pb.Value_IntegerValue{IntegerValue: int64(p.ClusterID)}},
				"score":      {Kind: &pb.Value_DoubleValue{DoubleValue: s.Score}},
				"rank":       {Kind: &pb.Value_IntegerValue{IntegerValue: int64(s.Rank)}},
			},
		}
	}

	wait := true
	_, err := v.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: v.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("semantic: upsert %d profiles: %w", len(points), err)
	}
	return nil
}

// SimilarCompany is one k-NN hit.
type SimilarCompany struct {
	Company    string  `json:"company"`
	Similarity float64 `json:"similarity"`
	ClusterID  int     `json:"cluster_id"`
	Score      float64 `json:"score"`
	Rank       int     `json:"rank"`
	BatchID    string  `json:"batch_id"`
}

// SimilarCompanies finds the companies whose stored profile vectors are
// closest to the given profile. The query company itself is excluded.
func (v *ProfileStore) SimilarCompanies(ctx context.Context, p domain.CompanyProfile, topK int) ([]SimilarCompany, error) {
	if topK <= 0 {
		topK = 5
	}
	raw := segment.Vectorize(p)
	vec := make([]float32, len(raw))
	for d, val := range raw {
		vec[d] = float32(val)
	}

	// topK+1 because the query company's own point may be in the result.
	resp, err := v.points.Search(ctx, &pb.SearchPoints{
		CollectionName: v.collection,
		Vector:         vec,
		Limit:          uint64(topK + 1),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("semantic: search similar to %s: %w", p.Company, err)
	}

	var out []SimilarCompany
	for _, hit := range resp.GetResult() {
		payload := hit.GetPayload()
		company := payload["company"].GetStringValue()
		if company == p.Company {
			continue
		}
		out = append(out, SimilarCompany{
			Company:    company,
			Similarity: float64(hit.GetScore()),
			ClusterID:  int(payload["cluster_id"].GetIntegerValue()),
			Score:      payload["score"].GetDoubleValue(),
			Rank:       int(payload["rank"].GetIntegerValue()),
			BatchID:    payload["batch_id"].GetStringValue(),
		})
		if len(out) == topK {
			break
		}
	}
	return out, nil
}

// PointID derives the deterministic point UUID for a company.
func PointID(company string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("leadscope/company/"+company)).String()
}
