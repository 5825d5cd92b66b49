// Package semantic owns all Qdrant operations for the manual passage index.
package semantic

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"github.com/rotisserie/eris"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Store is the sole owner of the Qdrant connection.
type Store struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// New connects to Qdrant at the given gRPC address.
func New(addr string, collection string) (*Store, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, eris.Wrapf(err, "semantic: dial qdrant %s", addr)
	}
	return &Store{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// Close closes the underlying gRPC connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// EnsureCollection creates the collection with cosine distance if missing.
func (s *Store) EnsureCollection(ctx context.Context, dims int) error {
	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return eris.Wrap(err, "semantic: list collections")
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == s.collection {
			return nil
		}
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return eris.Wrapf(err, "semantic: create collection %s", s.collection)
	}
	return nil
}

// Upsert stores passage records. Existing IDs are overwritten, which makes
// re-indexing a manual idempotent.
func (s *Store) Upsert(ctx context.Context, records []PassageRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: r.ID},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: r.Embedding},
				},
			},
			Payload: passagePayload(r),
		}
	}

	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return eris.Wrapf(err, "semantic: upsert %d points", len(records))
	}
	return nil
}

// Search performs k-NN similarity search and returns scored passages with
// their citation metadata.
func (s *Store) Search(ctx context.Context, embedding []float32, topK int) ([]SearchResult, error) {
	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         embedding,
		Limit:          uint64(topK),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "semantic: search")
	}

	results := make([]SearchResult, len(resp.GetResult()))
	for i, r := range resp.GetResult() {
		sr := SearchResult{
			ID:    r.GetId().GetUuid(),
			Score: r.GetScore(),
		}
		for k, val := range r.GetPayload() {
			switch k {
			case "content":
				sr.Content = val.GetStringValue()
			case "source":
				sr.Source = val.GetStringValue()
			case "file":
				sr.File = val.GetStringValue()
			case "page":
				sr.Page = int(val.GetIntegerValue())
			case "uri":
				sr.URI = val.GetStringValue()
			}
		}
		results[i] = sr
	}
	return results, nil
}

func passagePayload(r PassageRecord) map[string]*pb.Value {
	return map[string]*pb.Value{
		"content":   {Kind: &pb.Value_StringValue{StringValue: r.Content}},
		"source":    {Kind: &pb.Value_StringValue{StringValue: r.Source}},
		"file":      {Kind: &pb.Value_StringValue{StringValue: r.File}},
		"page":      {Kind: &pb.Value_IntegerValue{IntegerValue: int64(r.Page)}},
		"file_page": {Kind: &pb.Value_StringValue{StringValue: fmt.Sprintf("%s_%d", r.File, r.Page)}},
		"uri":       {Kind: &pb.Value_StringValue{StringValue: fmt.Sprintf("%s#page=%d", r.Source, r.Page)}},
	}
}
