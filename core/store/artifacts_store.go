package store

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"incident-tracker/core/graph"
)

type artifactsStore struct {
	g *graph.Graph
}

func NewArtifactsStore(g *graph.Graph) ArtifactsStore {
	return &artifactsStore{g: g}
}

func (s *artifactsStore) Get(ctx context.Context, id string) (*Artifact, error) {
	result, err := s.g.ExecuteRead(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (a:Artifact {id: $id})
			OPTIONAL MATCH (i:Incident)-[:HAS_ARTIFACT]->(a)
			RETURN a, i
		`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, ErrNotFound
		}
		record := res.Record()
		v, _ := record.Get("a")
		n, ok := asNode(v)
		if !ok {
			return nil, ErrNotFound
		}
		a := artifactFromNode(n)
		if v, ok := record.Get("i"); ok {
			if in, ok := asNode(v); ok {
				// Shallow parent only, enough to navigate back.
				a.Incident = &Incident{
					UID:   propString(in, "id"),
					Title: propString(in, "title"),
				}
			}
		}
		return &a, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Artifact), nil
}

func (s *artifactsStore) Update(ctx context.Context, id string, patch ArtifactPatch) (*Artifact, error) {
	now := time.Now().UTC()
	result, err := s.g.ExecuteWrite(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		set := "SET a.updated_at = datetime($now)"
		params := map[string]any{"id": id, "now": now.Format(time.RFC3339Nano)}
		if patch.Value != nil {
			set += ", a.value = $value"
			params["value"] = *patch.Value
		}
		if patch.Type != nil {
			set += ", a.artifact_type = $artifact_type"
			params["artifact_type"] = string(*patch.Type)
		}
		if patch.Status != nil {
			set += ", a.status = $status"
			params["status"] = string(*patch.Status)
		}
		if patch.Kind != nil {
			set += ", a.kind = $kind"
			params["kind"] = string(*patch.Kind)
		}
		if patch.Notes != nil {
			set += ", a.notes = $notes"
			params["notes"] = *patch.Notes
		}
		res, err := tx.Run(ctx, `MATCH (a:Artifact {id: $id}) `+set+` RETURN a`, params)
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, ErrNotFound
		}
		v, _ := res.Record().Get("a")
		n, ok := asNode(v)
		if !ok {
			return nil, ErrNotFound
		}
		a := artifactFromNode(n)
		return &a, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Artifact), nil
}

func (s *artifactsStore) Delete(ctx context.Context, id string) error {
	_, err := s.g.ExecuteWrite(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (a:Artifact {id: $id}) DETACH DELETE a`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	return err
}
