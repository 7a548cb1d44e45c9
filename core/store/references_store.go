package store

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"incident-tracker/core/graph"
)

type referencesStore struct {
	g *graph.Graph
}

func NewReferencesStore(g *graph.Graph) ReferencesStore {
	return &referencesStore{g: g}
}

func (s *referencesStore) Get(ctx context.Context, id string) (*Reference, error) {
	result, err := s.g.ExecuteRead(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (r:Reference {id: $id})
			OPTIONAL MATCH (i:Incident)-[:HAS_REFERENCE]->(r)
			RETURN r, i
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
		v, _ := record.Get("r")
		n, ok := asNode(v)
		if !ok {
			return nil, ErrNotFound
		}
		ref := referenceFromNode(n)
		if v, ok := record.Get("i"); ok {
			if in, ok := asNode(v); ok {
				ref.Incident = &Incident{
					UID:   propString(in, "id"),
					Title: propString(in, "title"),
				}
			}
		}
		return &ref, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Reference), nil
}

func (s *referencesStore) Update(ctx context.Context, id string, patch ReferencePatch) (*Reference, error) {
	result, err := s.g.ExecuteWrite(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		set := ""
		params := map[string]any{"id": id}
		if patch.Title != nil {
			set += ", r.title = $title"
			params["title"] = *patch.Title
		}
		if patch.Link != nil {
			set += ", r.link = $link"
			params["link"] = *patch.Link
		}
		query := `MATCH (r:Reference {id: $id})`
		if set != "" {
			query += ` SET ` + set[2:]
		}
		res, err := tx.Run(ctx, query+` RETURN r`, params)
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, ErrNotFound
		}
		v, _ := res.Record().Get("r")
		n, ok := asNode(v)
		if !ok {
			return nil, ErrNotFound
		}
		ref := referenceFromNode(n)
		return &ref, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Reference), nil
}

func (s *referencesStore) Delete(ctx context.Context, id string) error {
	_, err := s.g.ExecuteWrite(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (r:Reference {id: $id}) DETACH DELETE r`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	return err
}
