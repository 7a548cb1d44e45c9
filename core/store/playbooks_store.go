package store

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"incident-tracker/core/graph"
)

type playbooksStore struct {
	g *graph.Graph
}

func NewPlaybooksStore(g *graph.Graph) PlaybooksStore {
	return &playbooksStore{g: g}
}

const playbookExpansion = `
	OPTIONAL MATCH (p)-[:HAS_STEP]->(s:PlaybookStep)
	WITH p, s ORDER BY s.step_number
	RETURN p, collect(s) AS steps
`

func (s *playbooksStore) List(ctx context.Context) ([]Playbook, error) {
	result, err := s.g.ExecuteRead(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (p:Playbook)`+playbookExpansion+` ORDER BY p.name`, nil)
		if err != nil {
			return nil, err
		}
		playbooks := []Playbook{}
		for res.Next(ctx) {
			playbooks = append(playbooks, expandPlaybookRecord(res.Record()))
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return playbooks, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Playbook), nil
}

func (s *playbooksStore) Get(ctx context.Context, id string) (*Playbook, error) {
	result, err := s.g.ExecuteRead(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		return getPlaybookTx(ctx, tx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Playbook), nil
}

func getPlaybookTx(ctx context.Context, tx neo4j.ExplicitTransaction, id string) (*Playbook, error) {
	res, err := tx.Run(ctx, `MATCH (p:Playbook {id: $id})`+playbookExpansion, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if !res.Next(ctx) {
		if err := res.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	p := expandPlaybookRecord(res.Record())
	return &p, nil
}

func expandPlaybookRecord(record *neo4j.Record) Playbook {
	var p Playbook
	if v, ok := record.Get("p"); ok {
		if n, ok := asNode(v); ok {
			p = playbookFromNode(n)
		}
	}
	if v, ok := record.Get("steps"); ok {
		for _, n := range nodeList(v) {
			p.Steps = append(p.Steps, stepFromNode(n))
		}
	}
	return p
}

func (s *playbooksStore) Create(ctx context.Context, in NewPlaybook) (*Playbook, error) {
	now := time.Now().UTC()
	p := &Playbook{
		UID:               newID(),
		Name:              in.Name,
		Description:       in.Description,
		IncidentTypes:     in.IncidentTypes,
		SeverityLevels:    in.SeverityLevels,
		EstimatedDuration: in.EstimatedDuration,
		IsActive:          in.IsActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	_, err := s.g.ExecuteWrite(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			CREATE (p:Playbook {
				id: $id,
				name: $name,
				description: $description,
				incident_types: $incident_types,
				severity_levels: $severity_levels,
				estimated_duration: $estimated_duration,
				is_active: $is_active,
				created_at: datetime($now),
				updated_at: datetime($now)
			})
		`, map[string]any{
			"id":                 p.UID,
			"name":               p.Name,
			"description":        p.Description,
			"incident_types":     p.IncidentTypes,
			"severity_levels":    p.SeverityLevels,
			"estimated_duration": p.EstimatedDuration,
			"is_active":          p.IsActive,
			"now":                now.Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}
		for idx, ns := range in.Steps {
			step := PlaybookStep{
				UID:             newID(),
				StepNumber:      ns.StepNumber,
				Title:           ns.Title,
				Description:     ns.Description,
				ActionItems:     ns.ActionItems,
				ExpectedOutcome: ns.ExpectedOutcome,
				EstimatedTime:   ns.EstimatedTime,
				Prerequisites:   ns.Prerequisites,
			}
			// Positional fallback keeps ordering stable when callers omit
			// explicit step numbers.
			if step.StepNumber == 0 {
				step.StepNumber = idx + 1
			}
			if err := createStepTx(ctx, tx, p.UID, step); err != nil {
				return nil, err
			}
			p.Steps = append(p.Steps, step)
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func createStepTx(ctx context.Context, tx neo4j.ExplicitTransaction, playbookID string, step PlaybookStep) error {
	res, err := tx.Run(ctx, `
		MATCH (p:Playbook {id: $playbook_id})
		CREATE (p)-[:HAS_STEP]->(:PlaybookStep {
			id: $id,
			step_number: $step_number,
			title: $title,
			description: $description,
			action_items: $action_items,
			expected_outcome: $expected_outcome,
			estimated_time: $estimated_time,
			prerequisites: $prerequisites
		})
	`, map[string]any{
		"playbook_id":      playbookID,
		"id":               step.UID,
		"step_number":      step.StepNumber,
		"title":            step.Title,
		"description":      step.Description,
		"action_items":     step.ActionItems,
		"expected_outcome": step.ExpectedOutcome,
		"estimated_time":   step.EstimatedTime,
		"prerequisites":    step.Prerequisites,
	})
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

func (s *playbooksStore) Update(ctx context.Context, id string, patch PlaybookPatch) (*Playbook, error) {
	now := time.Now().UTC()
	result, err := s.g.ExecuteWrite(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		set := "SET p.updated_at = datetime($now)"
		params := map[string]any{"id": id, "now": now.Format(time.RFC3339Nano)}
		if patch.Name != nil {
			set += ", p.name = $name"
			params["name"] = *patch.Name
		}
		if patch.Description != nil {
			set += ", p.description = $description"
			params["description"] = *patch.Description
		}
		if patch.IncidentTypes != nil {
			set += ", p.incident_types = $incident_types"
			params["incident_types"] = *patch.IncidentTypes
		}
		if patch.SeverityLevels != nil {
			set += ", p.severity_levels = $severity_levels"
			params["severity_levels"] = *patch.SeverityLevels
		}
		if patch.EstimatedDuration != nil {
			set += ", p.estimated_duration = $estimated_duration"
			params["estimated_duration"] = *patch.EstimatedDuration
		}
		if patch.IsActive != nil {
			set += ", p.is_active = $is_active"
			params["is_active"] = *patch.IsActive
		}
		res, err := tx.Run(ctx, `MATCH (p:Playbook {id: $id}) `+set, params)
		if err != nil {
			return nil, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		if summary.Counters().PropertiesSet() == 0 {
			return nil, ErrNotFound
		}
		return getPlaybookTx(ctx, tx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Playbook), nil
}

func (s *playbooksStore) Delete(ctx context.Context, id string) error {
	// Steps belong to the playbook and go with it.
	_, err := s.g.ExecuteWrite(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (p:Playbook {id: $id})
			OPTIONAL MATCH (p)-[:HAS_STEP]->(s:PlaybookStep)
			DETACH DELETE s, p
		`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	return err
}

func (s *playbooksStore) SetDiagram(ctx context.Context, id, url string) (*Playbook, error) {
	return s.setDiagramURL(ctx, id, url)
}

func (s *playbooksStore) ClearDiagram(ctx context.Context, id string) (*Playbook, error) {
	return s.setDiagramURL(ctx, id, "")
}

func (s *playbooksStore) setDiagramURL(ctx context.Context, id, url string) (*Playbook, error) {
	now := time.Now().UTC()
	result, err := s.g.ExecuteWrite(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		var query string
		params := map[string]any{"id": id, "now": now.Format(time.RFC3339Nano)}
		if url == "" {
			query = `MATCH (p:Playbook {id: $id}) SET p.flow_diagram_url = null, p.updated_at = datetime($now)`
		} else {
			query = `MATCH (p:Playbook {id: $id}) SET p.flow_diagram_url = $url, p.updated_at = datetime($now)`
			params["url"] = url
		}
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		if summary.Counters().PropertiesSet() == 0 {
			return nil, ErrNotFound
		}
		return getPlaybookTx(ctx, tx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Playbook), nil
}
