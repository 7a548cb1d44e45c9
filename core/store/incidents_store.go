package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"incident-tracker/core/graph"
)

// ErrRelatedTicketNotFound distinguishes a missing link target from a
// missing source incident when adding a related ticket.
var ErrRelatedTicketNotFound = errors.New("related ticket not found")

type incidentsStore struct {
	g *graph.Graph
}

func NewIncidentsStore(g *graph.Graph) IncidentsStore {
	return &incidentsStore{g: g}
}

const incidentExpansion = `
	OPTIONAL MATCH (i)-[:ASSIGNED_TO]->(u:User)
	OPTIONAL MATCH (i)-[:HAS_ARTIFACT]->(a:Artifact)
	OPTIONAL MATCH (i)-[:HAS_REFERENCE]->(r:Reference)
	OPTIONAL MATCH (i)-[:RELATED_TO]-(t:Incident)
	OPTIONAL MATCH (i)-[:USES_PLAYBOOK]->(p:Playbook)
	OPTIONAL MATCH (i)-[:HAS_FILE]->(f:File)
	RETURN i, u, p,
	       collect(DISTINCT a) AS artifacts,
	       collect(DISTINCT r) AS refs,
	       collect(DISTINCT t) AS related,
	       collect(DISTINCT f) AS files
`

func (s *incidentsStore) List(ctx context.Context) ([]Incident, error) {
	result, err := s.g.ExecuteRead(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		query := `MATCH (i:Incident)` + incidentExpansion + ` ORDER BY i.created_at DESC`
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		incidents := []Incident{}
		for res.Next(ctx) {
			incidents = append(incidents, expandIncidentRecord(res.Record()))
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return incidents, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Incident), nil
}

func (s *incidentsStore) Get(ctx context.Context, id string) (*Incident, error) {
	result, err := s.g.ExecuteRead(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		query := `MATCH (i:Incident {id: $id})` + incidentExpansion
		res, err := tx.Run(ctx, query, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, ErrNotFound
		}
		inc := expandIncidentRecord(res.Record())
		return &inc, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Incident), nil
}

func expandIncidentRecord(record *neo4j.Record) Incident {
	var inc Incident
	if v, ok := record.Get("i"); ok {
		if n, ok := asNode(v); ok {
			inc = incidentFromNode(n)
		}
	}
	if v, ok := record.Get("u"); ok {
		if n, ok := asNode(v); ok {
			u := userFromNode(n)
			inc.AssignedTo = &u
		}
	}
	if v, ok := record.Get("p"); ok {
		if n, ok := asNode(v); ok {
			p := playbookFromNode(n)
			inc.Playbook = &p
		}
	}
	if v, ok := record.Get("artifacts"); ok {
		for _, n := range nodeList(v) {
			inc.Artifacts = append(inc.Artifacts, artifactFromNode(n))
		}
	}
	if v, ok := record.Get("refs"); ok {
		for _, n := range nodeList(v) {
			inc.References = append(inc.References, referenceFromNode(n))
		}
	}
	if v, ok := record.Get("related"); ok {
		for _, n := range nodeList(v) {
			inc.RelatedTickets = append(inc.RelatedTickets, incidentFromNode(n))
		}
	}
	inc.Files = []FileAttachment{}
	if v, ok := record.Get("files"); ok {
		inc.Files = filesFromNodes(nodeList(v))
	}
	return inc
}

func (s *incidentsStore) Create(ctx context.Context, in NewIncident) (*Incident, error) {
	now := time.Now().UTC()
	inc := &Incident{
		UID:         newID(),
		Title:       in.Title,
		Description: in.Description,
		Severity:    in.Severity,
		TLP:         in.TLP,
		Status:      in.Status,
		Files:       []FileAttachment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if inc.Status == "" {
		inc.Status = StatusOpen
	}

	_, err := s.g.ExecuteWrite(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			CREATE (i:Incident {
				id: $id,
				title: $title,
				description: $description,
				severity: $severity,
				tlp: $tlp,
				status: $status,
				created_at: datetime($now),
				updated_at: datetime($now)
			})
			RETURN i.id AS id
		`, map[string]any{
			"id":          inc.UID,
			"title":       inc.Title,
			"description": inc.Description,
			"severity":    string(inc.Severity),
			"tlp":         string(inc.TLP),
			"status":      string(inc.Status),
			"now":         now.Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}

		if in.AssignedTo != "" {
			if err := runLink(ctx, tx, `
				MATCH (i:Incident {id: $id}), (u:User {id: $target})
				CREATE (i)-[:ASSIGNED_TO]->(u)
			`, inc.UID, in.AssignedTo); err != nil {
				return nil, err
			}
		}
		if in.Playbook != "" {
			if err := runLink(ctx, tx, `
				MATCH (i:Incident {id: $id}), (p:Playbook {id: $target})
				CREATE (i)-[:USES_PLAYBOOK]->(p)
			`, inc.UID, in.Playbook); err != nil {
				return nil, err
			}
		}

		for _, na := range in.Artifacts {
			a := Artifact{
				UID:       newID(),
				Value:     na.Value,
				Type:      na.Type,
				Status:    na.Status,
				Kind:      na.Kind,
				Notes:     na.Notes,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := createArtifactTx(ctx, tx, inc.UID, a, now); err != nil {
				return nil, err
			}
			inc.Artifacts = append(inc.Artifacts, a)
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return inc, nil
}

func runLink(ctx context.Context, tx neo4j.ExplicitTransaction, query, id, target string) error {
	res, err := tx.Run(ctx, query, map[string]any{"id": id, "target": target})
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

func createArtifactTx(ctx context.Context, tx neo4j.ExplicitTransaction, incidentID string, a Artifact, now time.Time) error {
	// Two statements inside the one transaction: create the node, then the
	// ownership edge. Either both land or neither does.
	res, err := tx.Run(ctx, `
		CREATE (a:Artifact {
			id: $id,
			value: $value,
			artifact_type: $artifact_type,
			status: $status,
			kind: $kind,
			notes: $notes,
			created_at: datetime($now),
			updated_at: datetime($now)
		})
	`, map[string]any{
		"id":            a.UID,
		"value":         a.Value,
		"artifact_type": string(a.Type),
		"status":        string(a.Status),
		"kind":          string(a.Kind),
		"notes":         a.Notes,
		"now":           now.Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	if _, err := res.Consume(ctx); err != nil {
		return err
	}
	res, err = tx.Run(ctx, `
		MATCH (i:Incident {id: $incident_id}), (a:Artifact {id: $artifact_id})
		CREATE (i)-[:HAS_ARTIFACT]->(a)
	`, map[string]any{"incident_id": incidentID, "artifact_id": a.UID})
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

func (s *incidentsStore) Update(ctx context.Context, id string, patch IncidentPatch) (*Incident, error) {
	now := time.Now().UTC()
	result, err := s.g.ExecuteWrite(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		if err := requireIncident(ctx, tx, id); err != nil {
			return nil, err
		}

		set := "SET i.updated_at = datetime($now)"
		params := map[string]any{"id": id, "now": now.Format(time.RFC3339Nano)}
		if patch.Title != nil {
			set += ", i.title = $title"
			params["title"] = *patch.Title
		}
		if patch.Description != nil {
			set += ", i.description = $description"
			params["description"] = *patch.Description
		}
		if patch.Severity != nil {
			set += ", i.severity = $severity"
			params["severity"] = string(*patch.Severity)
		}
		if patch.TLP != nil {
			set += ", i.tlp = $tlp"
			params["tlp"] = string(*patch.TLP)
		}
		if patch.Status != nil {
			set += ", i.status = $status"
			params["status"] = string(*patch.Status)
			if patch.Status.Closed() {
				set += ", i.closed_at = datetime($now)"
			} else {
				set += ", i.closed_at = null"
			}
		}
		res, err := tx.Run(ctx, `MATCH (i:Incident {id: $id}) `+set, params)
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}

		if patch.AssignedTo != nil {
			if err := relinkTx(ctx, tx, id, "ASSIGNED_TO", "User", *patch.AssignedTo); err != nil {
				return nil, err
			}
		}
		if patch.Playbook != nil {
			if err := relinkTx(ctx, tx, id, "USES_PLAYBOOK", "Playbook", *patch.Playbook); err != nil {
				return nil, err
			}
		}

		res, err = tx.Run(ctx, `MATCH (i:Incident {id: $id})`+incidentExpansion, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, ErrNotFound
		}
		inc := expandIncidentRecord(res.Record())
		return &inc, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Incident), nil
}

// relinkTx replaces the single outgoing edge of the given type. An empty
// target id just drops the existing link.
func relinkTx(ctx context.Context, tx neo4j.ExplicitTransaction, incidentID, rel, label, targetID string) error {
	res, err := tx.Run(ctx, fmt.Sprintf(`
		MATCH (i:Incident {id: $id})-[r:%s]->(:%s)
		DELETE r
	`, rel, label), map[string]any{"id": incidentID})
	if err != nil {
		return err
	}
	if _, err := res.Consume(ctx); err != nil {
		return err
	}
	if targetID == "" {
		return nil
	}
	return runLink(ctx, tx, fmt.Sprintf(`
		MATCH (i:Incident {id: $id}), (n:%s {id: $target})
		CREATE (i)-[:%s]->(n)
	`, label, rel), incidentID, targetID)
}

func requireIncident(ctx context.Context, tx neo4j.ExplicitTransaction, id string) error {
	res, err := tx.Run(ctx, `MATCH (i:Incident {id: $id}) RETURN i.id`, map[string]any{"id": id})
	if err != nil {
		return err
	}
	if !res.Next(ctx) {
		if err := res.Err(); err != nil {
			return err
		}
		return ErrNotFound
	}
	_, err = res.Consume(ctx)
	return err
}

func (s *incidentsStore) Delete(ctx context.Context, id string) error {
	// Hard delete with cascade over owned artifacts, references and file
	// records; associative edges are merely severed by DETACH.
	_, err := s.g.ExecuteWrite(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (i:Incident {id: $id})
			OPTIONAL MATCH (i)-[:HAS_ARTIFACT]->(a:Artifact)
			OPTIONAL MATCH (i)-[:HAS_REFERENCE]->(r:Reference)
			OPTIONAL MATCH (i)-[:HAS_FILE]->(f:File)
			DETACH DELETE a, r, f, i
		`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	return err
}

func (s *incidentsStore) AddArtifact(ctx context.Context, incidentID string, in NewArtifact) (*Artifact, error) {
	now := time.Now().UTC()
	a := &Artifact{
		UID:       newID(),
		Value:     in.Value,
		Type:      in.Type,
		Status:    in.Status,
		Kind:      in.Kind,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.g.ExecuteWrite(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		if err := requireIncident(ctx, tx, incidentID); err != nil {
			return nil, err
		}
		return nil, createArtifactTx(ctx, tx, incidentID, *a, now)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *incidentsStore) AddReference(ctx context.Context, incidentID string, in NewReference) (*Reference, error) {
	now := time.Now().UTC()
	ref := &Reference{
		UID:       newID(),
		Title:     in.Title,
		Link:      in.Link,
		CreatedAt: now,
	}
	_, err := s.g.ExecuteWrite(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		if err := requireIncident(ctx, tx, incidentID); err != nil {
			return nil, err
		}
		res, err := tx.Run(ctx, `
			CREATE (r:Reference {
				id: $id,
				title: $title,
				link: $link,
				created_at: datetime($now)
			})
		`, map[string]any{
			"id":    ref.UID,
			"title": ref.Title,
			"link":  ref.Link,
			"now":   now.Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}
		return nil, runLink(ctx, tx, `
			MATCH (i:Incident {id: $id}), (r:Reference {id: $target})
			CREATE (i)-[:HAS_REFERENCE]->(r)
		`, incidentID, ref.UID)
	})
	if err != nil {
		return nil, err
	}
	return ref, nil
}

func (s *incidentsStore) AddRelatedTicket(ctx context.Context, id, relatedID string) error {
	now := time.Now().UTC()
	_, err := s.g.ExecuteWrite(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		if err := requireIncident(ctx, tx, id); err != nil {
			return nil, err
		}
		if err := requireIncident(ctx, tx, relatedID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, ErrRelatedTicketNotFound
			}
			return nil, err
		}
		res, err := tx.Run(ctx, `
			MATCH (i:Incident {id: $id}), (t:Incident {id: $related})
			MERGE (i)-[:RELATED_TO]->(t)
			SET i.updated_at = datetime($now)
		`, map[string]any{"id": id, "related": relatedID, "now": now.Format(time.RFC3339Nano)})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	return err
}

func (s *incidentsStore) RemoveRelatedTicket(ctx context.Context, id, relatedID string) error {
	// Undirected match: the link is symmetric, so it goes away no matter
	// which side created it. Unlink only, never delete the other incident.
	_, err := s.g.ExecuteWrite(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (:Incident {id: $id})-[r:RELATED_TO]-(:Incident {id: $related})
			DELETE r
		`, map[string]any{"id": id, "related": relatedID})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	return err
}

func (s *incidentsStore) ListFiles(ctx context.Context, incidentID string) ([]FileAttachment, error) {
	result, err := s.g.ExecuteRead(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		return listFilesTx(ctx, tx, incidentID)
	})
	if err != nil {
		return nil, err
	}
	return result.([]FileAttachment), nil
}

func listFilesTx(ctx context.Context, tx neo4j.ExplicitTransaction, incidentID string) ([]FileAttachment, error) {
	res, err := tx.Run(ctx, `
		MATCH (i:Incident {id: $id})
		OPTIONAL MATCH (i)-[:HAS_FILE]->(f:File)
		RETURN collect(f) AS files
	`, map[string]any{"id": incidentID})
	if err != nil {
		return nil, err
	}
	if !res.Next(ctx) {
		if err := res.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	v, _ := res.Record().Get("files")
	return filesFromNodes(nodeList(v)), nil
}

func (s *incidentsStore) AddFile(ctx context.Context, incidentID string, f FileAttachment) ([]FileAttachment, error) {
	result, err := s.g.ExecuteWrite(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		if err := requireIncident(ctx, tx, incidentID); err != nil {
			return nil, err
		}
		res, err := tx.Run(ctx, `
			MATCH (i:Incident {id: $id})
			CREATE (i)-[:HAS_FILE]->(:File {
				id: $file_id,
				filename: $filename,
				stored_name: $stored_name,
				size: $size,
				mime_type: $mime_type,
				uploaded_at: datetime($uploaded_at)
			})
			SET i.updated_at = datetime($uploaded_at)
		`, map[string]any{
			"id":          incidentID,
			"file_id":     newID(),
			"filename":    f.Filename,
			"stored_name": f.StoredName,
			"size":        f.Size,
			"mime_type":   f.MimeType,
			"uploaded_at": f.UploadedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}
		return listFilesTx(ctx, tx, incidentID)
	})
	if err != nil {
		return nil, err
	}
	return result.([]FileAttachment), nil
}

func (s *incidentsStore) RemoveFile(ctx context.Context, incidentID, storedName string) ([]FileAttachment, error) {
	now := time.Now().UTC()
	result, err := s.g.ExecuteWrite(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		if err := requireIncident(ctx, tx, incidentID); err != nil {
			return nil, err
		}
		// Removing an unknown stored name is a no-op that still returns the
		// unchanged list.
		res, err := tx.Run(ctx, `
			MATCH (i:Incident {id: $id})-[:HAS_FILE]->(f:File {stored_name: $stored_name})
			SET i.updated_at = datetime($now)
			DETACH DELETE f
		`, map[string]any{"id": incidentID, "stored_name": storedName, "now": now.Format(time.RFC3339Nano)})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}
		return listFilesTx(ctx, tx, incidentID)
	})
	if err != nil {
		return nil, err
	}
	return result.([]FileAttachment), nil
}
