package store

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

func newID() string {
	return uuid.Must(uuid.NewV4()).String()
}

func asNode(v any) (neo4j.Node, bool) {
	n, ok := v.(neo4j.Node)
	return n, ok
}

func nodeList(v any) []neo4j.Node {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []neo4j.Node
	for _, item := range items {
		if n, ok := item.(neo4j.Node); ok {
			out = append(out, n)
		}
	}
	return out
}

func propString(n neo4j.Node, key string) string {
	if v, ok := n.Props[key].(string); ok {
		return v
	}
	return ""
}

func propBool(n neo4j.Node, key string) bool {
	if v, ok := n.Props[key].(bool); ok {
		return v
	}
	return false
}

func propInt(n neo4j.Node, key string) int {
	if v, ok := n.Props[key].(int64); ok {
		return int(v)
	}
	return 0
}

func propInt64(n neo4j.Node, key string) int64 {
	if v, ok := n.Props[key].(int64); ok {
		return v
	}
	return 0
}

func propTime(n neo4j.Node, key string) time.Time {
	switch v := n.Props[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func propTimePtr(n neo4j.Node, key string) *time.Time {
	t := propTime(n, key)
	if t.IsZero() {
		return nil
	}
	return &t
}

func propStrings(n neo4j.Node, key string) []string {
	items, ok := n.Props[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func userFromNode(n neo4j.Node) User {
	return User{
		UID:        propString(n, "id"),
		Name:       propString(n, "name"),
		Email:      propString(n, "email"),
		Role:       Role(propString(n, "role")),
		Department: propString(n, "department"),
		IsActive:   propBool(n, "is_active"),
		CreatedAt:  propTime(n, "created_at"),
		UpdatedAt:  propTime(n, "updated_at"),
	}
}

func incidentFromNode(n neo4j.Node) Incident {
	return Incident{
		UID:         propString(n, "id"),
		Title:       propString(n, "title"),
		Description: propString(n, "description"),
		Severity:    Severity(propString(n, "severity")),
		TLP:         TLP(propString(n, "tlp")),
		Status:      Status(propString(n, "status")),
		CreatedAt:   propTime(n, "created_at"),
		UpdatedAt:   propTime(n, "updated_at"),
		ClosedAt:    propTimePtr(n, "closed_at"),
	}
}

func artifactFromNode(n neo4j.Node) Artifact {
	return Artifact{
		UID:       propString(n, "id"),
		Value:     propString(n, "value"),
		Type:      ArtifactType(propString(n, "artifact_type")),
		Status:    ArtifactStatus(propString(n, "status")),
		Kind:      ArtifactKind(propString(n, "kind")),
		Notes:     propString(n, "notes"),
		CreatedAt: propTime(n, "created_at"),
		UpdatedAt: propTime(n, "updated_at"),
	}
}

func referenceFromNode(n neo4j.Node) Reference {
	return Reference{
		UID:       propString(n, "id"),
		Title:     propString(n, "title"),
		Link:      propString(n, "link"),
		CreatedAt: propTime(n, "created_at"),
	}
}

func playbookFromNode(n neo4j.Node) Playbook {
	return Playbook{
		UID:               propString(n, "id"),
		Name:              propString(n, "name"),
		Description:       propString(n, "description"),
		IncidentTypes:     propStrings(n, "incident_types"),
		SeverityLevels:    propStrings(n, "severity_levels"),
		EstimatedDuration: propString(n, "estimated_duration"),
		IsActive:          propBool(n, "is_active"),
		FlowDiagramURL:    propString(n, "flow_diagram_url"),
		CreatedAt:         propTime(n, "created_at"),
		UpdatedAt:         propTime(n, "updated_at"),
	}
}

func stepFromNode(n neo4j.Node) PlaybookStep {
	return PlaybookStep{
		UID:             propString(n, "id"),
		StepNumber:      propInt(n, "step_number"),
		Title:           propString(n, "title"),
		Description:     propString(n, "description"),
		ActionItems:     propStrings(n, "action_items"),
		ExpectedOutcome: propString(n, "expected_outcome"),
		EstimatedTime:   propString(n, "estimated_time"),
		Prerequisites:   propStrings(n, "prerequisites"),
	}
}

func fileFromNode(n neo4j.Node) FileAttachment {
	return FileAttachment{
		Filename:   propString(n, "filename"),
		StoredName: propString(n, "stored_name"),
		Size:       propInt64(n, "size"),
		MimeType:   propString(n, "mime_type"),
		UploadedAt: propTime(n, "uploaded_at"),
	}
}

func filesFromNodes(nodes []neo4j.Node) []FileAttachment {
	files := make([]FileAttachment, 0, len(nodes))
	for _, n := range nodes {
		files = append(files, fileFromNode(n))
	}
	return files
}
