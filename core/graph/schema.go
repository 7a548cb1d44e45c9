package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Constraints and indexes applied once at provisioning time. The unique
// constraint on User.email gives upsert-index semantics: a second node with
// the same address fails at commit.
var schemaStatements = []string{
	`CREATE CONSTRAINT user_id IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`,
	`CREATE CONSTRAINT user_email IF NOT EXISTS FOR (u:User) REQUIRE u.email IS UNIQUE`,
	`CREATE CONSTRAINT incident_id IF NOT EXISTS FOR (i:Incident) REQUIRE i.id IS UNIQUE`,
	`CREATE CONSTRAINT artifact_id IF NOT EXISTS FOR (a:Artifact) REQUIRE a.id IS UNIQUE`,
	`CREATE CONSTRAINT reference_id IF NOT EXISTS FOR (r:Reference) REQUIRE r.id IS UNIQUE`,
	`CREATE CONSTRAINT playbook_id IF NOT EXISTS FOR (p:Playbook) REQUIRE p.id IS UNIQUE`,
	`CREATE CONSTRAINT playbook_step_id IF NOT EXISTS FOR (s:PlaybookStep) REQUIRE s.id IS UNIQUE`,
	`CREATE CONSTRAINT file_id IF NOT EXISTS FOR (f:File) REQUIRE f.id IS UNIQUE`,
	`CREATE INDEX incident_created_at IF NOT EXISTS FOR (i:Incident) ON (i.created_at)`,
	`CREATE INDEX incident_status IF NOT EXISTS FOR (i:Incident) ON (i.status)`,
	`CREATE INDEX incident_severity IF NOT EXISTS FOR (i:Incident) ON (i.severity)`,
	`CREATE INDEX artifact_value IF NOT EXISTS FOR (a:Artifact) ON (a.value)`,
	`CREATE INDEX user_role IF NOT EXISTS FOR (u:User) ON (u.role)`,
}

func (g *Graph) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		_, err := g.ExecuteWrite(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
			res, err := tx.Run(ctx, stmt, nil)
			if err != nil {
				return nil, err
			}
			_, err = res.Consume(ctx)
			return nil, err
		})
		if err != nil {
			return err
		}
	}
	return nil
}
