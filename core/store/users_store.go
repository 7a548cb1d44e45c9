package store

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"incident-tracker/core/graph"
)

type usersStore struct {
	g *graph.Graph
}

func NewUsersStore(g *graph.Graph) UsersStore {
	return &usersStore{g: g}
}

const userExpansion = `
	OPTIONAL MATCH (i:Incident)-[:ASSIGNED_TO]->(u)
	RETURN u, collect(DISTINCT i) AS incidents
`

func (s *usersStore) List(ctx context.Context) ([]User, error) {
	result, err := s.g.ExecuteRead(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (u:User)`+userExpansion+` ORDER BY u.name`, nil)
		if err != nil {
			return nil, err
		}
		users := []User{}
		for res.Next(ctx) {
			users = append(users, expandUserRecord(res.Record()))
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return users, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]User), nil
}

func (s *usersStore) Get(ctx context.Context, id string) (*User, error) {
	result, err := s.g.ExecuteRead(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (u:User {id: $id})`+userExpansion, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, ErrNotFound
		}
		u := expandUserRecord(res.Record())
		return &u, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*User), nil
}

func expandUserRecord(record *neo4j.Record) User {
	var u User
	if v, ok := record.Get("u"); ok {
		if n, ok := asNode(v); ok {
			u = userFromNode(n)
		}
	}
	if v, ok := record.Get("incidents"); ok {
		for _, n := range nodeList(v) {
			u.AssignedIncidents = append(u.AssignedIncidents, incidentFromNode(n))
		}
	}
	return u
}

func (s *usersStore) Create(ctx context.Context, in NewUser) (*User, error) {
	now := time.Now().UTC()
	u := &User{
		UID:        newID(),
		Name:       in.Name,
		Email:      in.Email,
		Role:       in.Role,
		Department: in.Department,
		IsActive:   in.IsActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err := s.g.ExecuteWrite(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			CREATE (u:User {
				id: $id,
				name: $name,
				email: $email,
				role: $role,
				department: $department,
				is_active: $is_active,
				created_at: datetime($now),
				updated_at: datetime($now)
			})
		`, map[string]any{
			"id":         u.UID,
			"name":       u.Name,
			"email":      u.Email,
			"role":       string(u.Role),
			"department": u.Department,
			"is_active":  u.IsActive,
			"now":        now.Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *usersStore) Update(ctx context.Context, id string, patch UserPatch) (*User, error) {
	now := time.Now().UTC()
	result, err := s.g.ExecuteWrite(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		set := "SET u.updated_at = datetime($now)"
		params := map[string]any{"id": id, "now": now.Format(time.RFC3339Nano)}
		if patch.Name != nil {
			set += ", u.name = $name"
			params["name"] = *patch.Name
		}
		if patch.Email != nil {
			set += ", u.email = $email"
			params["email"] = *patch.Email
		}
		if patch.Role != nil {
			set += ", u.role = $role"
			params["role"] = string(*patch.Role)
		}
		if patch.Department != nil {
			set += ", u.department = $department"
			params["department"] = *patch.Department
		}
		if patch.IsActive != nil {
			set += ", u.is_active = $is_active"
			params["is_active"] = *patch.IsActive
		}
		res, err := tx.Run(ctx, `MATCH (u:User {id: $id}) `+set+` RETURN u`, params)
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, ErrNotFound
		}
		v, _ := res.Record().Get("u")
		n, ok := asNode(v)
		if !ok {
			return nil, ErrNotFound
		}
		u := userFromNode(n)
		return &u, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*User), nil
}

func (s *usersStore) Delete(ctx context.Context, id string) error {
	// Assignment edges go with the node; the incidents themselves stay.
	_, err := s.g.ExecuteWrite(ctx, func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (u:User {id: $id}) DETACH DELETE u`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	return err
}
