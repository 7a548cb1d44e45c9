package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"incident-tracker/config"
)

// ErrUnavailable marks failures caused by the database being unreachable,
// as opposed to a query-level error. Handlers map it to 503.
var ErrUnavailable = errors.New("graph store unavailable")

// TxWork runs inside a single explicit transaction. Everything the unit of
// work needs to do against the store happens through the one tx it is given.
type TxWork func(ctx context.Context, tx neo4j.ExplicitTransaction) (any, error)

// Graph wraps the shared Neo4j driver. The driver itself is a stateless,
// goroutine-safe client; every unit of work opens its own session and
// transaction, so a single Graph is injected everywhere.
type Graph struct {
	driver   neo4j.DriverWithContext
	database string
}

func Connect(ctx context.Context, cfg config.GraphConfig) (*Graph, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, err
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &Graph{driver: driver, database: cfg.Database}, nil
}

func NewWithDriver(driver neo4j.DriverWithContext, database string) *Graph {
	return &Graph{driver: driver, database: database}
}

func (g *Graph) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}

// ExecuteRead runs work in a read-only transaction that is always rolled
// back: reads never need a commit.
func (g *Graph) ExecuteRead(ctx context.Context, work TxWork) (any, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: g.database,
	})
	defer session.Close(ctx)

	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		return nil, classify(err)
	}
	defer tx.Rollback(ctx)

	result, err := work(ctx, tx)
	if err != nil {
		return nil, classify(err)
	}
	return result, nil
}

// ExecuteWrite runs work in a read-write transaction: commit on success,
// rollback on any error. One unit of work per call, no retries; the store's
// own isolation is the only concurrency guard.
func (g *Graph) ExecuteWrite(ctx context.Context, work TxWork) (any, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: g.database,
	})
	defer session.Close(ctx)

	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		return nil, classify(err)
	}

	result, err := work(ctx, tx)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, classify(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, classify(err)
	}
	return result, nil
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	if neo4j.IsConnectivityError(err) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
