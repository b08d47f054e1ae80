// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/vidora/internal/platform/dberr"
	"github.com/taibuivan/vidora/internal/platform/postgres"
)

// PostgresEdgeStore implements [EdgeStore] over the social.edge table.
type PostgresEdgeStore struct {
	db postgres.DBTX
}

// NewEdgeStore creates a new PostgreSQL implementation of the [EdgeStore].
func NewEdgeStore(db postgres.DBTX) *PostgresEdgeStore {
	return &PostgresEdgeStore{db: db}
}

/*
Find retrieves a single edge by its natural key.

Returns:
  - *Edge: nil if the edge does not exist
  - error: Database failures
*/
func (repository *PostgresEdgeStore) Find(context context.Context, actorID string, kind Kind, targetID string) (*Edge, error) {
	const query = `
		SELECT actorid, kind, targetid, createdat
		FROM social.edge
		WHERE actorid = $1 AND kind = $2 AND targetid = $3`

	edge := &Edge{}
	err := repository.db.QueryRow(context, query, actorID, kind, targetID).Scan(
		&edge.ActorID, &edge.Kind, &edge.TargetID, &edge.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres_edge_find_failed: %w", err)
	}
	return edge, nil
}

/*
Insert creates an edge.

Description: ON CONFLICT DO NOTHING makes a lost race observable as zero
affected rows instead of an aborted statement.

Returns:
  - error: ErrEdgeExists if the triple is already present
*/
func (repository *PostgresEdgeStore) Insert(context context.Context, edge *Edge) error {
	const query = `
		INSERT INTO social.edge (actorid, kind, targetid, createdat)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (actorid, kind, targetid) DO NOTHING
		RETURNING createdat`

	err := repository.db.QueryRow(context, query, edge.ActorID, edge.Kind, edge.TargetID).Scan(&edge.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrEdgeExists
	}
	if err != nil {
		// The actor column references users.account.
		if dberr.SQLState(err) == dberr.CodeForeignKey {
			return dberr.Wrap(err, "Account")
		}
		return fmt.Errorf("postgres_edge_insert_failed: %w", err)
	}
	return nil
}

// Delete removes the edge and reports whether a row was affected.
func (repository *PostgresEdgeStore) Delete(context context.Context, actorID string, kind Kind, targetID string) (bool, error) {
	const query = `DELETE FROM social.edge WHERE actorid = $1 AND kind = $2 AND targetid = $3`

	tag, err := repository.db.Exec(context, query, actorID, kind, targetID)
	if err != nil {
		return false, fmt.Errorf("postgres_edge_delete_failed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Count derives the number of edges pointing at a target.
func (repository *PostgresEdgeStore) Count(context context.Context, kind Kind, targetID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM social.edge WHERE kind = $1 AND targetid = $2`

	var count int64
	if err := repository.db.QueryRow(context, query, kind, targetID).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres_edge_count_failed: %w", err)
	}
	return count, nil
}

// CountByActor derives the number of edges originating from an actor.
func (repository *PostgresEdgeStore) CountByActor(context context.Context, actorID string, kind Kind) (int64, error) {
	const query = `SELECT COUNT(*) FROM social.edge WHERE actorid = $1 AND kind = $2`

	var count int64
	if err := repository.db.QueryRow(context, query, actorID, kind).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres_edge_count_by_actor_failed: %w", err)
	}
	return count, nil
}

// CountTargets derives the number of edges of one kind across several targets.
func (repository *PostgresEdgeStore) CountTargets(context context.Context, kind Kind, targetIDs []string) (int64, error) {
	if len(targetIDs) == 0 {
		return 0, nil
	}

	const query = `SELECT COUNT(*) FROM social.edge WHERE kind = $1 AND targetid = ANY($2::uuid[])`

	var count int64
	if err := repository.db.QueryRow(context, query, kind, targetIDs).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres_edge_count_targets_failed: %w", err)
	}
	return count, nil
}

/*
ListActors returns the edges pointing at a target, newest first.

Parameters:
  - context: context.Context
  - kind: Kind
  - targetID: string
  - limit: int
  - offset: int

Returns:
  - []*Edge: Slice of edges
  - int64: Total count for pagination
  - error: Database failures
*/
func (repository *PostgresEdgeStore) ListActors(context context.Context, kind Kind, targetID string, limit, offset int) ([]*Edge, int64, error) {
	total, err := repository.Count(context, kind, targetID)
	if err != nil {
		return nil, 0, err
	}

	const query = `
		SELECT actorid, kind, targetid, createdat
		FROM social.edge
		WHERE kind = $1 AND targetid = $2
		ORDER BY createdat DESC, actorid
		LIMIT $3 OFFSET $4`

	edges, err := repository.list(context, query, kind, targetID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return edges, total, nil
}

/*
ListTargets returns the edges originating from an actor, newest first.

Returns:
  - []*Edge: Slice of edges
  - int64: Total count for pagination
  - error: Database failures
*/
func (repository *PostgresEdgeStore) ListTargets(context context.Context, actorID string, kind Kind, limit, offset int) ([]*Edge, int64, error) {
	total, err := repository.CountByActor(context, actorID, kind)
	if err != nil {
		return nil, 0, err
	}

	const query = `
		SELECT actorid, kind, targetid, createdat
		FROM social.edge
		WHERE actorid = $1 AND kind = $2
		ORDER BY createdat DESC, targetid
		LIMIT $3 OFFSET $4`

	edges, err := repository.list(context, query, actorID, kind, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return edges, total, nil
}

// Exists reports whether the edge for the triple is present.
func (repository *PostgresEdgeStore) Exists(context context.Context, actorID string, kind Kind, targetID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM social.edge WHERE actorid = $1 AND kind = $2 AND targetid = $3)`

	var exists bool
	if err := repository.db.QueryRow(context, query, actorID, kind, targetID).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_edge_exists_failed: %w", err)
	}
	return exists, nil
}

func (repository *PostgresEdgeStore) list(context context.Context, query string, args ...any) ([]*Edge, error) {
	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres_edge_list_failed: %w", err)
	}
	defer rows.Close()

	edges := make([]*Edge, 0)
	for rows.Next() {
		edge := &Edge{}
		if err := rows.Scan(&edge.ActorID, &edge.Kind, &edge.TargetID, &edge.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres_edge_scan_failed: %w", err)
		}
		edges = append(edges, edge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_edge_rows_failed: %w", err)
	}
	return edges, nil
}
