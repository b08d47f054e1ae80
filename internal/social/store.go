// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package social

import (
	"context"

	"github.com/taibuivan/vidora/internal/platform/apperr"
)

// ErrEdgeExists is returned by [EdgeStore.Insert] when the edge is already present.
var ErrEdgeExists = apperr.Conflict("Relation already exists")

// # Edge Data Access

// EdgeStore persists relation edges.
//
// The (actor, kind, target) triple is unique. Insert and Delete must be
// atomic with respect to concurrent callers on the same triple.
type EdgeStore interface {

	/*
		Find returns the edge for the triple.

		Returns:
		  - *Edge: nil when the edge does not exist
		  - error: Storage failures
	*/
	Find(context context.Context, actorID string, kind Kind, targetID string) (*Edge, error)

	/*
		Insert creates the edge.

		Returns:
		  - error: ErrEdgeExists when a concurrent caller created it first
	*/
	Insert(context context.Context, edge *Edge) error

	/*
		Delete removes the edge for the triple.

		Returns:
		  - bool: false when there was nothing to remove
		  - error: Storage failures
	*/
	Delete(context context.Context, actorID string, kind Kind, targetID string) (bool, error)

	/*
		Count returns how many edges of kind point at targetID.
	*/
	Count(context context.Context, kind Kind, targetID string) (int64, error)

	/*
		CountByActor returns how many edges of kind originate from actorID.
	*/
	CountByActor(context context.Context, actorID string, kind Kind) (int64, error)

	/*
		CountTargets returns how many edges of kind point at any of targetIDs.
		An empty slice counts zero.
	*/
	CountTargets(context context.Context, kind Kind, targetIDs []string) (int64, error)

	/*
		ListActors returns a page of edges of kind pointing at targetID, newest first.

		Returns:
		  - []*Edge: Page of edges
		  - int64: Total number of matching edges
		  - error: Storage failures
	*/
	ListActors(context context.Context, kind Kind, targetID string, limit, offset int) ([]*Edge, int64, error)

	/*
		ListTargets returns a page of edges of kind originating from actorID, newest first.

		Returns:
		  - []*Edge: Page of edges
		  - int64: Total number of matching edges
		  - error: Storage failures
	*/
	ListTargets(context context.Context, actorID string, kind Kind, limit, offset int) ([]*Edge, int64, error)

	/*
		Exists reports whether the edge for the triple exists.
	*/
	Exists(context context.Context, actorID string, kind Kind, targetID string) (bool, error)
}
