// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package social

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/metrics"
)

// CountObserver receives the authoritative count after every successful toggle.
type CountObserver interface {
	Observe(context context.Context, kind Kind, targetID string, count int64)
}

// Engine flips relation edges.
//
// # Invariant
//
// The returned count is always read from the [EdgeStore] after the flip; no
// cached or incremented value is ever reported.
type Engine struct {
	edges    EdgeStore
	targets  Targets
	observer CountObserver
	logger   *slog.Logger
}

// NewEngine constructs an [Engine]. observer may be nil.
func NewEngine(edges EdgeStore, targets Targets, observer CountObserver, logger *slog.Logger) *Engine {
	return &Engine{edges: edges, targets: targets, observer: observer, logger: logger}
}

/*
Toggle flips the (actor, kind, target) edge and returns the new state with the
live count of edges of kind pointing at target.

Description:
 1. Reject unknown kinds and self-subscriptions.
 2. Verify the target exists.
 3. Delete the edge if present, otherwise insert it. A concurrent caller that
    already produced the wanted state is not an error.
 4. Count.

Parameters:
  - context: context.Context
  - actorID: string (authenticated principal)
  - kind: Kind
  - targetID: string

Returns:
  - *Result: The new state and count
  - error: ValidationError, Forbidden, NotFound or storage failures
*/
func (engine *Engine) Toggle(context context.Context, actorID string, kind Kind, targetID string) (*Result, error) {
	if !kind.Valid() {
		return nil, apperr.ValidationError(fmt.Sprintf("Unknown relation kind %q", kind))
	}
	if actorID == "" {
		return nil, apperr.Unauthorized("Authentication required")
	}

	// Checked before the lookup so it fails the same way whatever the state.
	if kind == KindSubscription && actorID == targetID {
		return nil, apperr.Forbidden("You cannot subscribe to your own channel")
	}

	if err := engine.targets.Ensure(context, kind, targetID); err != nil {
		return nil, err
	}

	existing, err := engine.edges.Find(context, actorID, kind, targetID)
	if err != nil {
		return nil, err
	}

	active := existing == nil
	if existing != nil {
		// Zero rows means a concurrent toggle removed it first; the edge is off either way.
		if _, err := engine.edges.Delete(context, actorID, kind, targetID); err != nil {
			return nil, err
		}
	} else {
		err := engine.edges.Insert(context, &Edge{ActorID: actorID, Kind: kind, TargetID: targetID})
		if err != nil && !errors.Is(err, ErrEdgeExists) {
			return nil, err
		}
	}

	count, err := engine.edges.Count(context, kind, targetID)
	if err != nil {
		return nil, err
	}

	state := "off"
	if active {
		state = "on"
	}
	metrics.EdgeToggles.WithLabelValues(string(kind), state).Inc()
	engine.logger.DebugContext(context, "social_edge_toggled",
		slog.String("actor_id", actorID),
		slog.String("kind", string(kind)),
		slog.String("target_id", targetID),
		slog.String("state", state),
	)

	if engine.observer != nil {
		engine.observer.Observe(context, kind, targetID, count)
	}

	return &Result{IsActive: active, Count: count}, nil
}
