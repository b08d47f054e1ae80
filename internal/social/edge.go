// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package social implements the relation layer of Vidora: subscriptions between
users and likes on videos, comments and posts.

# Architecture

Every relation is an [Edge] keyed by (actor, kind, target). An edge exists or
it does not; there is no status column. Counts are always derived from the
edges themselves and never stored alongside the target.

The [Engine] flips a single edge and reports the resulting state together with
the live count. Listing and personalisation queries live in [Service].
*/
package social

import "time"

// # Relation Kinds

// Kind names the type of relation an edge represents.
type Kind string

const (
	KindSubscription Kind = "subscription"
	KindVideoLike    Kind = "video-like"
	KindCommentLike  Kind = "comment-like"
	KindPostLike     Kind = "post-like"
)

// Kinds lists every supported relation kind.
var Kinds = []Kind{KindSubscription, KindVideoLike, KindCommentLike, KindPostLike}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSubscription, KindVideoLike, KindCommentLike, KindPostLike:
		return true
	}
	return false
}

// IsLike reports whether k is one of the like kinds.
func (k Kind) IsLike() bool {
	return k == KindVideoLike || k == KindCommentLike || k == KindPostLike
}

// # Domain Entities

// Edge is a directed relation from an actor to a target.
type Edge struct {
	ActorID   string    `json:"actor_id"`
	Kind      Kind      `json:"kind"`
	TargetID  string    `json:"target_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Result is the outcome of a toggle: whether the edge now exists and how many
// edges of the same kind point at the target.
type Result struct {
	IsActive bool  `json:"is_active"`
	Count    int64 `json:"count"`
}
