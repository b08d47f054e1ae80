// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package social

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"
)

type edgeKey struct {
	actor  string
	kind   Kind
	target string
}

// memoryEdges is an in-memory EdgeStore with the same uniqueness guarantee as social.edge.
type memoryEdges struct {
	mu    sync.Mutex
	edges map[edgeKey]Edge
	clock time.Time

	// failCount makes Count fail.
	failCount bool
	counts    int
}

func newMemoryEdges() *memoryEdges {
	return &memoryEdges{edges: make(map[edgeKey]Edge), clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (store *memoryEdges) Find(_ context.Context, actorID string, kind Kind, targetID string) (*Edge, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if edge, ok := store.edges[edgeKey{actorID, kind, targetID}]; ok {
		return &edge, nil
	}
	return nil, nil
}

func (store *memoryEdges) Insert(_ context.Context, edge *Edge) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	key := edgeKey{edge.ActorID, edge.Kind, edge.TargetID}
	if _, ok := store.edges[key]; ok {
		return ErrEdgeExists
	}
	store.clock = store.clock.Add(time.Second)
	edge.CreatedAt = store.clock
	store.edges[key] = *edge
	return nil
}

func (store *memoryEdges) Delete(_ context.Context, actorID string, kind Kind, targetID string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	key := edgeKey{actorID, kind, targetID}
	if _, ok := store.edges[key]; !ok {
		return false, nil
	}
	delete(store.edges, key)
	return true, nil
}

func (store *memoryEdges) Count(_ context.Context, kind Kind, targetID string) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.counts++
	if store.failCount {
		return 0, errors.New("connection reset")
	}
	var count int64
	for key := range store.edges {
		if key.kind == kind && key.target == targetID {
			count++
		}
	}
	return count, nil
}

func (store *memoryEdges) CountTargets(_ context.Context, kind Kind, targetIDs []string) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	wanted := make(map[string]bool, len(targetIDs))
	for _, id := range targetIDs {
		wanted[id] = true
	}
	var count int64
	for key := range store.edges {
		if key.kind == kind && wanted[key.target] {
			count++
		}
	}
	return count, nil
}

func (store *memoryEdges) CountByActor(_ context.Context, actorID string, kind Kind) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	var count int64
	for key := range store.edges {
		if key.kind == kind && key.actor == actorID {
			count++
		}
	}
	return count, nil
}

func (store *memoryEdges) page(match func(edgeKey) bool, limit, offset int) ([]*Edge, int64) {
	store.mu.Lock()
	defer store.mu.Unlock()
	matched := make([]*Edge, 0)
	for key, edge := range store.edges {
		if match(key) {
			clone := edge
			matched = append(matched, &clone)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	if offset >= len(matched) {
		return []*Edge{}, total
	}
	end := min(offset+limit, len(matched))
	return matched[offset:end], total
}

func (store *memoryEdges) ListActors(_ context.Context, kind Kind, targetID string, limit, offset int) ([]*Edge, int64, error) {
	edges, total := store.page(func(key edgeKey) bool { return key.kind == kind && key.target == targetID }, limit, offset)
	return edges, total, nil
}

func (store *memoryEdges) ListTargets(_ context.Context, actorID string, kind Kind, limit, offset int) ([]*Edge, int64, error) {
	edges, total := store.page(func(key edgeKey) bool { return key.kind == kind && key.actor == actorID }, limit, offset)
	return edges, total, nil
}

func (store *memoryEdges) Exists(_ context.Context, actorID string, kind Kind, targetID string) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	_, ok := store.edges[edgeKey{actorID, kind, targetID}]
	return ok, nil
}

func (store *memoryEdges) size() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.edges)
}

// knownIDs is a TargetChecker over a fixed set of IDs.
func knownIDs(ids ...string) CheckerFunc {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return func(_ context.Context, id string) (bool, error) { return set[id], nil }
}

type directory struct {
	channels map[string]*ChannelSummary
	videos   map[string]*VideoSummary
}

func (dir *directory) Channels(_ context.Context, ids []string) (map[string]*ChannelSummary, error) {
	found := make(map[string]*ChannelSummary)
	for _, id := range ids {
		if channel, ok := dir.channels[id]; ok {
			found[id] = channel
		}
	}
	return found, nil
}

func (dir *directory) Videos(_ context.Context, ids []string) (map[string]*VideoSummary, error) {
	found := make(map[string]*VideoSummary)
	for _, id := range ids {
		if video, ok := dir.videos[id]; ok {
			found[id] = video
		}
	}
	return found, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const (
	userOne   = "0190a6e2-7c1f-7000-8000-000000000001"
	userTwo   = "0190a6e2-7c1f-7000-8000-000000000002"
	userThree = "0190a6e2-7c1f-7000-8000-000000000003"
	videoOne  = "0190a6e2-7c1f-7000-8000-0000000000a1"
	videoTwo  = "0190a6e2-7c1f-7000-8000-0000000000a2"
	comment   = "0190a6e2-7c1f-7000-8000-0000000000c1"
	post      = "0190a6e2-7c1f-7000-8000-0000000000b1"
	missing   = "0190a6e2-7c1f-7000-8000-0000000000ff"
)

func testTargets() Targets {
	return Targets{
		KindSubscription: knownIDs(userOne, userTwo, userThree),
		KindVideoLike:    knownIDs(videoOne, videoTwo),
		KindCommentLike:  knownIDs(comment),
		KindPostLike:     knownIDs(post),
	}
}

func testDirectory() *directory {
	return &directory{
		channels: map[string]*ChannelSummary{
			userOne:   {ID: userOne, Username: "one"},
			userTwo:   {ID: userTwo, Username: "two"},
			userThree: {ID: userThree, Username: "three"},
		},
		videos: map[string]*VideoSummary{
			videoOne: {ID: videoOne, Title: "first"},
			videoTwo: {ID: videoTwo, Title: "second"},
		},
	}
}
