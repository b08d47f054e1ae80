// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package social

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/platform/apperr"
)

type recordingObserver struct {
	mu     sync.Mutex
	counts []int64
}

func (observer *recordingObserver) Observe(_ context.Context, _ Kind, _ string, count int64) {
	observer.mu.Lock()
	defer observer.mu.Unlock()
	observer.counts = append(observer.counts, count)
}

func newTestEngine() (*Engine, *memoryEdges) {
	edges := newMemoryEdges()
	return NewEngine(edges, testTargets(), nil, discardLogger()), edges
}

func TestToggle_SubscriptionScenario(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	result, err := engine.Toggle(ctx, userOne, KindSubscription, userTwo)
	require.NoError(t, err)
	assert.Equal(t, &Result{IsActive: true, Count: 1}, result)

	result, err = engine.Toggle(ctx, userOne, KindSubscription, userTwo)
	require.NoError(t, err)
	assert.Equal(t, &Result{IsActive: false, Count: 0}, result)
}

func TestToggle_CountIsIndependentOfActor(t *testing.T) {
	engine, _ := newTestEngine()
	ctx := context.Background()

	_, err := engine.Toggle(ctx, userOne, KindVideoLike, videoOne)
	require.NoError(t, err)

	result, err := engine.Toggle(ctx, userTwo, KindVideoLike, videoOne)
	require.NoError(t, err)
	assert.Equal(t, &Result{IsActive: true, Count: 2}, result)

	// Other kinds and targets are not counted.
	result, err = engine.Toggle(ctx, userTwo, KindVideoLike, videoTwo)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Count)
}

func TestToggle_DoubleToggleRestoresState(t *testing.T) {
	ctx := context.Background()

	for _, kind := range Kinds {
		t.Run(string(kind), func(t *testing.T) {
			engine, edges := newTestEngine()
			target := map[Kind]string{
				KindSubscription: userTwo,
				KindVideoLike:    videoOne,
				KindCommentLike:  comment,
				KindPostLike:     post,
			}[kind]

			// Another actor's edge gives the target a non-zero baseline.
			require.NoError(t, edges.Insert(ctx, &Edge{ActorID: userThree, Kind: kind, TargetID: target}))
			baseline, err := edges.Count(ctx, kind, target)
			require.NoError(t, err)

			first, err := engine.Toggle(ctx, userOne, kind, target)
			require.NoError(t, err)
			assert.True(t, first.IsActive)
			assert.Equal(t, baseline+1, first.Count)

			second, err := engine.Toggle(ctx, userOne, kind, target)
			require.NoError(t, err)
			assert.False(t, second.IsActive)
			assert.Equal(t, baseline, second.Count)
		})
	}
}

func TestToggle_SelfSubscriptionAlwaysForbidden(t *testing.T) {
	engine, edges := newTestEngine()
	ctx := context.Background()

	_, err := engine.Toggle(ctx, userOne, KindSubscription, userOne)
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	// Even with a stray self edge in the store the toggle is rejected and nothing changes.
	edges.edges[edgeKey{userOne, KindSubscription, userOne}] = Edge{ActorID: userOne, Kind: KindSubscription, TargetID: userOne}
	_, err = engine.Toggle(ctx, userOne, KindSubscription, userOne)
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))
	assert.Equal(t, 1, edges.size())

	// An unknown ID is rejected as self-subscription before the existence check.
	_, err = engine.Toggle(ctx, missing, KindSubscription, missing)
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))
}

func TestToggle_SelfLikeIsAllowed(t *testing.T) {
	engine, _ := newTestEngine()
	targets := testTargets()
	targets[KindPostLike] = knownIDs(userOne)
	engine.targets = targets

	result, err := engine.Toggle(context.Background(), userOne, KindPostLike, userOne)
	require.NoError(t, err)
	assert.True(t, result.IsActive)
}

func TestToggle_Rejections(t *testing.T) {
	engine, edges := newTestEngine()
	ctx := context.Background()

	_, err := engine.Toggle(ctx, userOne, Kind("bookmark"), videoOne)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = engine.Toggle(ctx, userOne, KindVideoLike, missing)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	assert.Equal(t, "Video not found", err.Error())

	_, err = engine.Toggle(ctx, userOne, KindSubscription, missing)
	assert.Equal(t, "Channel not found", err.Error())

	_, err = engine.Toggle(ctx, "", KindVideoLike, videoOne)
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	assert.Zero(t, edges.size())
}

func TestToggle_StoreFailureIsSurfacedWithoutRetry(t *testing.T) {
	engine, edges := newTestEngine()
	edges.failCount = true

	_, err := engine.Toggle(context.Background(), userOne, KindVideoLike, videoOne)
	require.Error(t, err)
	assert.False(t, apperr.IsAppError(err))
	assert.Equal(t, 1, edges.counts)
}

func TestToggle_CheckerFailureIsSurfaced(t *testing.T) {
	engine, _ := newTestEngine()
	engine.targets = Targets{KindVideoLike: CheckerFunc(func(context.Context, string) (bool, error) {
		return false, errors.New("db down")
	})}

	_, err := engine.Toggle(context.Background(), userOne, KindVideoLike, videoOne)
	require.Error(t, err)
	assert.False(t, apperr.IsNotFound(err))
}

func TestToggle_ConcurrentCallsNeverDuplicate(t *testing.T) {
	engine, edges := newTestEngine()
	ctx := context.Background()

	const callers = 32
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]*Result, callers)
		errs    = make([]error, callers)
	)

	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results[i], errs[i] = engine.Toggle(ctx, userOne, KindVideoLike, videoOne)
		}()
	}
	close(start)
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.LessOrEqual(t, results[i].Count, int64(1))
		assert.GreaterOrEqual(t, results[i].Count, int64(0))
	}

	assert.LessOrEqual(t, edges.size(), 1)

	// The settled state is well defined: the next toggle flips it.
	exists, err := edges.Exists(ctx, userOne, KindVideoLike, videoOne)
	require.NoError(t, err)
	next, err := engine.Toggle(ctx, userOne, KindVideoLike, videoOne)
	require.NoError(t, err)
	assert.Equal(t, !exists, next.IsActive)
}

func TestToggle_LostInsertRaceCollapsesToOn(t *testing.T) {
	edges := newMemoryEdges()
	racing := &racingEdges{memoryEdges: edges}
	engine := NewEngine(racing, testTargets(), nil, discardLogger())

	result, err := engine.Toggle(context.Background(), userOne, KindVideoLike, videoOne)
	require.NoError(t, err)
	assert.Equal(t, &Result{IsActive: true, Count: 1}, result)
}

func TestToggle_LostDeleteRaceCollapsesToOff(t *testing.T) {
	edges := newMemoryEdges()
	ctx := context.Background()
	require.NoError(t, edges.Insert(ctx, &Edge{ActorID: userOne, Kind: KindVideoLike, TargetID: videoOne}))
	racing := &racingEdges{memoryEdges: edges}
	engine := NewEngine(racing, testTargets(), nil, discardLogger())

	result, err := engine.Toggle(ctx, userOne, KindVideoLike, videoOne)
	require.NoError(t, err)
	assert.Equal(t, &Result{IsActive: false, Count: 0}, result)
}

func TestToggle_NotifiesObserverWithLiveCount(t *testing.T) {
	edges := newMemoryEdges()
	observer := &recordingObserver{}
	engine := NewEngine(edges, testTargets(), observer, discardLogger())
	ctx := context.Background()

	_, err := engine.Toggle(ctx, userOne, KindCommentLike, comment)
	require.NoError(t, err)
	_, err = engine.Toggle(ctx, userTwo, KindCommentLike, comment)
	require.NoError(t, err)
	_, err = engine.Toggle(ctx, userOne, KindCommentLike, comment)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 1}, observer.counts)
}

// racingEdges simulates a concurrent caller that acts between Find and the write.
type racingEdges struct {
	*memoryEdges
}

func (store *racingEdges) Insert(context context.Context, edge *Edge) error {
	concurrent := *edge
	_ = store.memoryEdges.Insert(context, &concurrent)
	return store.memoryEdges.Insert(context, edge)
}

func (store *racingEdges) Delete(context context.Context, actorID string, kind Kind, targetID string) (bool, error) {
	_, _ = store.memoryEdges.Delete(context, actorID, kind, targetID)
	return store.memoryEdges.Delete(context, actorID, kind, targetID)
}
