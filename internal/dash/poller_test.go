package dash

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntPoller(fetch func(ctx context.Context) (int, error)) *poller[int] {
	return newPoller("test", time.Second, time.Second, 3, fetch)
}

func TestPollerAppliesInOrder(t *testing.T) {
	p := newIntPoller(nil)

	assert.True(t, p.apply(pollResult[int]{source: "test", seq: 1, data: 10}))
	assert.True(t, p.hasData)
	assert.Equal(t, 10, p.data)

	assert.True(t, p.apply(pollResult[int]{source: "test", seq: 2, data: 20}))
	assert.Equal(t, 20, p.data)
}

func TestPollerRejectsStaleResponse(t *testing.T) {
	p := newIntPoller(nil)

	// Poll 2 lands first; the delayed response from poll 1 must not
	// regress the snapshot
	assert.True(t, p.apply(pollResult[int]{source: "test", seq: 2, data: 20}))
	assert.False(t, p.apply(pollResult[int]{source: "test", seq: 1, data: 10}))
	assert.Equal(t, 20, p.data)

	// A replay of the applied sequence is equally stale
	assert.False(t, p.apply(pollResult[int]{source: "test", seq: 2, data: 99}))
	assert.Equal(t, 20, p.data)
}

func TestPollerKeepsLastGoodOnError(t *testing.T) {
	p := newIntPoller(nil)

	require.True(t, p.apply(pollResult[int]{source: "test", seq: 1, data: 42}))
	assert.False(t, p.apply(pollResult[int]{source: "test", seq: 2, err: errors.New("boom")}))

	assert.Equal(t, 42, p.data, "failed poll leaves the snapshot alone")
	assert.True(t, p.hasData)
	assert.Equal(t, 1, p.failures)
	assert.Error(t, p.lastErr)

	// Recovery clears the failure streak
	assert.True(t, p.apply(pollResult[int]{source: "test", seq: 3, data: 43}))
	assert.Equal(t, 0, p.failures)
	assert.NoError(t, p.lastErr)
}

func TestPollerStaleness(t *testing.T) {
	p := newPoller("test", time.Second, time.Second, 3, func(ctx context.Context) (int, error) {
		return 0, nil
	})

	now := time.Now()
	assert.False(t, p.stale(now), "no data cannot be stale, it is loading")

	p.apply(pollResult[int]{source: "test", seq: 1, data: 1})
	assert.False(t, p.stale(time.Now()))

	// Older than staleFactor x interval
	p.lastSuccess = now.Add(-4 * time.Second)
	assert.True(t, p.stale(now))

	// Exactly at the boundary is still fresh
	p.lastSuccess = now.Add(-3 * time.Second)
	assert.False(t, p.stale(now))
}

func TestPollerStaleFactorDefault(t *testing.T) {
	p := newPoller("test", 2*time.Second, time.Second, 0, func(ctx context.Context) (int, error) {
		return 0, nil
	})
	assert.Equal(t, 6*time.Second, p.staleAfter)
}

func TestFetchCmdSequencesIncrease(t *testing.T) {
	calls := 0
	p := newIntPoller(func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	})

	ctx := context.Background()
	first := p.fetchCmd(ctx)().(pollResult[int])
	second := p.fetchCmd(ctx)().(pollResult[int])

	assert.Equal(t, uint64(1), first.seq)
	assert.Equal(t, uint64(2), second.seq)
	assert.Equal(t, "test", first.source)
}

func TestFetchCmdHonorsParentCancellation(t *testing.T) {
	p := newIntPoller(func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cmd := p.fetchCmd(ctx)
	cancel()

	res := cmd().(pollResult[int])
	assert.ErrorIs(t, res.err, context.Canceled, "teardown cancels in-flight fetches")
}
