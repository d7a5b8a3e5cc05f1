package client

import (
	"context"
	"sync"
	"time"
)

type refreshResult struct {
	token string
	err   error
}

// refreshCoordinator guarantees at most one refresh call is in flight.
// The first caller runs refreshFn; everyone else queues on a channel and
// receives the same result. A waiter gives up after waitTimeout or when
// its context is cancelled, without aborting the refresh itself.
type refreshCoordinator struct {
	mu          sync.Mutex
	refreshing  bool
	waiters     []chan refreshResult
	refreshFn   func(ctx context.Context) (string, error)
	waitTimeout time.Duration
}

func newRefreshCoordinator(refreshFn func(ctx context.Context) (string, error), waitTimeout time.Duration) *refreshCoordinator {
	return &refreshCoordinator{
		refreshFn:   refreshFn,
		waitTimeout: waitTimeout,
	}
}

func (rc *refreshCoordinator) Refresh(ctx context.Context) (string, error) {
	rc.mu.Lock()
	if rc.refreshing {
		ch := make(chan refreshResult, 1)
		rc.waiters = append(rc.waiters, ch)
		rc.mu.Unlock()
		return rc.wait(ctx, ch)
	}
	rc.refreshing = true
	rc.mu.Unlock()

	token, err := rc.refreshFn(ctx)

	rc.mu.Lock()
	rc.refreshing = false
	waiters := rc.waiters
	rc.waiters = nil
	rc.mu.Unlock()

	result := refreshResult{token: token, err: err}
	for _, ch := range waiters {
		ch <- result
	}
	return token, err
}

func (rc *refreshCoordinator) wait(ctx context.Context, ch chan refreshResult) (string, error) {
	timer := time.NewTimer(rc.waitTimeout)
	defer timer.Stop()
	select {
	case res := <-ch:
		return res.token, res.err
	case <-timer.C:
		return "", context.DeadlineExceeded
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
