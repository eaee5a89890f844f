package verify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoplink/hoplink/internal"
)

func TestSweepSettlesPendingAndFailed(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"go.reachable.io": testTarget,
	})
	ctx := context.Background()

	reachable, err := svc.Add(ctx, 1, "reachable.io", "go")
	require.NoError(t, err)
	broken, err := svc.Add(ctx, 1, "broken.io", "go")
	require.NoError(t, err)

	// Seed a previously failed record; the sweep must retry it too.
	failedBefore, err := svc.Verify(ctx, 1, broken.ID)
	require.NoError(t, err)
	require.Equal(t, internal.StatusFailed, failedBefore.Status)

	svc.Sweep(ctx, 0)

	got, err := svc.Get(ctx, 1, reachable.ID)
	require.NoError(t, err)
	assert.Equal(t, internal.StatusVerified, got.Status)

	got, err = svc.Get(ctx, 1, broken.ID)
	require.NoError(t, err)
	assert.Equal(t, internal.StatusFailed, got.Status)
	assert.NotNil(t, got.LastVerifiedAt)
}

func TestSweepLeavesVerifiedAlone(t *testing.T) {
	svc, resolver := newTestService(t, map[string]string{"go.acme.io": testTarget})
	ctx := context.Background()

	rec, err := svc.Add(ctx, 1, "acme.io", "go")
	require.NoError(t, err)
	_, err = svc.Verify(ctx, 1, rec.ID)
	require.NoError(t, err)
	lookups := resolver.lookups.Load()

	svc.Sweep(ctx, 0)
	assert.Equal(t, lookups, resolver.lookups.Load(), "verified records are not re-checked")
}

// cancelingResolver cancels the sweep context during its first lookup, as a
// shutdown arriving mid-sweep would.
type cancelingResolver struct {
	inner  *fakeResolver
	cancel context.CancelFunc
}

func (c *cancelingResolver) LookupCNAME(ctx context.Context, host string) (string, error) {
	c.cancel()
	return c.inner.LookupCNAME(ctx, host)
}

func (c *cancelingResolver) LookupTXT(ctx context.Context, host string) ([]string, error) {
	return c.inner.LookupTXT(ctx, host)
}

func TestSweepStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	inner := &fakeResolver{}
	svc := NewService(openTestDB(t), &cancelingResolver{inner: inner, cancel: cancel}, testTarget)

	_, err := svc.Add(context.Background(), 1, "one.io", "go")
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), 1, "two.io", "go")
	require.NoError(t, err)

	svc.Sweep(ctx, time.Minute)

	// The first check runs, then the inter-check wait observes the cancel.
	assert.Equal(t, int64(1), inner.lookups.Load())
}

func TestSweeperSingleFlight(t *testing.T) {
	svc, resolver := newTestService(t, nil)
	w := NewSweeper(svc, time.Minute)

	_, err := svc.Add(context.Background(), 1, "acme.io", "go")
	require.NoError(t, err)

	// Simulate an in-flight sweep holding the guard: the tick is skipped.
	w.running.Lock()
	w.runOnce(context.Background())
	w.running.Unlock()
	assert.Equal(t, int64(0), resolver.lookups.Load())

	w.runOnce(context.Background())
	assert.Equal(t, int64(1), resolver.lookups.Load())
}

func TestSweeperStartStop(t *testing.T) {
	svc, _ := newTestService(t, nil)
	w := NewSweeper(svc, time.Minute)
	w.startDelay = time.Hour // keep the loop idle for this test

	w.Start()
	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
}
