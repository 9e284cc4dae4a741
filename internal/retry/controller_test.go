package retry

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodeforge/rpc-gateway/internal/forwarder"
	"github.com/nodeforge/rpc-gateway/internal/observability"
)

// fakeScheduler is a minimal Scheduler double driven entirely by a fixed
// sequence of pick results, so tests don't need a real upstream pool.
type fakeScheduler struct {
	mu      sync.Mutex
	picks   []string
	i       int
	rotated int
}

func (f *fakeScheduler) Pick() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.i >= len(f.picks) {
		return "", false
	}
	url := f.picks[f.i]
	f.i++
	if url == "" {
		return "", false
	}
	return url, true
}

func (f *fakeScheduler) Rotate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rotated++
}

// fakeForwarder returns a scripted sequence of (response, error) pairs.
type fakeForwarder struct {
	mu      sync.Mutex
	results []forwardResult
	i       int
	calls   []string
}

type forwardResult struct {
	resp *forwarder.Response
	err  error
}

func (f *fakeForwarder) Forward(_ context.Context, _, targetURL string, _ []byte) (*forwarder.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, targetURL)
	if f.i >= len(f.results) {
		return nil, errors.New("fakeForwarder: out of scripted results")
	}
	r := f.results[f.i]
	f.i++
	return r.resp, r.err
}

func newController(f Forwarder, maxRetries int, baseDelay time.Duration) *Controller {
	return New(f, observability.NewNoop(), maxRetries, baseDelay)
}

func TestExecute_SucceedsOnFirstAttempt(t *testing.T) {
	sched := &fakeScheduler{picks: []string{"http://a"}}
	fwd := &fakeForwarder{results: []forwardResult{
		{resp: &forwarder.Response{StatusCode: http.StatusOK, Body: []byte("ok")}},
	}}

	c := newController(fwd, 3, time.Millisecond)
	resp, err := c.Execute(context.Background(), "eth", sched, http.MethodPost, nil)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, sched.rotated)
}

func TestExecute_RotatesAndRetriesOnNon2xx(t *testing.T) {
	sched := &fakeScheduler{picks: []string{"http://a", "http://b"}}
	fwd := &fakeForwarder{results: []forwardResult{
		{resp: &forwarder.Response{StatusCode: http.StatusInternalServerError}},
		{resp: &forwarder.Response{StatusCode: http.StatusOK, Body: []byte("ok")}},
	}}

	c := newController(fwd, 3, time.Millisecond)
	resp, err := c.Execute(context.Background(), "eth", sched, http.MethodPost, nil)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, sched.rotated)
	assert.Equal(t, []string{"http://a", "http://b"}, fwd.calls)
}

func TestExecute_RotatesAndRetriesOnTransportError(t *testing.T) {
	sched := &fakeScheduler{picks: []string{"http://a", "http://b"}}
	fwd := &fakeForwarder{results: []forwardResult{
		{err: errors.New("dial tcp: connection refused")},
		{resp: &forwarder.Response{StatusCode: http.StatusOK}},
	}}

	c := newController(fwd, 3, time.Millisecond)
	resp, err := c.Execute(context.Background(), "eth", sched, http.MethodPost, nil)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, sched.rotated)
}

func TestExecute_ExhaustsAllRetriesReturnsErrNoResponse(t *testing.T) {
	sched := &fakeScheduler{picks: []string{"http://a", "http://b", "http://c"}}
	fwd := &fakeForwarder{results: []forwardResult{
		{resp: &forwarder.Response{StatusCode: http.StatusBadGateway}},
		{resp: &forwarder.Response{StatusCode: http.StatusBadGateway}},
		{resp: &forwarder.Response{StatusCode: http.StatusBadGateway}},
	}}

	c := newController(fwd, 3, time.Millisecond)
	resp, err := c.Execute(context.Background(), "eth", sched, http.MethodPost, nil)

	require.Error(t, err)
	assert.Nil(t, resp)

	var noResp *ErrNoResponse
	require.ErrorAs(t, err, &noResp)
	assert.True(t, noResp.Attempted)
	assert.Equal(t, 3, sched.rotated)
}

func TestExecute_QuotaExhaustedNeverAttemptedIsFalse(t *testing.T) {
	sched := &fakeScheduler{picks: []string{"", "", ""}}
	fwd := &fakeForwarder{}

	c := newController(fwd, 3, time.Millisecond)
	resp, err := c.Execute(context.Background(), "eth", sched, http.MethodPost, nil)

	require.Error(t, err)
	assert.Nil(t, resp)

	var noResp *ErrNoResponse
	require.ErrorAs(t, err, &noResp)
	assert.False(t, noResp.Attempted)
	assert.Empty(t, fwd.calls)
}

func TestExecute_DoesNotSleepAfterFinalAttempt(t *testing.T) {
	sched := &fakeScheduler{picks: []string{"http://a", "http://b", "http://c"}}
	fwd := &fakeForwarder{results: []forwardResult{
		{resp: &forwarder.Response{StatusCode: http.StatusBadGateway}},
		{resp: &forwarder.Response{StatusCode: http.StatusBadGateway}},
		{resp: &forwarder.Response{StatusCode: http.StatusBadGateway}},
	}}

	c := newController(fwd, 3, 50*time.Millisecond)
	start := time.Now()
	_, err := c.Execute(context.Background(), "eth", sched, http.MethodPost, nil)
	elapsed := time.Since(start)

	require.Error(t, err)
	// Two sleeps of ~100ms and ~200ms (BASE_DELAY*2^(attempt+1) with
	// BASE_DELAY=50ms) happen between attempts 0-1 and 1-2; none after
	// the final attempt. Assert comfortably under three sleeps' worth.
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestExecute_ContextCancellationAbortsBackoffSleep(t *testing.T) {
	sched := &fakeScheduler{picks: []string{"http://a", "http://b"}}
	fwd := &fakeForwarder{results: []forwardResult{
		{resp: &forwarder.Response{StatusCode: http.StatusBadGateway}},
	}}

	c := newController(fwd, 3, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := c.Execute(ctx, "eth", sched, http.MethodPost, nil)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Less(t, elapsed, time.Second)
}
