package scheduler

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodeforge/rpc-gateway/internal/upstream"
)

func mustUpstream(t *testing.T, url string, limit uint32) *upstream.Upstream {
	t.Helper()
	u, err := upstream.New(url, limit, limit)
	require.NoError(t, err)
	return u
}

func TestNew_EmptyUpstreams(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestPick_SingleUpstreamDrainsThenExhausts(t *testing.T) {
	u := mustUpstream(t, "https://a/", 1)
	s, err := New([]*upstream.Upstream{u})
	require.NoError(t, err)

	url, ok := s.Pick()
	assert.True(t, ok)
	assert.Equal(t, "https://a/", url)
	assert.Equal(t, uint32(0), u.CurrentLimit)

	_, ok = s.Pick()
	assert.False(t, ok, "second pick should find no tokens left")
}

func TestPick_StickyOnSuccess(t *testing.T) {
	a := mustUpstream(t, "https://a/", 3)
	b := mustUpstream(t, "https://b/", 3)
	s, err := New([]*upstream.Upstream{a, b})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		url, ok := s.Pick()
		require.True(t, ok)
		assert.Equal(t, "https://a/", url, "pick should stay on the first upstream while it has tokens")
	}

	// a is now drained; scheduler should move to b without an explicit rotate.
	url, ok := s.Pick()
	require.True(t, ok)
	assert.Equal(t, "https://b/", url)
}

func TestRotate_AdvancesCursorWithoutConsumingToken(t *testing.T) {
	a := mustUpstream(t, "https://a/", 5)
	b := mustUpstream(t, "https://b/", 5)
	s, err := New([]*upstream.Upstream{a, b})
	require.NoError(t, err)

	s.Rotate()
	url, ok := s.Pick()
	require.True(t, ok)
	assert.Equal(t, "https://b/", url)
	assert.Equal(t, uint32(5), a.CurrentLimit, "rotate must not consume a token")
}

func TestRotate_Monotonicity(t *testing.T) {
	a := mustUpstream(t, "https://a/", 1)
	b := mustUpstream(t, "https://b/", 1)
	s, err := New([]*upstream.Upstream{a, b})
	require.NoError(t, err)

	s.Rotate()
	s.Rotate()

	// Two rotations on N=2 return the cursor to its starting position.
	url, ok := s.Pick()
	require.True(t, ok)
	assert.Equal(t, "https://a/", url)
}

func TestRefill_RestoresAllQuotas(t *testing.T) {
	a := mustUpstream(t, "https://a/", 2)
	b := mustUpstream(t, "https://b/", 2)
	s, err := New([]*upstream.Upstream{a, b})
	require.NoError(t, err)

	s.Pick()
	s.Pick()
	s.Pick() // drains a, moves to b, drains one token

	s.Refill()

	for _, snap := range s.Snapshot() {
		assert.Equal(t, snap.RequestLimit, snap.CurrentLimit)
	}
}

func TestPick_AllExhaustedReturnsFalse(t *testing.T) {
	a, err := upstream.New("https://a/", 2, 0)
	require.NoError(t, err)
	b, err := upstream.New("https://b/", 2, 0)
	require.NoError(t, err)

	s, err := New([]*upstream.Upstream{a, b})
	require.NoError(t, err)

	_, ok := s.Pick()
	assert.False(t, ok)
}

func TestPick_RoundRobinFairnessUnderEqualQuotas(t *testing.T) {
	const n, k = 3, 4
	ups := make([]*upstream.Upstream, n)
	for i := range ups {
		ups[i] = mustUpstream(t, string(rune('a'+i)), uint32(k))
	}

	s, err := New(ups)
	require.NoError(t, err)

	counts := map[string]int{}
	for i := 0; i < n*k; i++ {
		url, ok := s.Pick()
		require.True(t, ok)
		counts[url]++
	}

	for _, u := range ups {
		assert.Equal(t, k, counts[u.URL])
	}

	_, ok := s.Pick()
	assert.False(t, ok, "budget is fully drained after n*k picks")
}

func TestPick_ConcurrentCallsNeverDoubleSpendAToken(t *testing.T) {
	u := mustUpstream(t, "https://a/", 100)
	s, err := New([]*upstream.Upstream{u})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var successes int32Counter
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := s.Pick(); ok {
				successes.inc()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, successes.get())
	assert.Equal(t, uint32(0), u.CurrentLimit)
}

// int32Counter is a tiny mutex-guarded counter, kept local to the test so
// the scheduler package itself stays free of test-only helpers.
type int32Counter struct {
	mu  sync.Mutex
	val int
}

func (c *int32Counter) inc() {
	c.mu.Lock()
	c.val++
	c.mu.Unlock()
}

func (c *int32Counter) get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.val
}
