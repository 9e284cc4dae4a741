// Package retry drives one inbound request through up to MaxRetries
// forwarding attempts, rotating the chain's scheduler between failures and
// backing off by a fixed, jitter-free exponential schedule.
//
// The backoff is driven manually — NextBackOff() called in a loop, never
// backoff.Retry() — the same pattern the teacher uses to reconnect its
// Kafka reader in pkg/messaging/kafka/reader.go. Retrying an HTTP call
// needs a scheduler.Pick()/Rotate() in between attempts, which doesn't fit
// inside backoff.Retry()'s single-closure model.
package retry

import (
	"context"
	"crypto/rand"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"

	"github.com/nodeforge/rpc-gateway/internal/forwarder"
	"github.com/nodeforge/rpc-gateway/internal/observability"
)

// Forwarder issues one outbound request. Satisfied by *forwarder.Pipeline.
type Forwarder interface {
	Forward(ctx context.Context, method, targetURL string, body []byte) (*forwarder.Response, error)
}

// Scheduler picks and rotates upstreams for one chain. Satisfied by
// *scheduler.Scheduler.
type Scheduler interface {
	Pick() (string, bool)
	Rotate()
}

// Controller executes the retry loop described by spec §4.3: pick, forward,
// classify, rotate-and-backoff on failure, up to MaxRetries attempts.
type Controller struct {
	forwarder  Forwarder
	obs        observability.Observability
	maxRetries int
	baseDelay  time.Duration
}

// New builds a Controller. maxRetries and baseDelay are normally
// config.DefaultMaxRetries/DefaultBaseDelay, taken from the loaded config.
func New(f Forwarder, obs observability.Observability, maxRetries int, baseDelay time.Duration) *Controller {
	return &Controller{
		forwarder:  f,
		obs:        obs,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// newBackOff builds the deterministic BASE_DELAY × 2^(attempt+1) schedule
// required by spec §4.3/§9 on top of cenkalti/backoff's ExponentialBackOff:
// RandomizationFactor is zeroed out so NextBackOff() is reproducible, unlike
// the jittered defaults the teacher uses for broker reconnects.
func (c *Controller) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.baseDelay * 2
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = time.Duration(math.MaxInt64)
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Execute runs the retry loop for one inbound request against chain's
// scheduler. It returns the first successful response, or *ErrNoResponse if
// every attempt failed.
func (c *Controller) Execute(ctx context.Context, chain string, sched Scheduler, method string, body []byte) (*forwarder.Response, error) {
	log := c.obs.Logger()
	metrics := c.obs.Metrics()
	tracer := c.obs.Tracer()

	ctx, span := tracer.Start(ctx, "retry.Execute")
	span.SetAttributes(observability.Int("retry.max_attempts", c.maxRetries))
	defer span.End()

	bo := c.newBackOff()
	attempted := false
	lastUpstream := ""

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		attemptID := newAttemptID()
		attemptLog := log.With(
			observability.String("chain", chain),
			observability.String("attempt_id", attemptID),
			observability.Int("attempt", attempt),
		)
		span.SetAttributes(observability.Int("retry.attempt", attempt))

		url, ok := sched.Pick()
		if !ok {
			metrics.QuotaExhausted(chain)
			attemptLog.Warn(ctx, "no upstream available, quota exhausted")
			sched.Rotate()

			if !c.sleepBeforeNextAttempt(ctx, bo, attempt) {
				break
			}
			continue
		}

		attempted = true
		lastUpstream = url
		attemptLog = attemptLog.With(observability.String("upstream", url))

		resp, err := c.forwarder.Forward(ctx, method, url, body)
		if err != nil {
			metrics.ForwardAttempt(chain, url, "error")
			attemptLog.Warn(ctx, "forwarding attempt failed", observability.Error(err))
			span.AddEvent("forward.error", observability.String("upstream", url), observability.Error(err))
			sched.Rotate()

			if !c.sleepBeforeNextAttempt(ctx, bo, attempt) {
				break
			}
			continue
		}

		if resp.Success() {
			metrics.ForwardAttempt(chain, url, "success")
			metrics.AttemptsPerRequest(chain, attempt+1)
			attemptLog.Info(ctx, "forwarding attempt succeeded", observability.Int("status", resp.StatusCode))
			span.SetAttributes(
				observability.String("retry.upstream", url),
				observability.String("retry.outcome", "success"),
				observability.Int("retry.attempt", attempt),
			)
			return resp, nil
		}

		metrics.ForwardAttempt(chain, url, "failure")
		attemptLog.Warn(ctx, "upstream returned a non-2xx status", observability.Int("status", resp.StatusCode))
		span.AddEvent("forward.non2xx", observability.String("upstream", url), observability.Int("status", resp.StatusCode))
		sched.Rotate()

		if !c.sleepBeforeNextAttempt(ctx, bo, attempt) {
			break
		}
	}

	metrics.AttemptsPerRequest(chain, c.maxRetries)
	span.SetAttributes(
		observability.String("retry.upstream", lastUpstream),
		observability.String("retry.outcome", "exhausted"),
	)
	return nil, &ErrNoResponse{Attempted: attempted}
}

// sleepBeforeNextAttempt sleeps for the next backoff delay unless attempt
// was the final one, in which case it returns false and the caller should
// stop retrying. ctx cancellation aborts the sleep early.
func (c *Controller) sleepBeforeNextAttempt(ctx context.Context, bo backoff.BackOff, attempt int) bool {
	if attempt == c.maxRetries-1 {
		return false
	}

	delay := bo.NextBackOff()
	if delay == backoff.Stop {
		return false
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// newAttemptID mints a ULID correlation id for one attempt's log lines,
// following the teacher's pkg/vos ULID value object.
func newAttemptID() string {
	id, err := ulid.New(ulid.Now(), rand.Reader)
	if err != nil {
		return ""
	}
	return id.String()
}
