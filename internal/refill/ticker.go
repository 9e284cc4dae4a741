// Package refill runs the periodic token-bucket reset (spec §4.2) on a
// robfig/cron/v3 scheduler driven by a fixed REFILL_INTERVAL entry
// instead of a wall-clock cron expression — the teacher's pkg/cron_worker
// models the production shape (graceful shutdown, panic recovery, adapted
// logger) this reuses.
package refill

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nodeforge/rpc-gateway/internal/observability"
	"github.com/nodeforge/rpc-gateway/internal/registry"
	"github.com/nodeforge/rpc-gateway/internal/scheduler"
)

// Ticker refills every chain's scheduler once per interval.
type Ticker struct {
	cron     *cron.Cron
	obs      observability.Observability
	registry *registry.Registry
	interval time.Duration
}

// New builds a Ticker over reg, refilling every chain's scheduler once per
// interval. interval must be positive.
func New(obs observability.Observability, reg *registry.Registry, interval time.Duration) (*Ticker, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("refill: interval must be positive, got %v", interval)
	}

	c := cron.New(
		cron.WithLogger(newCronLogger(obs)),
		cron.WithChain(cron.Recover(newCronLogger(obs))),
	)

	t := &Ticker{cron: c, obs: obs, registry: reg, interval: interval}

	c.Schedule(intervalSchedule(interval), cron.FuncJob(t.refillAll))

	return t, nil
}

// intervalSchedule fires once per interval after the previous activation.
// Unlike an "@every" spec, it does not round the delay up to whole seconds.
type intervalSchedule time.Duration

func (s intervalSchedule) Next(t time.Time) time.Time {
	return t.Add(time.Duration(s))
}

func (t *Ticker) refillAll() {
	ctx := context.Background()
	t.registry.Each(func(chain string, s *scheduler.Scheduler) {
		s.Refill()
		t.obs.Logger().Info(ctx, "quota refilled", observability.String("chain", chain))
	})
}

// Start runs the cron scheduler until ctx is cancelled, then stops it and
// waits for any in-flight refill to finish.
func (t *Ticker) Start(ctx context.Context) {
	t.obs.Logger().Info(ctx, "starting refill ticker", observability.String("interval", t.interval.String()))
	t.cron.Start()

	<-ctx.Done()

	t.obs.Logger().Info(ctx, "stopping refill ticker")
	stopCtx := t.cron.Stop()
	<-stopCtx.Done()
}
