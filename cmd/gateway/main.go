// Command gateway boots the multi-tenant RPC reverse proxy: it loads the
// TOML configuration, builds one scheduler per chain, starts the refill
// ticker, and serves inbound traffic until a shutdown signal arrives.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/nodeforge/rpc-gateway/internal/config"
	"github.com/nodeforge/rpc-gateway/internal/forwarder"
	"github.com/nodeforge/rpc-gateway/internal/handler"
	"github.com/nodeforge/rpc-gateway/internal/httpserver"
	"github.com/nodeforge/rpc-gateway/internal/observability"
	"github.com/nodeforge/rpc-gateway/internal/refill"
	"github.com/nodeforge/rpc-gateway/internal/registry"
	"github.com/nodeforge/rpc-gateway/internal/retry"
	"github.com/nodeforge/rpc-gateway/internal/scheduler"
	"github.com/nodeforge/rpc-gateway/internal/upstream"
)

func main() {
	configPath := flag.String("config", "gateway.toml", "path to the TOML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	obs, err := observability.New("rpc-gateway")
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		log.Fatalf("failed to build chain registry: %v", err)
	}

	logStartup(context.Background(), obs, reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker, err := refill.New(obs, reg, cfg.RefillInterval)
	if err != nil {
		log.Fatalf("failed to build refill ticker: %v", err)
	}
	go ticker.Start(ctx)

	ctrl := retry.New(forwarder.New(), obs, cfg.MaxRetries, cfg.BaseDelay)
	h := handler.New(reg, ctrl, obs, cfg.MaxBodyBytes)

	srv, err := httpserver.New(obs, obs.Metrics().Registry(),
		httpserver.WithAddress(cfg.Address()),
		httpserver.WithBodyLimit(cfg.MaxBodyBytes),
	)
	if err != nil {
		log.Fatalf("failed to build HTTP server: %v", err)
	}

	srv.RegisterRouters(h)

	if err := srv.Start(ctx); err != nil {
		cancel()
		obs.Logger().Error(context.Background(), "server exited with error", observability.Error(err))
		os.Exit(1)
	}
}

// buildRegistry translates the loaded configuration into one Scheduler per
// chain, per spec §6.2's chains -> rpc_urls shape.
func buildRegistry(cfg *config.Config) (*registry.Registry, error) {
	chains := make(map[string]*scheduler.Scheduler, len(cfg.Chains))

	for name, chain := range cfg.Chains {
		upstreams := make([]*upstream.Upstream, 0, len(chain.RPCURLs))
		for _, rpc := range chain.RPCURLs {
			u, err := upstream.New(rpc.URL, rpc.RequestLimit, rpc.CurrentLimit)
			if err != nil {
				return nil, fmt.Errorf("chain %q: %w", name, err)
			}
			upstreams = append(upstreams, u)
		}

		sched, err := scheduler.New(upstreams)
		if err != nil {
			return nil, fmt.Errorf("chain %q: %w", name, err)
		}

		chains[name] = sched
	}

	return registry.New(chains)
}

// logStartup emits the per-chain structured log folded in from
// original_source/: chain name and upstream count, once at boot.
func logStartup(ctx context.Context, obs observability.Observability, reg *registry.Registry) {
	reg.Each(func(chain string, s *scheduler.Scheduler) {
		obs.Logger().Info(ctx, "chain configured",
			observability.String("chain", chain),
			observability.Int("upstreams", s.Len()),
		)
	})
}
