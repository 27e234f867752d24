// Package health periodically checks that the L2 chain the gateway reads
// from is reachable.
package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/ruteri/ccip-ens-gateway/metrics"
	"go.uber.org/atomic"
)

// DefaultInterval is used when the configured interval is under a second.
const DefaultInterval = 15 * time.Second

// BlockNumberReader is the part of an Ethereum client the probe needs.
// ethclient.Client satisfies it.
type BlockNumberReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// Probe reads the latest block number on a schedule. Each result is
// recorded to metrics and reported to the status callback.
type Probe struct {
	chain    BlockNumberReader
	interval time.Duration
	timeout  time.Duration
	metrics  *metrics.Metrics
	onStatus func(healthy bool)
	log      *slog.Logger

	healthy   atomic.Bool
	lastBlock atomic.Uint64
	scheduler *gocron.Scheduler
}

// NewProbe creates a probe of chain that runs every interval once started.
func NewProbe(chain BlockNumberReader, interval time.Duration, log *slog.Logger) *Probe {
	if interval < time.Second {
		interval = DefaultInterval
	}

	p := &Probe{
		chain:     chain,
		interval:  interval,
		timeout:   interval,
		onStatus:  func(bool) {},
		log:       log,
		scheduler: gocron.NewScheduler(time.UTC),
	}
	p.healthy.Store(true)
	return p
}

// WithMetrics makes the probe record chain status into m. Must be called before Start.
func (p *Probe) WithMetrics(m *metrics.Metrics) *Probe {
	p.metrics = m
	return p
}

// OnStatus registers fn to receive every probe outcome. Must be called before Start.
func (p *Probe) OnStatus(fn func(healthy bool)) *Probe {
	p.onStatus = fn
	return p
}

// Check runs a single probe.
func (p *Probe) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	block, err := p.chain.BlockNumber(ctx)
	if err != nil {
		if p.healthy.Swap(false) {
			p.log.Warn("Chain unreachable", "err", err)
		}
		p.metrics.SetChainStatus(false, 0)
		p.onStatus(false)
		return err
	}

	if !p.healthy.Swap(true) {
		p.log.Info("Chain reachable again", "block", block)
	}
	p.lastBlock.Store(block)
	p.metrics.SetChainStatus(true, block)
	p.onStatus(true)
	return nil
}

func (p *Probe) run() {
	_ = p.Check(context.Background())
}

// Start schedules the probe. The first check runs immediately.
func (p *Probe) Start() error {
	if _, err := p.scheduler.Every(int(p.interval.Seconds())).Seconds().SingletonMode().Do(p.run); err != nil {
		return err
	}
	p.scheduler.StartAsync()
	p.log.Info("Chain health probe started", "interval", p.interval)
	return nil
}

// Stop cancels the schedule. A check in progress is not interrupted.
func (p *Probe) Stop() {
	p.scheduler.Stop()
}

// Healthy reports the outcome of the latest check.
func (p *Probe) Healthy() bool {
	return p.healthy.Load()
}

// LastBlock returns the block number seen by the latest successful check.
func (p *Probe) LastBlock() uint64 {
	return p.lastBlock.Load()
}
