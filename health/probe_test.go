package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/ruteri/ccip-ens-gateway/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChain struct {
	mu    sync.Mutex
	block uint64
	err   error
}

func (f *fakeChain) BlockNumber(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.block, f.err
}

func (f *fakeChain) set(block uint64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.block, f.err = block, err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCheck(t *testing.T) {
	chain := &fakeChain{block: 42}
	m := metrics.NewMetrics("test")

	var statuses []bool
	p := NewProbe(chain, time.Second, discardLogger()).
		WithMetrics(m).
		OnStatus(func(healthy bool) { statuses = append(statuses, healthy) })

	require.NoError(t, p.Check(context.Background()))
	assert.True(t, p.Healthy())
	assert.Equal(t, uint64(42), p.LastBlock())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ChainUp))
	assert.Equal(t, float64(42), testutil.ToFloat64(m.ChainBlockNumber))

	chain.set(0, errors.New("connection refused"))
	require.Error(t, p.Check(context.Background()))
	assert.False(t, p.Healthy())
	assert.Equal(t, uint64(42), p.LastBlock())
	assert.Equal(t, float64(0), testutil.ToFloat64(m.ChainUp))

	chain.set(43, nil)
	require.NoError(t, p.Check(context.Background()))
	assert.True(t, p.Healthy())

	assert.Equal(t, []bool{true, false, true}, statuses)
}

func TestDefaultInterval(t *testing.T) {
	p := NewProbe(&fakeChain{}, 0, discardLogger())
	assert.Equal(t, DefaultInterval, p.interval)
}

func TestScheduledProbe(t *testing.T) {
	chain := &fakeChain{block: 7}
	m := metrics.NewMetrics("test")
	p := NewProbe(chain, time.Second, discardLogger()).WithMetrics(m)

	require.NoError(t, p.Start())
	defer p.Stop()

	require.Eventually(t, func() bool {
		return p.LastBlock() == 7
	}, 3*time.Second, 20*time.Millisecond)

	chain.set(0, errors.New("timeout"))
	require.Eventually(t, func() bool {
		return !p.Healthy()
	}, 3*time.Second, 20*time.Millisecond)
}

func TestSimulatedChain(t *testing.T) {
	backend := simulated.NewBackend(types.GenesisAlloc{})
	defer backend.Close()

	p := NewProbe(backend.Client(), time.Second, discardLogger())
	require.NoError(t, p.Check(context.Background()))
	start := p.LastBlock()

	backend.Commit()
	backend.Commit()
	require.NoError(t, p.Check(context.Background()))
	assert.Equal(t, start+2, p.LastBlock())
}
