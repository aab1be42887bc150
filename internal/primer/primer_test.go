package primer

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/LimeMojito/trading-data-stream/internal/cache"
	"github.com/LimeMojito/trading-data-stream/internal/market"
	"github.com/LimeMojito/trading-data-stream/internal/pathgen"
	"github.com/LimeMojito/trading-data-stream/internal/stats"
)

type recordingByteCache struct {
	mu    sync.Mutex
	seen  []string
	fails map[string]bool
}

func (r *recordingByteCache) Stream(ctx context.Context, path string) (cache.ByteSource, error) {
	r.mu.Lock()
	r.seen = append(r.seen, path)
	fail := r.fails[path]
	r.mu.Unlock()
	if fail {
		return nil, assertError{}
	}
	return cache.NewBytesSource(bytes.NewReader([]byte("payload"))), nil
}

func (r *recordingByteCache) Stats() stats.Aggregator { return stats.NewSimpleStats("recording") }

type assertError struct{}

func (assertError) Error() string { return "boom" }

func TestPrimer_LoadWaitForCompletion(t *testing.T) {
	bc := &recordingByteCache{}
	gen := pathgen.NewGenerator(market.NewOracle())
	p := New(bc, gen)

	p.NewLoad()
	start := time.Date(2020, 6, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)
	p.Load("EURUSD", start, end)
	p.WaitForCompletion()

	bc.mu.Lock()
	defer bc.mu.Unlock()
	assert.NotEmpty(t, bc.seen)
}

func TestPrimer_ToleratesFailures(t *testing.T) {
	bc := &recordingByteCache{fails: map[string]bool{}}
	gen := pathgen.NewGenerator(market.NewOracle())
	p := New(bc, gen)

	start := time.Date(2020, 6, 1, 9, 0, 0, 0, time.UTC)
	firstPath := pathgen.Path("EURUSD", start)
	bc.fails[firstPath] = true

	p.NewLoad()
	p.Load("EURUSD", start, start.Add(time.Hour))
	p.WaitForCompletion()

	bc.mu.Lock()
	defer bc.mu.Unlock()
	assert.Contains(t, bc.seen, firstPath)
}

func TestPrimer_ShutdownInterruptsWorkers(t *testing.T) {
	bc := &recordingByteCache{}
	gen := pathgen.NewGenerator(market.NewOracle())
	p := New(bc, gen)

	p.NewLoad()
	p.Shutdown()
}
