// Package primer implements the Cache Primer (spec §4.K): a fixed-size
// worker pool that eagerly streams a symbol/time range through the
// cache chain so later reads hit warm tiers.
package primer

import (
	"context"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/LimeMojito/trading-data-stream/internal/cache"
	"github.com/LimeMojito/trading-data-stream/internal/pathgen"
)

// Primer runs a fixed pool of workers, each pulling paths off a shared
// queue and streaming them to end-of-data through the byte cache chain,
// forcing materialization through every tier.
type Primer struct {
	bytes   cache.ByteCache
	paths   *pathgen.Generator
	workers int

	mu      sync.Mutex
	tasks   chan string
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	running bool
}

// New constructs a Primer sized to the available CPU cores.
func New(bytes cache.ByteCache, paths *pathgen.Generator) *Primer {
	return &Primer{bytes: bytes, paths: paths, workers: runtime.NumCPU()}
}

// NewLoad clears any pending tasks and starts a fresh worker pool, ready
// for Load calls.
func (p *Primer) NewLoad() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		p.cancel()
		p.wg.Wait()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.tasks = make(chan string, 1024)
	p.running = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *Primer) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-p.tasks:
			if !ok {
				return
			}
			p.prime(ctx, path)
		}
	}
}

func (p *Primer) prime(ctx context.Context, path string) {
	src, err := p.bytes.Stream(ctx, path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("primer failed to open path, skipping")
		return
	}
	defer src.Close()

	if _, err := io.Copy(io.Discard, src); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("primer failed to read path to end, skipping")
	}
}

// Load enqueues one priming task per hourly path covering [start, end]
// for symbol. Must be called after NewLoad.
func (p *Primer) Load(symbol string, start, end time.Time) {
	paths := p.paths.HourPaths(symbol, start, end)
	for _, path := range paths {
		p.tasks <- path
	}
}

// WaitForCompletion blocks until every enqueued task has finished.
func (p *Primer) WaitForCompletion() {
	p.mu.Lock()
	tasks := p.tasks
	p.mu.Unlock()

	close(tasks)
	p.wg.Wait()

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
}

// Shutdown interrupts any in-flight workers immediately.
func (p *Primer) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	p.cancel()
	p.wg.Wait()
	p.running = false
}
