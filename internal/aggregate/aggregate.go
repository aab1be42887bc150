// Package aggregate implements the online tick-to-bar aggregator (spec
// §4.H): one in-flight bar per partition key (streamId, symbol), all at
// the same configured period, emitting completed bars as tick time
// advances past period boundaries.
package aggregate

import (
	"sync"

	"github.com/LimeMojito/trading-data-stream/internal/model"
)

// PriceSelector picks the price a tick contributes to bar OHLC. The
// default selects bid only (spec §9 open question 2); callers may supply
// an alternative selector (e.g. mid-price) via WithPriceSelector.
type PriceSelector func(t model.Tick) int64

// BidPrice is the default PriceSelector: only the bid price contributes to
// bar OHLC, ask is ignored.
func BidPrice(t model.Tick) int64 { return t.BidPoints }

// Notifier receives completed bars as they are emitted, plus a flush hook
// called once at end-of-load.
type Notifier interface {
	OnBar(b model.Bar)
	Flush()
}

// FuncNotifier adapts two plain functions to the Notifier interface.
type FuncNotifier struct {
	OnBarFunc func(model.Bar)
	FlushFunc func()
}

func (f FuncNotifier) OnBar(b model.Bar) {
	if f.OnBarFunc != nil {
		f.OnBarFunc(b)
	}
}

func (f FuncNotifier) Flush() {
	if f.FlushFunc != nil {
		f.FlushFunc()
	}
}

type inflight struct {
	startMillis        int64
	endMillisInclusive int64
	open, high, low, close int64
	source             model.Origin
	streamID            model.Tick
	ticks              int64
}

// Aggregator consumes an ordered tick stream and emits completed bars of
// period for each (streamId, symbol) partition it sees.
type Aggregator struct {
	period   model.Period
	selector PriceSelector
	notifier Notifier

	mu        sync.Mutex
	inflights map[string]*inflight
}

// New constructs an aggregator for period, notifying notifier of each
// completed bar.
func New(period model.Period, notifier Notifier) *Aggregator {
	return &Aggregator{
		period:    period,
		selector:  BidPrice,
		notifier:  notifier,
		inflights: make(map[string]*inflight),
	}
}

// WithPriceSelector overrides the default bid-only OHLC price selection.
func (a *Aggregator) WithPriceSelector(selector PriceSelector) *Aggregator {
	a.selector = selector
	return a
}

// OnTick folds one tick into its partition's in-flight bar, emitting the
// previous in-flight bar first if the tick has advanced past its window.
// Callers must feed a single ordered stream per partition; updates to a
// single partition entry are serialized by the aggregator's own lock
// (compare-and-swap semantics: emit then replace, atomically).
func (a *Aggregator) OnTick(t model.Tick) {
	price := a.selector(t)
	durationMillis := a.period.DurationMillis()
	timeIndex := t.TimestampMillis / durationMillis
	startMillis := timeIndex * durationMillis
	key := t.PartitionKey()

	a.mu.Lock()
	defer a.mu.Unlock()

	cur, ok := a.inflights[key]
	if !ok {
		a.inflights[key] = a.newInflight(t, startMillis, price)
		return
	}

	if t.TimestampMillis > cur.endMillisInclusive {
		a.emit(key, cur)
		a.inflights[key] = a.newInflight(t, startMillis, price)
		return
	}

	if cur.ticks == 0 {
		cur.open, cur.high, cur.low, cur.close = price, price, price, price
	} else {
		if price > cur.high {
			cur.high = price
		}
		if price < cur.low {
			cur.low = price
		}
		cur.close = price
	}
	cur.source = model.CombineOrigin(cur.source, t.Source)
	cur.ticks++
}

func (a *Aggregator) newInflight(t model.Tick, startMillis, price int64) *inflight {
	return &inflight{
		startMillis:        startMillis,
		endMillisInclusive: startMillis + a.period.DurationMillis() - 1,
		open:               price,
		high:               price,
		low:                price,
		close:              price,
		source:             t.Source,
		streamID:           t,
		ticks:              1,
	}
}

func (a *Aggregator) emit(key string, cur *inflight) {
	bar := model.Bar{
		StartMillis: cur.startMillis,
		StreamID:    cur.streamID.StreamID,
		Period:      a.period,
		Symbol:      cur.streamID.Symbol,
		Open:        cur.open,
		High:        cur.high,
		Low:         cur.low,
		Close:       cur.close,
		Source:      cur.source,
	}
	delete(a.inflights, key)
	a.notifier.OnBar(bar)
}

// LoadEnd emits any remaining in-flight bars and calls the notifier's
// flush hook.
func (a *Aggregator) LoadEnd() {
	a.mu.Lock()
	keys := make([]string, 0, len(a.inflights))
	for k := range a.inflights {
		keys = append(keys, k)
	}
	for _, k := range keys {
		a.emit(k, a.inflights[k])
	}
	a.mu.Unlock()
	a.notifier.Flush()
}
