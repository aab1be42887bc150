package stream

import (
	"github.com/LimeMojito/trading-data-stream/internal/aggregate"
	"github.com/LimeMojito/trading-data-stream/internal/model"
)

// Validator checks a decoded tick or bar before it is folded/emitted.
type Validator[T any] func(T) error

// tickToBar lazily adapts a tick Stream into a bar Stream: on the first
// Next()/HasNext(), it fully consumes the tick stream, aggregates it into
// a bar list, then iterates that buffered list. Close() closes the
// underlying tick stream.
type tickToBar struct {
	ticks     Stream[model.Tick]
	period    model.Period
	validator Validator[model.Tick]
	visit     VisitFunc[model.Bar]
	buffered  Stream[model.Bar]
}

// TickToBar builds a lazy tick-to-bar adapter over ticks, aggregating at
// period. validator (optional) is applied to each tick before it is
// folded; visit (optional) is invoked on each emitted bar.
func TickToBar(validator Validator[model.Tick], period model.Period, ticks Stream[model.Tick], visit VisitFunc[model.Bar]) Stream[model.Bar] {
	return &tickToBar{ticks: ticks, period: period, validator: validator, visit: visit}
}

func (t *tickToBar) materialize() error {
	if t.buffered != nil {
		return nil
	}
	var bars []model.Bar
	agg := aggregate.New(t.period, aggregate.FuncNotifier{
		OnBarFunc: func(b model.Bar) { bars = append(bars, b) },
	})

	for t.ticks.HasNext() {
		tick, err := t.ticks.Next()
		if err != nil {
			return err
		}
		if t.validator != nil {
			if err := t.validator(tick); err != nil {
				return err
			}
		}
		agg.OnTick(tick)
	}
	agg.LoadEnd()

	t.buffered = FromList(bars, t.visit)
	return nil
}

func (t *tickToBar) HasNext() bool {
	if err := t.materialize(); err != nil {
		return false
	}
	return t.buffered.HasNext()
}

func (t *tickToBar) Next() (model.Bar, error) {
	if err := t.materialize(); err != nil {
		var zero model.Bar
		return zero, err
	}
	return t.buffered.Next()
}

func (t *tickToBar) Close() error {
	return t.ticks.Close()
}
