package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Bar is an immutable OHLC aggregate over one period for one symbol.
type Bar struct {
	StartMillis int64
	StreamID    uuid.UUID
	Period      Period
	Symbol      string
	Open        int64
	High        int64
	Low         int64
	Close       int64
	Source      Origin
}

// EndMillisInclusive is the derived inclusive end of the bar's window.
func (b Bar) EndMillisInclusive() int64 {
	return b.StartMillis + b.Period.DurationMillis() - 1
}

// PartitionKey is "<streamId>-<symbol>-<period>".
func (b Bar) PartitionKey() string {
	return b.StreamID.String() + "-" + b.Symbol + "-" + b.Period.String()
}

// Equal implements the value-equality contract: (start, stream, period, symbol).
func (b Bar) Equal(o Bar) bool {
	return b.StartMillis == o.StartMillis && b.StreamID == o.StreamID &&
		b.Period == o.Period && b.Symbol == o.Symbol
}

// Less implements the natural ordering: stream type, symbol, period ordinal,
// start, end.
func (b Bar) Less(o Bar) bool {
	if st, ot := streamRank(b.StreamID), streamRank(o.StreamID); st != ot {
		return st < ot
	}
	if b.StreamID != o.StreamID {
		return b.StreamID.String() < o.StreamID.String()
	}
	if b.Symbol != o.Symbol {
		return b.Symbol < o.Symbol
	}
	if b.Period != o.Period {
		return b.Period < o.Period
	}
	if b.StartMillis != o.StartMillis {
		return b.StartMillis < o.StartMillis
	}
	return b.EndMillisInclusive() < o.EndMillisInclusive()
}

// Within reports whether a is wholly contained by b: same stream+symbol,
// b's period is at least as coarse, and b's window covers a's window.
func (b Bar) Within(a Bar) bool {
	if b.StreamID != a.StreamID || b.Symbol != a.Symbol {
		return false
	}
	if b.Period.Duration() < a.Period.Duration() {
		return false
	}
	return b.StartMillis <= a.StartMillis && b.EndMillisInclusive() >= a.EndMillisInclusive()
}

// Validate enforces the OHLC and grid-alignment invariants.
func (b Bar) Validate() error {
	if b.Low > b.Open || b.Open > b.High {
		return fmt.Errorf("bar invariant violated: low %d <= open %d <= high %d", b.Low, b.Open, b.High)
	}
	if b.Low > b.Close || b.Close > b.High {
		return fmt.Errorf("bar invariant violated: low %d <= close %d <= high %d", b.Low, b.Close, b.High)
	}
	if b.Low > b.High {
		return fmt.Errorf("bar invariant violated: low %d <= high %d", b.Low, b.High)
	}
	if b.Low < 1 {
		return fmt.Errorf("bar prices must be strictly positive, got low=%d", b.Low)
	}
	if b.StartMillis%b.Period.DurationMillis() != 0 {
		return fmt.Errorf("bar start %d is not aligned to period %s grid", b.StartMillis, b.Period)
	}
	return nil
}
