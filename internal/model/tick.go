package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Tick is an immutable market quote. Equality is by (timestamp, stream,
// symbol); natural ordering is by (stream type, symbol, timestamp).
type Tick struct {
	TimestampMillis int64
	Symbol          string
	StreamID        uuid.UUID
	BidPoints       int64
	AskPoints       int64
	BidVolume       float32
	AskVolume       float32
	Source          Origin
}

// IsRealtime reports whether the tick belongs to the realtime stream
// (the all-zero UUID).
func (t Tick) IsRealtime() bool {
	return t.StreamID == uuid.Nil
}

// PartitionKey is the aggregator/search partition key "<streamId>-<symbol>".
func (t Tick) PartitionKey() string {
	return t.StreamID.String() + "-" + t.Symbol
}

// Equal implements the value-equality contract: (timestamp, stream, symbol).
func (t Tick) Equal(o Tick) bool {
	return t.TimestampMillis == o.TimestampMillis && t.StreamID == o.StreamID && t.Symbol == o.Symbol
}

// Less implements the natural ordering: stream type, symbol, timestamp.
// "Stream type" orders the realtime stream (all-zero UUID) before any
// backtest stream, then compares backtest streams lexically.
func (t Tick) Less(o Tick) bool {
	if st, ot := streamRank(t.StreamID), streamRank(o.StreamID); st != ot {
		return st < ot
	}
	if t.StreamID != o.StreamID {
		return t.StreamID.String() < o.StreamID.String()
	}
	if t.Symbol != o.Symbol {
		return t.Symbol < o.Symbol
	}
	return t.TimestampMillis < o.TimestampMillis
}

func streamRank(id uuid.UUID) int {
	if id == uuid.Nil {
		return 0
	}
	return 1
}

// Validate enforces the data-model invariants for a single tick.
func (t Tick) Validate() error {
	if t.TimestampMillis < 0 {
		return fmt.Errorf("tick timestamp %d must be >= 0", t.TimestampMillis)
	}
	if len(t.Symbol) < 6 {
		return fmt.Errorf("tick symbol %q must be at least 6 characters", t.Symbol)
	}
	if t.BidPoints < 1 || t.AskPoints < 1 {
		return fmt.Errorf("tick prices must be >= 1, got bid=%d ask=%d", t.BidPoints, t.AskPoints)
	}
	if t.BidVolume < 0 || t.AskVolume < 0 {
		return fmt.Errorf("tick volumes must be >= 0, got bid=%v ask=%v", t.BidVolume, t.AskVolume)
	}
	return nil
}
