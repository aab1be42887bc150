package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

const modelVersion = "1.0"

// barWire is the §6 JSON wire schema for a Bar. modelVersion is emitted on
// write and ignored on read.
type barWire struct {
	StartMillisecondsUtc int64  `json:"startMillisecondsUtc"`
	StreamID             string `json:"streamId"`
	Period               string `json:"period"`
	Symbol               string `json:"symbol"`
	Open                 int64  `json:"open"`
	High                 int64  `json:"high"`
	Low                  int64  `json:"low"`
	Close                int64  `json:"close"`
	Source               string `json:"source"`
	ModelVersion         string `json:"modelVersion"`
}

// MarshalJSON writes the §6 wire schema.
func (b Bar) MarshalJSON() ([]byte, error) {
	return json.Marshal(barWire{
		StartMillisecondsUtc: b.StartMillis,
		StreamID:             b.StreamID.String(),
		Period:               b.Period.String(),
		Symbol:               b.Symbol,
		Open:                 b.Open,
		High:                 b.High,
		Low:                  b.Low,
		Close:                b.Close,
		Source:               b.Source.String(),
		ModelVersion:         modelVersion,
	})
}

// UnmarshalJSON reads the §6 wire schema; modelVersion is ignored.
func (b *Bar) UnmarshalJSON(data []byte) error {
	var w barWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	streamID, err := uuid.Parse(w.StreamID)
	if err != nil {
		return fmt.Errorf("bar streamId %q: %w", w.StreamID, err)
	}
	period, ok := ParsePeriod(w.Period)
	if !ok {
		return fmt.Errorf("bar period %q unrecognized", w.Period)
	}
	source, ok := ParseOrigin(w.Source)
	if !ok {
		return fmt.Errorf("bar source %q unrecognized", w.Source)
	}
	*b = Bar{
		StartMillis: w.StartMillisecondsUtc,
		StreamID:    streamID,
		Period:      period,
		Symbol:      w.Symbol,
		Open:        w.Open,
		High:        w.High,
		Low:         w.Low,
		Close:       w.Close,
		Source:      source,
	}
	return nil
}
