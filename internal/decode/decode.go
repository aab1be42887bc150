// Package decode implements the tick binary decoder boundary (spec §4.G):
// given one hourly archive's raw bytes, produce an ordered sequence of
// ticks for (symbol, hourStart). The Decoder interface is the real
// contract; Dukascopy is one concrete implementation of it.
package decode

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/ulikunitz/xz/lzma"

	"github.com/LimeMojito/trading-data-stream/internal/errs"
	"github.com/LimeMojito/trading-data-stream/internal/model"
)

// Decoder decodes one hour of packed ticks into an ordered tick sequence.
// Implementations must guarantee non-decreasing timestamps, all falling in
// [hourStart, hourStart+1h).
type Decoder interface {
	Decode(symbol string, hourStart time.Time, raw []byte, streamID uuid.UUID, source model.Origin) ([]model.Tick, error)
}

const recordSize = 20 // msOffset(4) + askPoints(4) + bidPoints(4) + askVolume(4) + bidVolume(4)

// Dukascopy decodes the vendor's historical .bi5 format: an LZMA-compressed
// stream of fixed 20-byte big-endian records.
type Dukascopy struct{}

// NewDukascopy constructs the vendor .bi5 decoder.
func NewDukascopy() *Dukascopy { return &Dukascopy{} }

func (Dukascopy) Decode(symbol string, hourStart time.Time, raw []byte, streamID uuid.UUID, source model.Origin) ([]model.Tick, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	reader, err := lzma.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, errs.Wrap(errs.Io, err, "decode .bi5 payload for %s at %s", symbol, hourStart)
	}

	decompressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, errs.Wrap(errs.Io, err, "read decompressed .bi5 payload for %s at %s", symbol, hourStart)
	}
	if len(decompressed)%recordSize != 0 {
		return nil, errs.New(errs.Io, "corrupt .bi5 payload for %s at %s: %d bytes not a multiple of %d",
			symbol, hourStart, len(decompressed), recordSize)
	}

	hourStartMillis := hourStart.UTC().UnixMilli()
	count := len(decompressed) / recordSize
	ticks := make([]model.Tick, 0, count)

	for i := 0; i < count; i++ {
		rec := decompressed[i*recordSize : (i+1)*recordSize]
		msOffset := binary.BigEndian.Uint32(rec[0:4])
		askPoints := binary.BigEndian.Uint32(rec[4:8])
		bidPoints := binary.BigEndian.Uint32(rec[8:12])
		askVolume := bytesToFloat32(rec[12:16])
		bidVolume := bytesToFloat32(rec[16:20])

		ticks = append(ticks, model.Tick{
			TimestampMillis: hourStartMillis + int64(msOffset),
			Symbol:          symbol,
			StreamID:        streamID,
			BidPoints:       int64(bidPoints),
			AskPoints:       int64(askPoints),
			BidVolume:       bidVolume,
			AskVolume:       askVolume,
			Source:          source,
		})
	}

	if err := verifyOrdering(ticks); err != nil {
		return nil, err
	}
	return ticks, nil
}

func verifyOrdering(ticks []model.Tick) error {
	for i := 1; i < len(ticks); i++ {
		if ticks[i].TimestampMillis < ticks[i-1].TimestampMillis {
			return errs.New(errs.Io, "decoded tick stream out of order at index %d", i)
		}
	}
	return nil
}

func bytesToFloat32(b []byte) float32 {
	bits := binary.BigEndian.Uint32(b)
	return math.Float32frombits(bits)
}
