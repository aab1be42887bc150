package decode

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz/lzma"

	"github.com/LimeMojito/trading-data-stream/internal/model"
)

func encodeRecord(msOffset, askPoints, bidPoints uint32, askVol, bidVol float32) []byte {
	buf := make([]byte, recordSize)
	binary.BigEndian.PutUint32(buf[0:4], msOffset)
	binary.BigEndian.PutUint32(buf[4:8], askPoints)
	binary.BigEndian.PutUint32(buf[8:12], bidPoints)
	binary.BigEndian.PutUint32(buf[12:16], math.Float32bits(askVol))
	binary.BigEndian.PutUint32(buf[16:20], math.Float32bits(bidVol))
	return buf
}

func compress(t *testing.T, raw []byte) []byte {
	t.Helper()
	var out bytes.Buffer
	w, err := lzma.NewWriter(&out)
	require.NoError(t, err)
	_, err = w.Write(raw)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return out.Bytes()
}

func TestDukascopy_Decode(t *testing.T) {
	var raw bytes.Buffer
	raw.Write(encodeRecord(0, 109875, 109870, 1.5, 2.0))
	raw.Write(encodeRecord(1500, 109880, 109875, 1.2, 1.8))

	payload := compress(t, raw.Bytes())
	hourStart := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

	d := NewDukascopy()
	ticks, err := d.Decode("EURUSD", hourStart, payload, uuid.Nil, model.Historical)
	require.NoError(t, err)
	require.Len(t, ticks, 2)

	require.Equal(t, hourStart.UnixMilli(), ticks[0].TimestampMillis)
	require.Equal(t, hourStart.UnixMilli()+1500, ticks[1].TimestampMillis)
	require.Equal(t, int64(109870), ticks[0].BidPoints)
	require.Equal(t, model.Historical, ticks[0].Source)
}

func TestDukascopy_Decode_Empty(t *testing.T) {
	d := NewDukascopy()
	ticks, err := d.Decode("EURUSD", time.Now(), nil, uuid.Nil, model.Live)
	require.NoError(t, err)
	require.Empty(t, ticks)
}
