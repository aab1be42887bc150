package tradingdatastream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LimeMojito/trading-data-stream/internal/config"
	"github.com/LimeMojito/trading-data-stream/internal/model"
)

func TestNew_LocalOnlyChain(t *testing.T) {
	cfg := &config.Config{
		Cache: config.CacheConfig{LocalCacheRoot: t.TempDir()},
	}

	client, err := New(cfg)
	require.NoError(t, err)
	assert.NotNil(t, client.Search)
	assert.NotNil(t, client.ByteCache)
	assert.NotNil(t, client.BarCache)
	assert.NotNil(t, client.Primer)
}

func TestNew_SetsBeginningOfTimeFromConfig(t *testing.T) {
	cfg := &config.Config{
		Cache:  config.CacheConfig{LocalCacheRoot: t.TempDir()},
		Search: config.SearchConfig{BeginningOfTime: "2021-06-01T00:00:00Z"},
	}

	client, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2021, client.Search.BeginningOfTime().Year())
}

func TestClient_Stats_Combines(t *testing.T) {
	cfg := &config.Config{Cache: config.CacheConfig{LocalCacheRoot: t.TempDir()}}
	client, err := New(cfg)
	require.NoError(t, err)

	agg := client.Stats()
	require.NotNil(t, agg)
}

func TestNewAggregator(t *testing.T) {
	a := NewAggregator(model.H1, aggregatorNoopNotifier{})
	require.NotNil(t, a)
}

type aggregatorNoopNotifier struct{}

func (aggregatorNoopNotifier) OnBar(model.Bar) {}
func (aggregatorNoopNotifier) Flush()          {}
