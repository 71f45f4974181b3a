package lib

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	assert.False(t, cfg.EndpointURL.Valid)
	assert.Equal(t, DefaultEndpointURL, cfg.EndpointURL.String)
	assert.False(t, cfg.SamplingPercentage.Valid)
	assert.Equal(t, 100.0, cfg.SamplingPercentage.Float64)
	assert.Equal(t, 20*time.Second, cfg.Timeout.TimeDuration())
	assert.Equal(t, int64(250), cfg.MaxBatchSize.Int64)
}

func TestConfigApply(t *testing.T) {
	t.Parallel()

	cfg := NewConfig().Apply(Config{
		InstrumentationKey: null.StringFrom("ikey"),
		SamplingPercentage: null.FloatFrom(25),
	})
	assert.Equal(t, "ikey", cfg.InstrumentationKey.String)
	assert.Equal(t, 25.0, cfg.SamplingPercentage.Float64)
	// untouched fields keep their defaults
	assert.Equal(t, DefaultEndpointURL, cfg.EndpointURL.String)

	// empty strings do not clobber previous values
	cfg = cfg.Apply(Config{InstrumentationKey: null.StringFrom("")})
	assert.Equal(t, "ikey", cfg.InstrumentationKey.String)
}

func TestGetConsolidatedConfig(t *testing.T) {
	t.Parallel()

	rawJSON := json.RawMessage(`{
		"instrumentationKey": "ikey-json",
		"samplingPercentage": 50,
		"timeout": "30s"
	}`)
	env := map[string]string{
		"INSIGHTWIRE_INSTRUMENTATION_KEY":                 "ikey-env",
		"INSIGHTWIRE_CORRELATION_HEADER_EXCLUDED_DOMAINS": "*.a.com,bing.com",
	}

	cfg, err := GetConsolidatedConfig(rawJSON, env)
	require.NoError(t, err)

	// environment beats JSON, JSON beats defaults
	assert.Equal(t, "ikey-env", cfg.InstrumentationKey.String)
	assert.Equal(t, 50.0, cfg.SamplingPercentage.Float64)
	assert.Equal(t, 30*time.Second, cfg.Timeout.TimeDuration())
	assert.Equal(t, []string{"*.a.com", "bing.com"}, cfg.CorrelationHeaderExcludedDomains)
}

func TestGetConsolidatedConfigInvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := GetConsolidatedConfig(json.RawMessage(`{"timeout": "soon"}`), nil)
	assert.Error(t, err)

	_, err = GetConsolidatedConfig(json.RawMessage(`not json`), nil)
	assert.Error(t, err)
}

func TestGetConsolidatedConfigNoSources(t *testing.T) {
	t.Parallel()

	cfg, err := GetConsolidatedConfig(nil, nil)
	require.NoError(t, err)
	assert.False(t, cfg.InstrumentationKey.Valid)
	assert.Equal(t, DefaultEndpointURL, cfg.EndpointURL.String)
}
