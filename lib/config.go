// Package lib holds the configuration surface shared by all other packages.
package lib

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mstoykov/envconfig"
	"gopkg.in/guregu/null.v3"

	"github.com/insightwire/insightwire-go/lib/types"
)

// DefaultEndpointURL is the ingestion endpoint envelopes are shipped to when
// no override is configured.
const DefaultEndpointURL = "https://dc.services.visualstudio.com/v2/track"

// Config holds everything the data-shaping core needs to know about the
// telemetry resource it serves: the instrumentation key, sampling, the
// correlation identity, and the outbound connection settings.
//
//nolint:lll
type Config struct {
	InstrumentationKey null.String `json:"instrumentationKey" envconfig:"INSIGHTWIRE_INSTRUMENTATION_KEY"`
	EndpointURL        null.String `json:"endpointUrl" envconfig:"INSIGHTWIRE_ENDPOINT_URL"`

	// SamplingPercentage is the share of generated telemetry intended to be
	// retained, 0-100. It is stamped on every envelope; the sampling decision
	// itself is not made here.
	SamplingPercentage null.Float `json:"samplingPercentage" envconfig:"INSIGHTWIRE_SAMPLING_PERCENTAGE"`

	// CorrelationID identifies this service instance in the correlation
	// header attached to outbound calls.
	CorrelationID null.String `json:"correlationId" envconfig:"INSIGHTWIRE_CORRELATION_ID"`

	// CorrelationHeaderExcludedDomains lists glob-like hostname patterns the
	// correlation header must never be sent to. `*` matches any substring.
	CorrelationHeaderExcludedDomains []string `json:"correlationHeaderExcludedDomains" envconfig:"INSIGHTWIRE_CORRELATION_HEADER_EXCLUDED_DOMAINS"`

	// LiteralDomainDots makes `.` in exclusion patterns match only a literal
	// dot. The historical matcher translated patterns into regular
	// expressions without escaping dots, so by default a dot matches any
	// character; flip this on for strict glob semantics.
	LiteralDomainDots null.Bool `json:"literalDomainDots" envconfig:"INSIGHTWIRE_LITERAL_DOMAIN_DOTS"`

	ProxyHTTPURL  null.String `json:"proxyHttpUrl" envconfig:"INSIGHTWIRE_PROXY_HTTP_URL"`
	ProxyHTTPSURL null.String `json:"proxyHttpsUrl" envconfig:"INSIGHTWIRE_PROXY_HTTPS_URL"`

	Timeout      types.NullDuration `json:"timeout" envconfig:"INSIGHTWIRE_TIMEOUT"`
	MaxBatchSize null.Int           `json:"maxBatchSize" envconfig:"INSIGHTWIRE_MAX_BATCH_SIZE"`
	NoCompress   null.Bool          `json:"noCompress" envconfig:"INSIGHTWIRE_NO_COMPRESS"`

	// Pre-built connection pools. When set they take precedence over the
	// process-wide hardened pool for the matching scheme.
	HTTPTransport  *http.Transport `json:"-" ignored:"true"`
	HTTPSTransport *http.Transport `json:"-" ignored:"true"`
}

// NewConfig creates a new Config instance with default values for some fields.
func NewConfig() Config {
	return Config{
		EndpointURL:        null.NewString(DefaultEndpointURL, false),
		SamplingPercentage: null.NewFloat(100, false),
		Timeout:            types.NewNullDuration(20*time.Second, false),
		MaxBatchSize:       null.NewInt(250, false),
	}
}

// Apply saves non-zero config values from the passed config in the receiver.
func (c Config) Apply(cfg Config) Config {
	if cfg.InstrumentationKey.Valid && cfg.InstrumentationKey.String != "" {
		c.InstrumentationKey = cfg.InstrumentationKey
	}
	if cfg.EndpointURL.Valid && cfg.EndpointURL.String != "" {
		c.EndpointURL = cfg.EndpointURL
	}
	if cfg.SamplingPercentage.Valid {
		c.SamplingPercentage = cfg.SamplingPercentage
	}
	if cfg.CorrelationID.Valid {
		c.CorrelationID = cfg.CorrelationID
	}
	if len(cfg.CorrelationHeaderExcludedDomains) > 0 {
		c.CorrelationHeaderExcludedDomains = cfg.CorrelationHeaderExcludedDomains
	}
	if cfg.LiteralDomainDots.Valid {
		c.LiteralDomainDots = cfg.LiteralDomainDots
	}
	if cfg.ProxyHTTPURL.Valid {
		c.ProxyHTTPURL = cfg.ProxyHTTPURL
	}
	if cfg.ProxyHTTPSURL.Valid {
		c.ProxyHTTPSURL = cfg.ProxyHTTPSURL
	}
	if cfg.Timeout.Valid {
		c.Timeout = cfg.Timeout
	}
	if cfg.MaxBatchSize.Valid {
		c.MaxBatchSize = cfg.MaxBatchSize
	}
	if cfg.NoCompress.Valid {
		c.NoCompress = cfg.NoCompress
	}
	if cfg.HTTPTransport != nil {
		c.HTTPTransport = cfg.HTTPTransport
	}
	if cfg.HTTPSTransport != nil {
		c.HTTPSTransport = cfg.HTTPSTransport
	}
	return c
}

// GetConsolidatedConfig combines the default config values with the JSON
// config values and environment variables and returns the final result.
func GetConsolidatedConfig(jsonRawConf json.RawMessage, env map[string]string) (Config, error) {
	result := NewConfig()
	if jsonRawConf != nil {
		jsonConf := Config{}
		if err := json.Unmarshal(jsonRawConf, &jsonConf); err != nil {
			return result, err
		}
		result = result.Apply(jsonConf)
	}

	envConfig := Config{}
	if err := envconfig.Process("", &envConfig, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}); err != nil {
		return result, err
	}
	result = result.Apply(envConfig)

	return result, nil
}
