// Package transport ships assembled envelopes to the ingestion service. It is
// a thin retrying HTTP client: batching policy, disk persistence and sampling
// all happen before envelopes reach it.
package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"

	"github.com/insightwire/insightwire-go/contracts"
	"github.com/insightwire/insightwire-go/correlation"
	"github.com/insightwire/insightwire-go/lib"
)

const (
	// RequestTimeout is the default ingestion request timeout.
	RequestTimeout = 20 * time.Second
	// RetryInterval is the default ingestion request retry interval.
	RetryInterval = 500 * time.Millisecond
	// MaxRetries specifies max retry attempts.
	MaxRetries = 3

	defaultMaxBatchSize = 250
)

// Client handles communication with the ingestion service.
type Client struct {
	client        *http.Client
	cfg           *lib.Config
	endpoint      string
	maxBatchSize  int
	noCompress    bool
	sharedPool    *http.Transport
	logger        logrus.FieldLogger
	retries       int
	retryInterval time.Duration

	pushBufferPool sync.Pool
}

// NewClient returns a new client for the ingestion service. A nil config gets
// the defaults.
func NewClient(logger logrus.FieldLogger, cfg *lib.Config) *Client {
	if cfg == nil {
		defaults := lib.NewConfig()
		cfg = &defaults
	}

	endpoint := cfg.EndpointURL.String
	if endpoint == "" {
		endpoint = lib.DefaultEndpointURL
	}
	timeout := RequestTimeout
	if cfg.Timeout.Valid {
		timeout = cfg.Timeout.TimeDuration()
	}
	maxBatchSize := defaultMaxBatchSize
	if cfg.MaxBatchSize.Valid && cfg.MaxBatchSize.Int64 > 0 {
		maxBatchSize = int(cfg.MaxBatchSize.Int64)
	}

	return &Client{
		client:        &http.Client{Timeout: timeout},
		cfg:           cfg,
		endpoint:      endpoint,
		maxBatchSize:  maxBatchSize,
		noCompress:    cfg.NoCompress.Bool,
		sharedPool:    correlation.NewHardenedTransport(),
		logger:        logger,
		retries:       MaxRetries,
		retryInterval: RetryInterval,
		pushBufferPool: sync.Pool{
			New: func() any {
				return &bytes.Buffer{}
			},
		},
	}
}

// ItemError describes the rejection of a single envelope in a batch.
type ItemError struct {
	Index      int    `json:"index"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// TrackResponse is the ingestion service's per-batch accounting.
type TrackResponse struct {
	ItemsReceived int         `json:"itemsReceived"`
	ItemsAccepted int         `json:"itemsAccepted"`
	Errors        []ItemError `json:"errors"`
}

// SendEnvelopes ships the given envelopes, splitting them into batches of at
// most the configured size. Partially accepted batches are logged per
// rejected item but do not fail the call.
func (c *Client) SendEnvelopes(envelopes []*contracts.Envelope) error {
	for start := 0; start < len(envelopes); start += c.maxBatchSize {
		end := start + c.maxBatchSize
		if end > len(envelopes) {
			end = len(envelopes)
		}
		if err := c.push(envelopes[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) push(batch []*contracts.Envelope) error {
	buf := c.pushBufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer c.pushBufferPool.Put(buf)

	if err := encodeEnvelopes(buf, batch, !c.noCompress); err != nil {
		return err
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/x-json-stream")
	if !c.noCompress {
		header.Set("Content-Encoding", "gzip")
	}

	body := buf.Bytes()
	out, err := correlation.BuildOutboundRequest(c.cfg, c.sharedPool, c.endpoint, correlation.RequestOptions{
		Method: http.MethodPost,
		Header: header,
		Body:   bytes.NewReader(body),
	}, c.logger)
	if err != nil {
		return err
	}
	req := out.Req
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}

	var track TrackResponse
	if err := c.do(req, out.Transport, &track); err != nil {
		return err
	}

	for _, itemErr := range track.Errors {
		c.logger.WithFields(logrus.Fields{
			"index":      itemErr.Index,
			"statusCode": itemErr.StatusCode,
		}).Warn("envelope rejected by the ingestion service: " + itemErr.Message)
	}
	return nil
}

// do dispatches the request, retrying transient failures with the configured
// interval and rewinding the body between attempts.
func (c *Client) do(req *http.Request, pool *http.Transport, v any) error {
	client := c.client
	if pool != nil {
		client = &http.Client{Timeout: c.client.Timeout, Transport: pool}
	}

	var err error
	for i := 1; i <= c.retries; i++ {
		var retry bool
		retry, err = c.doOnce(client, req, v, i)
		if !retry {
			return err
		}
		time.Sleep(c.retryInterval)
		if req.GetBody != nil {
			req.Body, _ = req.GetBody()
		}
	}
	return err
}

func (c *Client) doOnce(client *http.Client, req *http.Request, v any, attempt int) (retry bool, err error) {
	resp, err := client.Do(req)
	defer func() {
		if resp != nil {
			if cerr := resp.Body.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}()

	if shouldRetry(resp, err, attempt, c.retries) {
		return true, err
	}
	if err != nil {
		return false, err
	}
	if err = checkResponse(resp); err != nil {
		return false, err
	}

	if v != nil {
		if err = json.NewDecoder(resp.Body).Decode(v); err == io.EOF {
			err = nil // ignore EOF from empty body
		}
	}
	return false, err
}

func checkResponse(r *http.Response) error {
	if c := r.StatusCode; c >= 200 && c <= 299 {
		return nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	var track TrackResponse
	if err := json.Unmarshal(data, &track); err == nil && track.ItemsReceived > 0 {
		return fmt.Errorf("ingestion service rejected the batch: %d/%d items accepted (HTTP %d)",
			track.ItemsAccepted, track.ItemsReceived, r.StatusCode)
	}
	return fmt.Errorf("unexpected HTTP error from %s: %d %s",
		r.Request.URL, r.StatusCode, http.StatusText(r.StatusCode))
}

func shouldRetry(resp *http.Response, err error, attempt, maxAttempts int) bool {
	if attempt >= maxAttempts {
		return false
	}
	if resp == nil || err != nil {
		return true
	}
	return resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
}

// encodeEnvelopes writes the batch as newline-delimited JSON, optionally
// gzip-compressed.
func encodeEnvelopes(w io.Writer, batch []*contracts.Envelope, compress bool) error {
	var out io.Writer = w
	var gz *gzip.Writer
	if compress {
		gz = gzip.NewWriter(w)
		out = gz
	}

	enc := json.NewEncoder(out)
	for _, envelope := range batch {
		if err := enc.Encode(envelope); err != nil {
			return err
		}
	}
	if gz != nil {
		return gz.Close()
	}
	return nil
}
