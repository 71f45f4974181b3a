package correlation

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/insightwire/insightwire-go/lib"
)

// RequestOptions carries the caller-controlled parts of an outbound request.
type RequestOptions struct {
	Method string // defaults to GET
	Header http.Header
	Body   io.Reader
}

// OutboundRequest pairs a constructed request with the connection pool it
// must be dispatched on. A nil Transport means the caller's default pool.
type OutboundRequest struct {
	Req       *http.Request
	Transport *http.Transport
}

// NewHardenedTransport returns the connection pool used for direct HTTPS
// destinations. It refuses protocol versions below TLS 1.2. Construct it once
// at startup and pass it to every BuildOutboundRequest call; it is never
// mutated afterwards, so concurrent reuse needs no synchronization.
func NewHardenedTransport() *http.Transport {
	return &http.Transport{
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	}
}

// BuildOutboundRequest constructs the physical request for targetURL.
// Protocol-relative targets ("//host/path") are normalized to HTTPS. When a
// proxy is configured for the target's scheme, the request is re-pointed at
// the proxy in absolute-URI form with the Host header pinned to the original
// target; a proxy that itself requires HTTPS is unsupported and falls back to
// a direct connection. Pool precedence: an explicit pool from the config,
// then the shared hardened pool for direct HTTPS, then none.
//
// Construction is pure computation: nothing is dialed and no I/O happens
// until the caller dispatches the request.
func BuildOutboundRequest(
	cfg *lib.Config,
	shared *http.Transport,
	targetURL string,
	opts RequestOptions,
	logger logrus.FieldLogger,
) (*OutboundRequest, error) {
	if strings.HasPrefix(targetURL, "//") {
		targetURL = "https:" + targetURL
	}
	target, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid target url: %w", err)
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequest(method, target.String(), opts.Body) //nolint:noctx
	if err != nil {
		return nil, err
	}
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	proxyRaw := ""
	if cfg != nil {
		switch target.Scheme {
		case "https":
			proxyRaw = cfg.ProxyHTTPSURL.String
		case "http":
			proxyRaw = cfg.ProxyHTTPURL.String
		}
	}

	proxied := false
	if proxyRaw != "" {
		if strings.HasPrefix(proxyRaw, "//") {
			proxyRaw = "http:" + proxyRaw
		}
		proxy, perr := url.Parse(proxyRaw)
		if perr != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", perr)
		}
		if proxy.Scheme == "https" {
			logger.WithField("proxy", proxyRaw).Info(
				"proxies that require HTTPS are not supported, using a direct connection")
		} else {
			proxied = true
			host := proxy.Host
			if proxy.Port() == "" {
				host = net.JoinHostPort(proxy.Hostname(), "80")
			}
			// Absolute-URI request line through the proxy; the Host header
			// stays pinned to the original target.
			req.URL = &url.URL{Scheme: "http", Host: host, Opaque: target.String()}
			req.Host = target.Hostname()
		}
	}

	isHTTPS := target.Scheme == "https" && !proxied
	var pool *http.Transport
	switch {
	case isHTTPS && cfg != nil && cfg.HTTPSTransport != nil:
		pool = cfg.HTTPSTransport
	case !isHTTPS && cfg != nil && cfg.HTTPTransport != nil:
		pool = cfg.HTTPTransport
	case isHTTPS:
		pool = shared
	}

	return &OutboundRequest{Req: req, Transport: pool}, nil
}
