package correlation

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/insightwire/insightwire-go/lib"
)

const (
	// RequestContextHeader carries comma-separated key=value components
	// identifying the services an operation has passed through.
	RequestContextHeader = "Request-Context"

	// RequestContextSourceKey is the reserved component key identifying the
	// emitting service.
	RequestContextSourceKey = "appId"
)

// AttachHeader merges the configured correlation identity into the outbound
// Request-Context header. raw is the existing inbound header value in
// whatever shape the caller has it: absent (nil), a single string, a
// multi-valued []string, or anything else stringifiable. The merge is
// append-only: if a source-identity component is already present the header
// is left unchanged, so re-running AttachHeader on its own output is a no-op.
func AttachHeader(cfg *lib.Config, hdr http.Header, raw any, logger logrus.FieldLogger) {
	if cfg == nil || cfg.CorrelationID.String == "" {
		return
	}
	correlationID := cfg.CorrelationID.String

	existing := ""
	if raw != nil {
		s, err := stringifyHeaderValue(raw)
		if err != nil {
			logger.WithError(err).Warn("could not serialize inbound correlation header, treating it as absent")
		} else {
			existing = s
		}
	}

	sourceComponent := RequestContextSourceKey + "=" + correlationID
	if existing == "" {
		hdr.Set(RequestContextHeader, sourceComponent)
		return
	}

	prefix := RequestContextSourceKey + "="
	for _, component := range strings.Split(existing, ",") {
		if strings.HasPrefix(component, prefix) {
			// first writer wins
			hdr.Set(RequestContextHeader, existing)
			return
		}
	}
	hdr.Set(RequestContextHeader, existing+","+sourceComponent)
}

// stringifyHeaderValue coerces an inbound header value to a single string. A
// panicking String method is reported as an error rather than propagated.
func stringifyHeaderValue(raw any) (s string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("header value stringification panicked: %v", r)
		}
	}()

	switch v := raw.(type) {
	case string:
		return v, nil
	case []string:
		return strings.Join(v, ","), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}
