package telemetry

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/insightwire/insightwire-go/contracts"
	"github.com/insightwire/insightwire-go/lib"
)

// ErrUnknownTelemetryType is returned when CreateEnvelope receives a value
// outside the closed set of telemetry variants.
var ErrUnknownTelemetryType = errors.New("unknown telemetry type")

// CreateEnvelope converts one telemetry record into a wire envelope. The
// telemetry value is not modified; the returned envelope is owned by the
// caller until it is handed to the transport.
//
// ctx, cfg and op may all be nil: without a config the envelope gets an empty
// instrumentation key and the default sample rate, without a context or an
// active operation the respective tags are simply not set.
func CreateEnvelope(
	t Telemetry,
	commonProperties map[string]string,
	ctx *Context,
	cfg *lib.Config,
	op *Operation,
	logger logrus.FieldLogger,
) (*contracts.Envelope, error) {
	var domain contracts.Domain
	switch v := t.(type) {
	case *Trace:
		domain = traceData(v)
	case *Dependency:
		domain = dependencyData(v)
	case *Event:
		domain = eventData(v)
	case *Exception:
		domain = exceptionData(v)
	case *Request:
		domain = requestData(v)
	case *Metric:
		domain = metricData(v)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownTelemetryType, t)
	}

	baseType := domain.BaseType()
	applyProperties(domain, mergeProperties(t.properties(), commonProperties), logger)

	iKey := ""
	sampleRate := 100.0
	if cfg != nil {
		iKey = cfg.InstrumentationKey.String
		if cfg.SamplingPercentage.Valid {
			sampleRate = cfg.SamplingPercentage.Float64
		}
	}

	return &contracts.Envelope{
		Ver:        1,
		Name:       envelopeName(iKey, baseType),
		Time:       time.Now().UTC().Format(time.RFC3339Nano),
		SampleRate: sampleRate,
		IKey:       iKey,
		Tags:       resolveTags(ctx, t.tagOverrides(), op),
		Data:       &contracts.Data{BaseType: baseType, BaseData: domain},
	}, nil
}

// envelopeName derives the envelope name from the instrumentation key and the
// baseType discriminator. The baseType strings all end in "Data"; stripping
// the last four characters yields the short variant name.
func envelopeName(iKey, baseType string) string {
	short := baseType[:len(baseType)-4]
	key := strings.ReplaceAll(iKey, "-", "")
	if key == "" {
		return contracts.EnvelopeNamePrefix + "." + short
	}
	return contracts.EnvelopeNamePrefix + "." + key + "." + short
}

func traceData(t *Trace) *contracts.MessageData {
	severity := contracts.Information
	if t.Severity.Valid {
		severity = contracts.SeverityLevel(t.Severity.Int64)
	}
	return &contracts.MessageData{
		Ver:           2,
		Message:       t.Message,
		SeverityLevel: severity,
	}
}

func dependencyData(t *Dependency) *contracts.RemoteDependencyData {
	return &contracts.RemoteDependencyData{
		Ver:          2,
		Name:         t.Name,
		Data:         t.Data,
		Target:       t.Target,
		Type:         t.Type,
		Duration:     formatDuration(t.Duration),
		ResultCode:   t.ResultCode,
		Success:      t.Success,
		Measurements: t.Measurements,
	}
}

func eventData(t *Event) *contracts.EventData {
	return &contracts.EventData{
		Ver:          2,
		Name:         t.Name,
		Measurements: t.Measurements,
	}
}

func exceptionData(t *Exception) *contracts.ExceptionData {
	severity := contracts.Error
	if t.Severity.Valid {
		severity = contracts.SeverityLevel(t.Severity.Int64)
	}

	details := &contracts.ExceptionDetails{}
	if t.Error != nil {
		details.Message = t.Error.Error()
		details.TypeName = fmt.Sprintf("%T", t.Error)
	}
	details.ParsedStack, details.HasFullStack = parseStack(t.StackTrace)

	return &contracts.ExceptionData{
		Ver:           2,
		Exceptions:    []*contracts.ExceptionDetails{details},
		SeverityLevel: severity,
		Measurements:  t.Measurements,
	}
}

func requestData(t *Request) *contracts.RequestData {
	return &contracts.RequestData{
		Ver:          2,
		ID:           t.ID,
		Name:         t.Name,
		URL:          t.URL,
		Source:       t.Source,
		Duration:     formatDuration(t.Duration),
		ResponseCode: t.ResponseCode,
		Success:      t.Success,
		Measurements: t.Measurements,
	}
}

func metricData(t *Metric) *contracts.MetricData {
	point := &contracts.DataPoint{
		Name:   t.Name,
		Kind:   contracts.Aggregation,
		Value:  t.Value,
		Count:  1,
		Min:    t.Value,
		Max:    t.Value,
		StdDev: 0,
	}
	if t.Count.Valid {
		point.Count = int(t.Count.Int64)
	}
	if t.Min.Valid {
		point.Min = t.Min.Float64
	}
	if t.Max.Valid {
		point.Max = t.Max.Float64
	}
	if t.StdDev.Valid {
		point.StdDev = t.StdDev.Float64
	}
	return &contracts.MetricData{
		Ver:     2,
		Metrics: []*contracts.DataPoint{point},
	}
}

// mergeProperties combines a telemetry record's own property bag with the
// client-wide common properties. A key already present on the record is never
// overwritten; with no record properties the common set is taken wholesale.
func mergeProperties(raw map[string]any, common map[string]string) map[string]any {
	if raw == nil && common == nil {
		return nil
	}
	merged := make(map[string]any, len(raw)+len(common))
	for k, v := range raw {
		merged[k] = v
	}
	for k, v := range common {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return merged
}

// applyProperties sanitizes the merged property bag and attaches the result
// to the payload.
func applyProperties(domain contracts.Domain, merged map[string]any, logger logrus.FieldLogger) {
	if merged == nil {
		return
	}
	props, ok := SanitizeProperties(merged, logger)
	if !ok {
		return
	}
	switch d := domain.(type) {
	case *contracts.MessageData:
		d.Properties = props
	case *contracts.RemoteDependencyData:
		d.Properties = props
	case *contracts.EventData:
		d.Properties = props
	case *contracts.ExceptionData:
		d.Properties = props
	case *contracts.RequestData:
		d.Properties = props
	case *contracts.MetricData:
		d.Properties = props
	}
}
