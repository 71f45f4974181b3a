package telemetry

import (
	"time"

	"gopkg.in/guregu/null.v3"

	"github.com/insightwire/insightwire-go/contracts"
)

// SDKVersion is reported in the ai.internal.sdkVersion context tag.
const SDKVersion = "0.1.0"

// Operation is the ambient correlation context describing the logical
// operation currently executing. It is consumed read-only; a nil *Operation
// means no operation is active.
type Operation struct {
	ID       string
	Name     string
	ParentID string
}

// Context carries the default context tags envelopes inherit. Per-call tag
// overrides always win over these defaults.
type Context struct {
	Tags map[string]string
}

// NewContext returns a Context pre-populated with the SDK identity tag.
func NewContext() *Context {
	return &Context{Tags: map[string]string{
		contracts.InternalSDKVersion: "insightwire-go:" + SDKVersion,
	}}
}

// Telemetry is the closed set of records CreateEnvelope accepts: *Trace,
// *Dependency, *Event, *Exception, *Request and *Metric.
type Telemetry interface {
	tagOverrides() map[string]string
	properties() map[string]any
}

// Common holds the fields shared by every telemetry variant.
type Common struct {
	// Properties is an arbitrary bag of custom dimensions. Values are
	// sanitized into strings during envelope assembly.
	Properties map[string]any

	// TagOverrides replaces context-default tags on the produced envelope.
	TagOverrides map[string]string
}

func (c Common) tagOverrides() map[string]string { return c.TagOverrides }
func (c Common) properties() map[string]any      { return c.Properties }

// Trace is a free-form log statement.
type Trace struct {
	Common
	Message string
	// Severity of the statement; Information when unset.
	Severity null.Int
}

// Dependency describes a call from the instrumented process to an external
// component.
type Dependency struct {
	Common
	Name         string
	Data         string
	Target       string
	Type         string
	Duration     time.Duration
	ResultCode   string
	Success      bool
	Measurements map[string]float64
}

// Event is a named custom event.
type Event struct {
	Common
	Name         string
	Measurements map[string]float64
}

// Exception describes a handled or unhandled error together with its raw
// stack trace.
type Exception struct {
	Common
	Error      error
	StackTrace string
	// Severity of the exception; Error when unset.
	Severity     null.Int
	Measurements map[string]float64
}

// Request describes one incoming request handled by the instrumented process.
type Request struct {
	Common
	ID           string
	Name         string
	URL          string
	Source       string
	Duration     time.Duration
	ResponseCode string
	Success      bool
	Measurements map[string]float64
}

// Metric is a single pre-aggregated metric sample.
type Metric struct {
	Common
	Name  string
	Value float64
	// Count defaults to 1, Min and Max to the sample value, StdDev to 0.
	Count  null.Int
	Min    null.Float
	Max    null.Float
	StdDev null.Float
}
