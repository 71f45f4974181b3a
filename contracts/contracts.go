package contracts

// EnvelopeNamePrefix is the fixed prefix every envelope name starts with.
const EnvelopeNamePrefix = "Microsoft.ApplicationInsights"

// Envelope is the canonical wrapper around one telemetry item. One telemetry
// record produces exactly one Envelope; the envelope is owned by the assembly
// call until it is handed to the transport.
type Envelope struct {
	Ver        int               `json:"ver"`
	Name       string            `json:"name"`
	Time       string            `json:"time"`
	SampleRate float64           `json:"sampleRate"`
	IKey       string            `json:"iKey"`
	Tags       map[string]string `json:"tags,omitempty"`
	Data       *Data             `json:"data"`
}

// Data carries the typed payload of an envelope together with the baseType
// discriminator the ingestion service dispatches on.
type Data struct {
	BaseType string `json:"baseType"`
	BaseData Domain `json:"baseData"`
}

// Domain is implemented by every baseData payload type.
type Domain interface {
	// BaseType returns the discriminator string for the payload, e.g.
	// "MessageData". Stripping the trailing "Data" yields the short name
	// used in the envelope name.
	BaseType() string
}

// SeverityLevel defines the importance of a trace or an exception.
type SeverityLevel int

// Severity levels, ordered from chattiest to most severe.
const (
	Verbose SeverityLevel = iota
	Information
	Warning
	Error
	Critical
)

// MessageData represents a free-form trace statement.
type MessageData struct {
	Ver           int               `json:"ver"`
	Message       string            `json:"message"`
	SeverityLevel SeverityLevel     `json:"severityLevel"`
	Properties    map[string]string `json:"properties,omitempty"`
}

// BaseType implements Domain.
func (MessageData) BaseType() string { return "MessageData" }

// RemoteDependencyData represents a call from the instrumented process to an
// external component - an HTTP request, a database command, etc.
type RemoteDependencyData struct {
	Ver          int                `json:"ver"`
	Name         string             `json:"name"`
	ID           string             `json:"id,omitempty"`
	ResultCode   string             `json:"resultCode"`
	Duration     string             `json:"duration"`
	Success      bool               `json:"success"`
	Data         string             `json:"data,omitempty"`
	Target       string             `json:"target,omitempty"`
	Type         string             `json:"type,omitempty"`
	Properties   map[string]string  `json:"properties,omitempty"`
	Measurements map[string]float64 `json:"measurements,omitempty"`
}

// BaseType implements Domain.
func (RemoteDependencyData) BaseType() string { return "RemoteDependencyData" }

// EventData represents a named custom event with optional dimensions and
// metrics attached.
type EventData struct {
	Ver          int                `json:"ver"`
	Name         string             `json:"name"`
	Properties   map[string]string  `json:"properties,omitempty"`
	Measurements map[string]float64 `json:"measurements,omitempty"`
}

// BaseType implements Domain.
func (EventData) BaseType() string { return "EventData" }

// ExceptionData represents a handled or unhandled exception.
type ExceptionData struct {
	Ver           int                 `json:"ver"`
	Exceptions    []*ExceptionDetails `json:"exceptions"`
	SeverityLevel SeverityLevel       `json:"severityLevel"`
	Properties    map[string]string   `json:"properties,omitempty"`
	Measurements  map[string]float64  `json:"measurements,omitempty"`
}

// BaseType implements Domain.
func (ExceptionData) BaseType() string { return "ExceptionData" }

// ExceptionDetails describes one exception in a chain of inner/outer
// exceptions.
type ExceptionDetails struct {
	TypeName     string        `json:"typeName"`
	Message      string        `json:"message"`
	HasFullStack bool          `json:"hasFullStack"`
	ParsedStack  []*StackFrame `json:"parsedStack,omitempty"`
}

// StackFrame is a single parsed stack-trace line. SizeInBytes is bookkeeping
// for the serialized-size budget and is never put on the wire.
type StackFrame struct {
	Level    int    `json:"level"`
	Method   string `json:"method"`
	Assembly string `json:"assembly,omitempty"`
	FileName string `json:"fileName,omitempty"`
	Line     int    `json:"line"`

	SizeInBytes int `json:"-"`
}

// RequestData represents one incoming request handled by the instrumented
// process.
type RequestData struct {
	Ver          int                `json:"ver"`
	ID           string             `json:"id"`
	Source       string             `json:"source,omitempty"`
	Name         string             `json:"name"`
	Duration     string             `json:"duration"`
	ResponseCode string             `json:"responseCode"`
	Success      bool               `json:"success"`
	URL          string             `json:"url,omitempty"`
	Properties   map[string]string  `json:"properties,omitempty"`
	Measurements map[string]float64 `json:"measurements,omitempty"`
}

// BaseType implements Domain.
func (RequestData) BaseType() string { return "RequestData" }

// DataPointType distinguishes single measurements from pre-aggregated values.
type DataPointType int

// Data point types.
const (
	Measurement DataPointType = iota
	Aggregation
)

// DataPoint is a single metric sample or aggregate within MetricData.
type DataPoint struct {
	Name   string        `json:"name"`
	Kind   DataPointType `json:"kind"`
	Value  float64       `json:"value"`
	Count  int           `json:"count"`
	Min    float64       `json:"min"`
	Max    float64       `json:"max"`
	StdDev float64       `json:"stdDev"`
}

// MetricData represents a set of metric data points.
type MetricData struct {
	Ver        int               `json:"ver"`
	Metrics    []*DataPoint      `json:"metrics"`
	Properties map[string]string `json:"properties,omitempty"`
}

// BaseType implements Domain.
func (MetricData) BaseType() string { return "MetricData" }
