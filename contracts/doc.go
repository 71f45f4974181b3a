// Package contracts holds the wire-format data contracts accepted by the
// ingestion service - the Envelope wrapper, the per-variant baseData payloads,
// and the well-known context tag keys. The structs here are plain
// JSON-serializable values with no behavior beyond naming; all shaping logic
// lives in the telemetry package.
package contracts
