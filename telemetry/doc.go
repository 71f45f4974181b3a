// Package telemetry converts typed, in-process telemetry records into the
// canonical envelopes accepted by the ingestion service. The conversion is
// deterministic and side-effect free: every call reads its inputs, allocates a
// fresh envelope and never touches shared state, so it is safe to invoke
// concurrently from any number of request handlers.
package telemetry
