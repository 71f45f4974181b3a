// Package correlation carries the correlation identifier across service
// boundaries. It decides whether a target host is exempt from correlation,
// constructs the physical outbound request (proxy-aware, with a TLS-hardened
// connection pool for direct HTTPS), and merges the correlation header onto
// outbound calls without ever overriding an existing source marker.
package correlation
