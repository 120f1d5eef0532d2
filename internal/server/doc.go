// Package server provides the shared server context and the HTTP surface of
// quickcal.
//
// # Key Components
//
// ServerContext holds the scheduling pipeline, the authorization manager and
// the instrumentation shared by the HTTP server and the MCP tools.
//
// HTTPServer is a chi router serving:
//   - GET /auth/{user}: redirect to Google's consent screen
//   - GET /oauth2/callback/{user}: finish the handshake and store the grant
//   - GET /whoami/{user}: the user's primary calendar
//   - POST /api/events, /api/events/parse, /api/events/quick: the event API
//   - GET /healthz, /readyz: liveness and readiness probes
//
// Authorization routes and the event API are rate limited per client IP.
//
// MetricsServer exposes Prometheus metrics on a separate port.
package server
