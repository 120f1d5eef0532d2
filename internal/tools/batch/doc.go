// Package batch provides helpers for operations that fan out over several
// users, shared by the MCP tools, the HTTP API and the CLI.
//
// This package includes helpers for:
//   - Parsing parameters that accept both single values and arrays
//   - Turning per-user dispatch outcomes into results
//   - Formatting results with success and failure counts
package batch
