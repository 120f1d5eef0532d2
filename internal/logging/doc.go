// Package logging provides structured logging utilities for quickcal.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Logger construction from a level and format (Setup)
//   - Consistent attribute naming across the codebase
//   - Token masking so grant material never reaches the logs
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "event.dispatch")
//	logger.Info("event created",
//	    logging.User("alice"),
//	    logging.Status(logging.StatusSuccess))
//
// # Security Considerations
//
// Access and refresh tokens are never logged directly; use SanitizeToken.
package logging
