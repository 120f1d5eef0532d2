// Package cmd implements the command-line interface for quickcal.
//
// This package provides the following commands:
//   - serve: Start the HTTP server for authorization and event creation
//   - mcp: Start the MCP server on stdio for AI assistants
//   - whoami: Show the primary calendar of an authorized user
//   - event create|parse|quick: Create events from fields or a sentence
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
