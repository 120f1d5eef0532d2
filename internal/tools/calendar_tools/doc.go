// Package calendar_tools exposes quickcal's scheduling pipeline as MCP
// (Model Context Protocol) tools.
//
// Tools:
//   - calendar_auth_url: link that starts the Google authorization for a user
//   - calendar_whoami: the user's primary calendar
//   - calendar_create_event: create an event from structured fields
//   - calendar_parse_event: turn a sentence into a draft without creating it
//   - calendar_quick_add: turn a sentence into an event and create it
//
// Event tools act for one or more users; every user gets their own result
// and a failure for one user never affects the others.
package calendar_tools
