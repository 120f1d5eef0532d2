// Package scheduler runs the event pipeline shared by the HTTP, CLI and MCP
// surfaces: extract a draft from a sentence, resolve attendee names, validate
// the draft and dispatch it to one or more users' calendars.
//
// Explain turns any error of the pipeline into a sentence naming the remedy.
package scheduler
