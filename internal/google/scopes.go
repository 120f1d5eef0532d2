package google

import (
	calendar "google.golang.org/api/calendar/v3"
)

// CalendarScopes are the scopes requested for every user.
//
// The scopes provide access to:
//   - Google Calendar events: read and write
//   - Google Calendar metadata: read-only (primary calendar name)
var CalendarScopes = []string{
	calendar.CalendarEventsScope,
	calendar.CalendarReadonlyScope,
}
