package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// PrimaryCalendarID addresses the authenticated user's primary calendar.
const PrimaryCalendarID = "primary"

// SendUpdatesAll asks Google to email every attendee the invitation.
const SendUpdatesAll = "all"

// EventInput represents the input for creating a calendar event
type EventInput struct {
	Summary string
	Start   time.Time
	End     time.Time
	// TimeZone is an IANA name; empty keeps the offset carried by Start/End.
	TimeZone  string
	Attendees []string

	// SendUpdates is passed through as the sendUpdates query parameter.
	// Empty leaves Google's default of no notifications.
	SendUpdates string
}

// EventSummary represents a created or fetched event
type EventSummary struct {
	ID        string
	Summary   string
	HTMLLink  string
	Status    string
	Start     time.Time
	End       time.Time
	Organizer string
	Attendees []AttendeeInfo
}

// AttendeeInfo represents information about an event attendee
type AttendeeInfo struct {
	Email          string
	DisplayName    string
	ResponseStatus string // "needsAction", "declined", "tentative", "accepted"
}

// CalendarInfo represents information about a calendar
type CalendarInfo struct {
	ID       string
	Summary  string
	TimeZone string
}

// toEventSummary converts a Google Calendar event to an EventSummary
func toEventSummary(event *calendar.Event) EventSummary {
	if event == nil {
		return EventSummary{}
	}

	summary := EventSummary{
		ID:       event.Id,
		Summary:  event.Summary,
		HTMLLink: event.HtmlLink,
		Status:   event.Status,
	}

	if event.Start != nil && event.Start.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, event.Start.DateTime); err == nil {
			summary.Start = t
		}
	}
	if event.End != nil && event.End.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, event.End.DateTime); err == nil {
			summary.End = t
		}
	}

	if event.Organizer != nil {
		summary.Organizer = event.Organizer.Email
	}

	for _, att := range event.Attendees {
		summary.Attendees = append(summary.Attendees, AttendeeInfo{
			Email:          att.Email,
			DisplayName:    att.DisplayName,
			ResponseStatus: att.ResponseStatus,
		})
	}

	return summary
}

// toCalendarInfo converts a Google Calendar resource to CalendarInfo
func toCalendarInfo(cal *calendar.Calendar) CalendarInfo {
	if cal == nil {
		return CalendarInfo{}
	}
	return CalendarInfo{
		ID:       cal.Id,
		Summary:  cal.Summary,
		TimeZone: cal.TimeZone,
	}
}
