package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Client wraps the Google Calendar service
type Client struct {
	svc *calendar.Service
}

// NewClientForToken creates a Calendar client authenticated with tok.
// The token source built from conf refreshes an expired access token
// transparently when tok carries a refresh token.
// Extra options (e.g. option.WithEndpoint) are appended after the HTTP client.
func NewClientForToken(ctx context.Context, conf *oauth2.Config, tok *oauth2.Token, opts ...option.ClientOption) (*Client, error) {
	if conf == nil {
		return nil, fmt.Errorf("oauth config cannot be nil")
	}
	if tok == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}

	client := oauth2.NewClient(ctx, conf.TokenSource(ctx, tok))

	// Force HTTP/1.1 by disabling HTTP/2
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			ForceAttemptHTTP2: false,
		}
	}

	return NewClientWithHTTPClient(ctx, client, opts...)
}

// NewClientWithHTTPClient creates a Calendar client on top of an already
// authenticated HTTP client.
func NewClientWithHTTPClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	all := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := calendar.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// CreateEvent creates a new calendar event
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (*EventSummary, error) {
	if calendarID == "" {
		calendarID = PrimaryCalendarID
	}

	event := &calendar.Event{
		Summary: input.Summary,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: input.TimeZone,
		},
	}

	for _, email := range input.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{
			Email: email,
		})
	}

	call := c.svc.Events.Insert(calendarID, event).Context(ctx)
	if input.SendUpdates != "" {
		call = call.SendUpdates(input.SendUpdates)
	}

	created, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	summary := toEventSummary(created)
	return &summary, nil
}

// GetCalendar retrieves metadata of a calendar
func (c *Client) GetCalendar(ctx context.Context, calendarID string) (*CalendarInfo, error) {
	cal, err := c.svc.Calendars.Get(calendarID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar: %w", err)
	}

	info := toCalendarInfo(cal)
	return &info, nil
}

// GetPrimaryCalendar retrieves metadata of the primary calendar
func (c *Client) GetPrimaryCalendar(ctx context.Context) (*CalendarInfo, error) {
	return c.GetCalendar(ctx, PrimaryCalendarID)
}

// ErrorMessage extracts the human-readable message from a Google API error.
// For other errors it returns err.Error().
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return fmt.Sprintf("%s (HTTP %d)", apiErr.Message, apiErr.Code)
		}
		return fmt.Sprintf("HTTP %d", apiErr.Code)
	}
	return err.Error()
}

// StatusCode returns the HTTP status of a Google API error, or 0.
func StatusCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
