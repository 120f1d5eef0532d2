// Package calendar provides a client for the Google Calendar API.
//
// The client is bound to a single user's OAuth token. It reads the primary
// calendar's metadata and inserts events, asking Google to notify attendees.
//
// Example usage:
//
//	client, err := calendar.NewClientForToken(ctx, oauthConfig, grant.Token())
//	if err != nil {
//	    return err
//	}
//
//	created, err := client.CreateEvent(ctx, calendar.PrimaryCalendarID, calendar.EventInput{
//	    Summary:     "Standup",
//	    Start:       start,
//	    End:         end,
//	    Attendees:   []string{"bob@example.com"},
//	    SendUpdates: calendar.SendUpdatesAll,
//	})
package calendar
