// Package event validates event drafts and writes them to users' primary
// Google calendars.
//
// A Dispatcher loads the user's grant from a credstore.Store, builds a
// calendar client for it and inserts the event with attendee notifications
// enabled. DispatchAll replicates one draft into several calendars and
// reports a per-user outcome; one user's failure never affects another.
package event
