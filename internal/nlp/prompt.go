package nlp

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // zone names must resolve without system tzdata
)

// DefaultTimeZone is used to render the reference date when none is configured.
const DefaultTimeZone = "Asia/Seoul"

// Instruction renders the system instruction for reference date ref.
// The output depends only on ref (including its location).
func Instruction(ref time.Time) string {
	var b strings.Builder
	b.WriteString("You convert one sentence describing a calendar event into JSON.\n")
	fmt.Fprintf(&b, "Today is %s (%s) in time zone %s (UTC%s). ",
		ref.Format("2006-01-02"), ref.Weekday(), ref.Location(), ref.Format("-07:00"))
	b.WriteString("Resolve relative dates such as \"today\", \"tomorrow\" or \"next Friday\" against this date.\n")
	b.WriteString("Reply with exactly one JSON object and nothing else, with these fields:\n")
	b.WriteString("  \"summary\": string, a short title for the event; empty if the sentence names none\n")
	fmt.Fprintf(&b, "  \"start\": string, RFC 3339 date-time with an explicit UTC offset, e.g. %s\n",
		time.Date(ref.Year(), ref.Month(), ref.Day(), 13, 0, 0, 0, ref.Location()).Format(time.RFC3339))
	b.WriteString("  \"end\": string, same format as start\n")
	b.WriteString("  \"attendees\": array of strings, names or email addresses of other participants; [] if none\n")
	b.WriteString("Use the offset of the time zone above unless the sentence names another one. ")
	b.WriteString("If the sentence does not state a start or an end (or a duration), leave that field as an empty string. ")
	b.WriteString("Never invent a time.")
	return b.String()
}
