package nlp

import (
	"encoding/json"
	"strings"

	"github.com/teemow/quickcal/internal/event"
	"github.com/teemow/quickcal/internal/logging"
)

// ParseReply extracts a Draft from a model reply. The first balanced
// {...} span is decoded; surrounding prose is ignored. Fields are taken as
// given: missing times stay empty.
func ParseReply(reply string) (event.Draft, error) {
	span, ok := firstObject(reply)
	if !ok {
		return event.Draft{}, malformed("no JSON object found", reply)
	}

	var draft event.Draft
	if err := json.Unmarshal([]byte(span), &draft); err != nil {
		return event.Draft{}, malformed(err.Error(), reply)
	}
	if draft.Attendees == nil {
		draft.Attendees = []string{}
	}
	return draft, nil
}

func malformed(reason, reply string) *MalformedExtractionError {
	return &MalformedExtractionError{
		Reason:  reason,
		Preview: logging.Truncate(reply, PreviewLength),
	}
}

// firstObject returns the first brace-balanced span starting at the first
// '{' in s. Braces inside JSON strings are ignored.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
