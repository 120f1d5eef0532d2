package instrumentation

import "strings"

// Cardinality management helpers for metrics and logs.
// Attendee addresses are unbounded; reduce them to their domain before they
// reach a label or a general-purpose log line.

// ExtractUserDomain extracts the domain part from an email address.
//
// Example:
//
//	ExtractUserDomain("jane@example.com")  // "example.com"
//	ExtractUserDomain("bob")               // "unknown"
//	ExtractUserDomain("")                  // "unknown"
func ExtractUserDomain(email string) string {
	if email == "" {
		return "unknown"
	}

	parts := strings.Split(email, "@")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}

	return "unknown"
}

// AttendeeDomains maps addresses to their distinct domains, in first-seen order.
func AttendeeDomains(addresses []string) []string {
	seen := make(map[string]bool, len(addresses))
	var domains []string
	for _, addr := range addresses {
		d := ExtractUserDomain(addr)
		if seen[d] {
			continue
		}
		seen[d] = true
		domains = append(domains, d)
	}
	return domains
}

// Common operation types for Google API metrics.
// Status, OAuth, and Service constants are defined in config.go.
const (
	OperationGet      = "get"
	OperationInsert   = "insert"
	OperationExchange = "exchange"
)
