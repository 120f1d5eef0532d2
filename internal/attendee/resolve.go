package attendee

import "strings"

// Normalize resolves identifiers to addresses, preserving order.
//
// Empty and whitespace-only identifiers are dropped. Identifiers containing
// '@' are kept verbatim (after trimming). Names are resolved through d;
// unknown names pass through unchanged. Duplicates are kept. A nil
// Directory resolves nothing.
func (d *Directory) Normalize(identifiers []string) []string {
	out := make([]string, 0, len(identifiers))
	for _, id := range identifiers {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if strings.Contains(id, "@") {
			out = append(out, id)
			continue
		}
		if addr, ok := d.Lookup(id); ok {
			out = append(out, addr)
			continue
		}
		out = append(out, id)
	}
	return out
}

// Unresolved returns the entries of addresses that are not email addresses,
// i.e. names Normalize could not resolve.
func Unresolved(addresses []string) []string {
	var names []string
	for _, a := range addresses {
		if !strings.Contains(a, "@") {
			names = append(names, a)
		}
	}
	return names
}
