package mapping

import "strings"

// SplitName decomposes a free-text full name into (first, last) components.
// The catalogue stores names as a single string; EOSC wants first and last
// separately. Heuristics, in priority order:
//
//  1. "Last, First": split once on ", "; no further guessing.
//  2. "First Last": two space-separated tokens, with a diagnostic that the
//     name was not comma-separated.
//  3. Three tokens: first two treated as a double first name, with a
//     diagnostic that this is a guess.
//  4. Empty input: ("", "") with no diagnostic.
//  5. A single token: ("", token), diagnostic.
//  6. Anything else: ("", whole string), diagnostic.
//
// It never fails; a bad guess surfaces as a diagnostic and, eventually, as a
// remote validation message.
func SplitName(d *Diagnostics, val, field string) (first, last string) {
	if idx := strings.Index(val, ", "); idx >= 0 {
		// Split once only: "A, B, C" becomes ("B, C", "A") rather than
		// falling through to the space heuristics.
		parts := strings.SplitN(strings.TrimSpace(val), ", ", 2)
		if len(parts) == 2 {
			return parts[1], parts[0]
		}
	}

	if len(val) > 0 {
		d.Addf("Name not comma-separated: %q", val)
	}

	tokens := strings.Split(strings.TrimSpace(val), " ")
	switch {
	case len(tokens) == 2:
		return tokens[0], tokens[1]

	case len(tokens) == 3:
		d.Addf("Malformed name, three names: Assuming that two are first names and one is last name: %q (%q)", field, val)
		return tokens[0] + " " + tokens[1], tokens[2]

	case len(tokens) == 1 && len(val) == 0:
		return "", ""

	case len(tokens) == 1:
		d.Addf("Malformed name, expecting one first name and one last name: %q (%q)", field, val)
		return "", val

	default:
		d.Addf("Malformed name, expecting one first name and one last name: %q (%q)", field, val)
		return "", val
	}
}
