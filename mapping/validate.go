package mapping

import (
	"strings"
	"time"

	"github.com/bluecloud-project/eoscsync/vocabulary"
)

// dateFormat is the date layout the EOSC profile expects.
const dateFormat = "2006-01-02"

// Field validators. Each takes the value, the field name for the message, a
// mandatory flag and the shared diagnostics accumulator. On failure it
// appends one descriptive message and returns false; it never halts the
// mapping. All validators use the same accumulating channel, including
// vocabulary membership.

// CheckString validates a free-text field. maxLen 0 means unlimited.
func CheckString(d *Diagnostics, val, field string, mandatory bool, maxLen int) bool {
	if len(val) == 0 && mandatory {
		d.Addf("Must have non-zero length: %q (%q)", field, val)
		return false
	}
	if maxLen > 0 && len([]rune(val)) > maxLen {
		d.Addf("Length must be max %d (is %d): %q (%q)", maxLen, len([]rune(val)), field, val)
		return false
	}
	return true
}

// CheckDate validates a YYYY-MM-DD date. Optional empty values pass.
func CheckDate(d *Diagnostics, val, field string, mandatory bool) bool {
	if len(val) == 0 {
		if mandatory {
			d.Addf("Must be a date and non-zero length: %q (%q)", field, val)
			return false
		}
		return true
	}
	if _, err := time.Parse(dateFormat, val); err != nil {
		d.Addf("Malformed date: %q (%q), error: %q, desired format: %q", field, val, err.Error(), "YYYY-MM-DD")
		return false
	}
	return true
}

// CheckEmail validates an email address. No deeper check than the presence
// of an "@"; the remote catalogue validates properly.
func CheckEmail(d *Diagnostics, val, field string, mandatory bool) bool {
	if len(val) == 0 && mandatory {
		d.Addf("Must be an email and non-zero length: %q (%q)", field, val)
		return false
	}
	if len(val) > 0 && !strings.Contains(val, "@") {
		d.Addf("Email address must contain \"@\": %q (%q)", field, val)
		return false
	}
	return true
}

// CheckURL validates a URL. The catalogue only requires an http(s) scheme;
// a missing scheme is what breaks the remote validator.
func CheckURL(d *Diagnostics, val, field string, mandatory bool) bool {
	if len(val) == 0 {
		if mandatory {
			d.Addf("Must be a URL and non-zero length: %q (%q)", field, val)
			return false
		}
		return true
	}
	if !strings.HasPrefix(val, "http") {
		d.Addf("Must be a URL: %q (%q)", field, val)
		return false
	}
	return true
}

// CheckInVocabulary validates membership in a controlled vocabulary,
// case-insensitively.
func CheckInVocabulary(d *Diagnostics, val, field string, mandatory bool, v vocabulary.Vocabulary) bool {
	if len(val) == 0 {
		if mandatory {
			d.Addf("Must have non-zero length: %q (%q)", field, val)
			return false
		}
		return true
	}
	if !v.Contains(val) {
		d.Addf("Must be in the controlled vocabulary: %q (%q), must be in %s", field, val, v.Axis())
		return false
	}
	return true
}
