// Package render provides pure text helpers for the dialog engine:
// placeholder substitution for message node templates and partially
// redacted display forms of sensitive profile fields.
package render

import (
	"regexp"
	"strings"

	"github.com/fanflow-app/fanflow/internal/models"
)

const (
	// maskRun is the fixed-width run substituted for the hidden part of a
	// masked email local part, independent of the hidden length.
	maskRun = "***"
	// idMaskPrefix hides the first nine digits of an eleven-digit national id.
	idMaskPrefix = "*********"
	// IDNotProvided is the sentinel shown when no valid national id exists.
	IDNotProvided = "not provided"
)

// placeholderPattern matches {{key}} tokens in node templates.
var placeholderPattern = regexp.MustCompile(`\{\{([a-zA-Z0-9_]+)\}\}`)

// nonDigitPattern matches everything that is not an ASCII digit.
var nonDigitPattern = regexp.MustCompile(`[^0-9]`)

// Render substitutes every {{key}} token in text with data[key].
// Unresolved tokens render as the empty string; Render never fails.
func Render(text string, data map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(token string) string {
		key := token[2 : len(token)-2]
		return data[key]
	})
}

// MaskEmail keeps the first and last character of the local part, replaces
// the rest with a fixed-width mask run, and leaves the domain verbatim.
// Input without a parseable local part is returned unchanged. Masking an
// already-masked value yields the same masked form.
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return email
	}
	local, domain := email[:at], email[at:]
	// For a single-character local part the first and last character are
	// the same, which keeps re-masking a masked value stable.
	return local[:1] + maskRun + local[len(local)-1:] + domain
}

// MaskID shows only the last two digits of an eleven-digit national id
// behind a fixed mask prefix. Anything that is not exactly eleven digits
// is treated as absent and renders the sentinel, never a partial mask.
func MaskID(id string) string {
	if len(id) != models.NationalIDLength {
		return IDNotProvided
	}
	return idMaskPrefix + id[models.NationalIDLength-2:]
}

// FormatID returns the canonical grouped display form of an eleven-digit
// national id: 3-3-3-2 digit groups separated by spaces. Callers must only
// pass values that already passed the eleven-digit check; other input is
// returned unchanged.
func FormatID(id string) string {
	digits := StripDigits(id)
	if len(digits) != models.NationalIDLength {
		return id
	}
	return digits[0:3] + " " + digits[3:6] + " " + digits[6:9] + " " + digits[9:11]
}

// StripDigits removes every non-digit character from s.
func StripDigits(s string) string {
	return nonDigitPattern.ReplaceAllString(s, "")
}
