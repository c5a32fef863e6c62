package channel

import (
	"fmt"
	"regexp"
	"strings"
)

// e164Re matches the digits-only wire format SMS and chat providers expect:
// country code plus subscriber number, 8 to 15 digits, no leading zero.
var e164Re = regexp.MustCompile(`^[1-9][0-9]{7,14}$`)

// NormalizePhone strips formatting from a raw phone number and prefixes the
// default country code when a bare 10-digit local number is detected.
// Numbers that still fail the E.164-like pattern are rejected.
func NormalizePhone(raw, defaultCountryCode string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	// "00" international prefix is equivalent to "+".
	digits = strings.TrimPrefix(digits, "00")

	if len(digits) == 10 && defaultCountryCode != "" {
		digits = defaultCountryCode + digits
	}

	if !e164Re.MatchString(digits) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
	}
	return digits, nil
}
