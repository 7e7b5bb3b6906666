package notify

import "strings"

const countryCode = "55"

// NormalizePhone strips everything but digits. Local numbers with area code
// (10 or 11 digits) get the Brazilian country code.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if (len(digits) == 10 || len(digits) == 11) && !strings.HasPrefix(digits, countryCode) {
		return countryCode + digits
	}
	return digits
}
