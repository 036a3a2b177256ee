package formatter

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// FormatPhone formats a phone number to E164 format
func FormatPhone(phone, countryCode string) (string, error) {
	countryCode = strings.ToUpper(countryCode)
	num, err := phonenumbers.Parse(phone, countryCode)
	if err != nil {
		return "", err
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number for region %s", countryCode)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// PadCandidate renders n zero-padded to width digits ("7" -> "07").
func PadCandidate(n, width int) string {
	if width <= 0 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%0*d", width, n)
}
