package utils

import (
	"os"
	"strings"

	"github.com/ttacon/libphonenumber"
)

// DefaultPhoneRegion is used for numbers written without a country code.
func DefaultPhoneRegion() string {
	if v := strings.ToUpper(strings.TrimSpace(os.Getenv("PHONE_DEFAULT_REGION"))); v != "" {
		return v
	}
	return "BR"
}

// NormalizePhoneE164 formats a phone number as E.164. Unparseable or invalid
// numbers report ok=false.
func NormalizePhoneE164(phoneNumber string) (string, bool) {
	raw := strings.TrimSpace(phoneNumber)
	if raw == "" {
		return "", false
	}
	p, err := libphonenumber.Parse(raw, DefaultPhoneRegion())
	if err != nil || !libphonenumber.IsValidNumber(p) {
		return "", false
	}
	return libphonenumber.Format(p, libphonenumber.E164), true
}
