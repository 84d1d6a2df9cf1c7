// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when a caller passes no region.
const DefaultRegion = "NL"

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, regionOrDefault(region))
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// IsValid reports whether input parses to a valid number for the region.
func IsValid(input, region string) bool {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return false
	}
	number, err := phonenumbers.Parse(trimmed, regionOrDefault(region))
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(number)
}

func regionOrDefault(region string) string {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		return DefaultRegion
	}
	return region
}
