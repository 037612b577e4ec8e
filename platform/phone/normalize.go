// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "BR"

// Normalizer formats numbers to E.164 using a default region for numbers
// written without a country code.
type Normalizer struct {
	region string
}

// NewNormalizer returns a Normalizer for region (ISO 3166 alpha-2).
func NewNormalizer(region string) *Normalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultRegion
	}
	return &Normalizer{region: region}
}

// E164 formats input to E.164. Unparseable or invalid numbers are returned
// trimmed so the caller keeps what the user typed.
func (n *Normalizer) E164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, n.region)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// E164Ptr is E164 for optional values. Blank input becomes nil.
func (n *Normalizer) E164Ptr(input *string) *string {
	if input == nil {
		return nil
	}
	out := n.E164(*input)
	if out == "" {
		return nil
	}
	return &out
}
