package domain

import (
	"regexp"
	"strings"
)

// Mobile money numbers: digits only, 9 to 12 of them (e.g. "0971234567").
var phonePattern = regexp.MustCompile(`^[0-9]{9,12}$`)

// NormalizePhone strips the separators people type into phone fields.
func NormalizePhone(raw string) string {
	clean := strings.ReplaceAll(raw, " ", "")
	clean = strings.ReplaceAll(clean, "-", "")
	return clean
}

// ValidPhone checks the payer number against the MoneyUnify format.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
