package deliverkit

import (
	"github.com/optimode/deliverkit/internal/parse"
	"github.com/optimode/deliverkit/types"
)

// ExtractDomain returns the normalized domain of the address, or ""
// when the address has no domain.
func ExtractDomain(email string) string {
	return parse.Domain(email)
}

// ExtractLocalPart returns the normalized local part of the address,
// or "" when the address cannot be split.
func ExtractLocalPart(email string) string {
	return parse.Local(email)
}

// GetPrimaryMX returns the exchanger with the lowest priority, or ""
// for an empty record set. Records are expected in resolver order
// (already sorted ascending by priority).
func GetPrimaryMX(records []types.MXRecord) string {
	if len(records) == 0 {
		return ""
	}
	return records[0].Exchange
}
