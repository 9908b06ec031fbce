package check

import (
	"regexp"
	"strings"

	"github.com/optimode/deliverkit/internal/parse"
)

// formatRE covers the practical RFC 5322 addr-spec subset: an unquoted
// dot-atom local part and a dotted hostname with letter-bearing TLD.
var formatRE = regexp.MustCompile(
	`^[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+(?:\.[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+)*` +
		`@[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?)*$`)

// IsValidFormat reports whether email is a syntactically plausible
// address. The check is invariant under trimming and lower-casing.
func IsValidFormat(email string) bool {
	e := parse.NewEmail(email)
	if !e.Valid {
		return false
	}

	// Length bounds (RFC 5321).
	if len(e.Normalized) > 254 {
		return false
	}
	if len(e.Local) < 1 || len(e.Local) > 64 {
		return false
	}
	if len(e.Domain) < 1 || len(e.Domain) > 253 {
		return false
	}

	// Dot placement in the local part.
	if strings.HasPrefix(e.Local, ".") || strings.HasSuffix(e.Local, ".") {
		return false
	}
	if strings.Contains(e.Local, "..") {
		return false
	}

	if !formatRE.MatchString(e.Local + "@" + e.Domain) {
		return false
	}

	// The TLD must be at least two letters.
	labels := strings.Split(e.Domain, ".")
	if len(labels) < 2 {
		return false
	}
	tld := labels[len(labels)-1]
	if len(tld) < 2 {
		return false
	}
	for _, ch := range tld {
		if ch < 'a' || ch > 'z' {
			return false
		}
	}

	return true
}
