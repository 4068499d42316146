// Package textutils holds the merchant-name normalizer and the text helpers
// used to compare merchant names.
package textutils

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

var (
	leadingTypeToken = regexp.MustCompile(`(?i)^(PURCHASE|POS|DEBIT|CREDIT|ACH|CHECK|WIRE|TRANSFER)\s+`)
	trailingFullDate = regexp.MustCompile(`\s+\d{2}/\d{2}/\d{4}$`)
	trailingDate     = regexp.MustCompile(`\s+\d{2}/\d{2}$`)
	trailingRef      = regexp.MustCompile(`\s+#\d+$`)
	trailingRegion   = regexp.MustCompile(`\s+[A-Z]{2}$`)
)

// maxNormalizePasses bounds the fixpoint loop; every pass that changes the
// string makes it strictly shorter, so this is never reached in practice.
const maxNormalizePasses = 16

// NormalizeMerchant strips transaction noise from a statement description:
// a leading type token (PURCHASE, POS, ACH, ...), then trailing full and
// short dates, a trailing #reference and a trailing two-letter region code.
//
// The stripping steps are repeated until the string stops changing, so
// "PURCHASE STARBUCKS COFFEE #4471 NY 11/02/2024" becomes "STARBUCKS COFFEE"
// and NormalizeMerchant(NormalizeMerchant(x)) == NormalizeMerchant(x).
// When stripping would leave nothing, the trimmed input is returned.
func NormalizeMerchant(description string) string {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return ""
	}

	current := trimmed
	for i := 0; i < maxNormalizePasses; i++ {
		next := stripOnce(current)
		if next == current {
			break
		}
		current = next
	}

	if current == "" {
		return trimmed
	}
	return current
}

func stripOnce(s string) string {
	s = strings.TrimSpace(s)
	s = leadingTypeToken.ReplaceAllString(s, "")
	s = trailingFullDate.ReplaceAllString(s, "")
	s = trailingDate.ReplaceAllString(s, "")
	s = trailingRef.ReplaceAllString(s, "")
	s = trailingRegion.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// MerchantKey returns the case-folded comparison key of a merchant name.
// Two names with equal keys denote the same merchant.
func MerchantKey(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

// ContainsFold reports whether needle occurs in haystack ignoring case.
// An empty needle never matches.
func ContainsFold(haystack, needle string) bool {
	n := MerchantKey(needle)
	if n == "" {
		return false
	}
	return strings.Contains(MerchantKey(haystack), n)
}
