package confidence

import (
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// companySizeRe matches the bands produced by inference, e.g.
	// "Small (51-200 employees)" or "Medium ($10M-$100M revenue)".
	companySizeRe = regexp.MustCompile(`(?i)^(startup|small|medium|large)\b`)

	// salaryRangeRe matches bands like "$75K-$100K", "$150K+", "Under $50K".
	salaryRangeRe = regexp.MustCompile(`(?i)^(under\s+)?\$\d+[kKmM]?(\s*[-+]\s*(\$\d+[kKmM]?)?)?\+?$`)
)

// validateField applies the per-field format check. Fields without a
// dedicated validator default to 0.80.
func validateField(field, value string) float64 {
	value = strings.TrimSpace(value)
	switch field {
	case "email":
		if emailRe.MatchString(value) {
			return 0.95
		}
		return 0.30
	case "phone":
		if digitCount(value) >= 10 {
			return 0.90
		}
		return 0.40
	case "company_size":
		if companySizeRe.MatchString(value) {
			return 0.90
		}
		return 0.50
	case "salary_range":
		if salaryRangeRe.MatchString(value) {
			return 0.85
		}
		return 0.45
	default:
		return 0.80
	}
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
