package confidence

import (
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

// neutralConsistency is used when no paired field gives a signal either way.
const neutralConsistency = 0.80

// raisedConsistency rewards mutually plausible field pairs.
const raisedConsistency = 0.95

// scoreConsistency checks the scored value against paired context fields.
// Two pairings carry signal: title vs company size, and experience level vs
// salary magnitude. Anything else is neutral.
func scoreConsistency(field, value string, ctx model.Context) float64 {
	pick := func(key string) string {
		if field == key {
			return value
		}
		return ctx.String(key)
	}

	title := strings.ToLower(pick("title"))
	size := strings.ToLower(pick("company_size"))
	if title != "" && size != "" && titleFitsCompanySize(title, size) {
		return raisedConsistency
	}

	level := strings.ToLower(pick("experience_level"))
	if salary, ok := ctx.Float("current_salary"); ok && level != "" &&
		salaryFitsLevel(level, salary) {
		return raisedConsistency
	}

	return neutralConsistency
}

// titleFitsCompanySize reports pairings that reinforce each other: founders
// and chiefs at startups and small companies, middle management at
// companies large enough to have layers.
func titleFitsCompanySize(title, size string) bool {
	executive := strings.Contains(title, "ceo") || strings.Contains(title, "founder") ||
		strings.Contains(title, "owner") || strings.Contains(title, "president") ||
		strings.Contains(title, "chief")
	middle := strings.Contains(title, "director") || strings.Contains(title, "manager") ||
		strings.Contains(title, "vp") || strings.Contains(title, "vice president")

	smallCo := strings.Contains(size, "startup") || strings.Contains(size, "small")
	largeCo := strings.Contains(size, "medium") || strings.Contains(size, "large")

	switch {
	case executive && smallCo:
		return true
	case middle && largeCo:
		return true
	}
	return false
}

// salaryFitsLevel checks that a salary magnitude is plausible for the
// declared experience level.
func salaryFitsLevel(level string, salary float64) bool {
	switch level {
	case "entry":
		return salary > 0 && salary <= 80_000
	case "mid":
		return salary >= 55_000 && salary <= 130_000
	case "senior":
		return salary >= 90_000
	case "executive":
		return salary >= 120_000
	}
	return false
}
