package confidence

import (
	"fmt"
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Recommendations emits human-actionable hints for raising the confidence
// of a field value. It never alters the data itself.
func (s *Scorer) Recommendations(field, value string, ctx model.Context) []string {
	var recs []string

	if sourceName(ctx) == "unknown" {
		recs = append(recs, "Record a data source for this contact to improve source reliability")
	}

	for _, rf := range s.requiredFields {
		if !ctx.Has(rf) {
			recs = append(recs, fmt.Sprintf("Add %q to the context to improve completeness", rf))
		}
	}

	value = strings.TrimSpace(value)
	switch field {
	case "email":
		if !emailRe.MatchString(value) {
			recs = append(recs, "Email does not match the expected format; verify the address")
		}
	case "phone":
		if digitCount(value) < 10 {
			recs = append(recs, "Phone number has fewer than 10 digits; include the area code")
		}
	case "company_size":
		if !companySizeRe.MatchString(value) {
			recs = append(recs, "Company size is not a recognized band; use a band such as \"Small (51-200 employees)\"")
		}
	case "salary_range":
		if !salaryRangeRe.MatchString(value) {
			recs = append(recs, "Salary range is not a recognized band; use a band such as \"$75K-$100K\"")
		}
	}

	if scoreConsistency(field, value, ctx) <= neutralConsistency {
		if ctx.Has("title") && ctx.Has("company_size") {
			recs = append(recs, "Title and company size do not reinforce each other; double-check both")
		}
	}

	return recs
}
