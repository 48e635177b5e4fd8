package inference

import (
	"fmt"
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

func procedureTable() map[ProcedureID]procedureFunc {
	return map[ProcedureID]procedureFunc{
		ProcTitleHierarchy:           inferTitleHierarchy,
		ProcCompanySizeFromEmployees: inferCompanySizeFromEmployees,
		ProcCompanySizeFromRevenue:   inferCompanySizeFromRevenue,
		ProcSalaryRange:              inferSalaryRange,
		ProcExperienceLevel:          inferExperienceLevel,
	}
}

// inferTitleHierarchy maps a management title to the role it reports to.
func inferTitleHierarchy(ctx model.Context, rule ConditionalRule) *model.FieldInference {
	title := strings.ToLower(ctx.String("title"))
	if title == "" {
		return nil
	}

	var value, reason string
	switch {
	case strings.Contains(title, "chief executive") || containsWord(title, "ceo"):
		value = "Board of Directors"
		reason = fmt.Sprintf("Title %q is chief executive; reports to the board", ctx.String("title"))
	case strings.Contains(title, "vice president") || containsWord(title, "vp"):
		value = "CEO"
		reason = fmt.Sprintf("Title %q is vice-president level; reports to the CEO", ctx.String("title"))
	case strings.Contains(title, "director"):
		if dept := ctx.String("department"); dept != "" {
			value = "VP of " + dept
			reason = fmt.Sprintf("Director in %s; reports to the %s VP", dept, dept)
		} else {
			value = "Senior Management"
			reason = "Director with no department on record; reports into senior management"
		}
	case strings.Contains(title, "manager") || containsWord(title, "lead"):
		if ctx.Has("department") {
			value = "Director"
			reason = fmt.Sprintf("Manager in %s; reports to a director", ctx.String("department"))
		} else {
			value = "Management"
			reason = "Manager or lead with no department on record; reports into management"
		}
	default:
		return nil
	}

	return &model.FieldInference{
		Field:        rule.Field,
		Value:        value,
		Confidence:   rule.Confidence,
		Reasoning:    reason,
		SourceFields: rule.SourceFields,
	}
}

// inferCompanySizeFromEmployees buckets a headcount into fixed size bands.
func inferCompanySizeFromEmployees(ctx model.Context, rule ConditionalRule) *model.FieldInference {
	count, ok := ctx.Float("employee_count")
	if !ok || count <= 0 {
		return nil
	}

	var value string
	switch {
	case count <= 50:
		value = "Startup (1-50 employees)"
	case count <= 200:
		value = "Small (51-200 employees)"
	case count <= 1000:
		value = "Medium (201-1000 employees)"
	default:
		value = "Large (1000+ employees)"
	}

	return &model.FieldInference{
		Field:        rule.Field,
		Value:        value,
		Confidence:   rule.Confidence,
		Reasoning:    fmt.Sprintf("Employee count %d falls in the %s band", int(count), value),
		SourceFields: rule.SourceFields,
	}
}

// inferCompanySizeFromRevenue buckets annual revenue into the analogous bands.
func inferCompanySizeFromRevenue(ctx model.Context, rule ConditionalRule) *model.FieldInference {
	revenue, ok := ctx.Float("annual_revenue")
	if !ok || revenue <= 0 {
		return nil
	}

	var value string
	switch {
	case revenue <= 1_000_000:
		value = "Startup (<$1M revenue)"
	case revenue <= 10_000_000:
		value = "Small ($1M-$10M revenue)"
	case revenue <= 100_000_000:
		value = "Medium ($10M-$100M revenue)"
	default:
		value = "Large ($100M+ revenue)"
	}

	return &model.FieldInference{
		Field:        rule.Field,
		Value:        value,
		Confidence:   rule.Confidence,
		Reasoning:    fmt.Sprintf("Annual revenue $%.0f falls in the %s band", revenue, value),
		SourceFields: rule.SourceFields,
	}
}

// inferExperienceLevel maps years of experience to a seniority level.
func inferExperienceLevel(ctx model.Context, rule ConditionalRule) *model.FieldInference {
	years, ok := ctx.Float("years_experience")
	if !ok || years < 0 {
		return nil
	}
	return &model.FieldInference{
		Field:        rule.Field,
		Value:        experienceLevelForYears(years),
		Confidence:   rule.Confidence,
		Reasoning:    fmt.Sprintf("%.0f years of experience maps to %s level", years, experienceLevelForYears(years)),
		SourceFields: rule.SourceFields,
	}
}

func experienceLevelForYears(years float64) string {
	switch {
	case years <= 2:
		return "entry"
	case years <= 5:
		return "mid"
	case years <= 10:
		return "senior"
	default:
		return "executive"
	}
}

// salaryMultipliers scale a current salary to a target-range midpoint by
// seniority.
var salaryMultipliers = map[string]float64{
	"entry":  0.8,
	"mid":    1.0,
	"senior": 1.2,
}

// inferSalaryRange estimates a salary band from current salary scaled by
// experience level. No current salary on record means no inference.
func inferSalaryRange(ctx model.Context, rule ConditionalRule) *model.FieldInference {
	salary, ok := ctx.Float("current_salary")
	if !ok || salary <= 0 {
		return nil
	}

	level := strings.ToLower(ctx.String("experience_level"))
	if level == "" {
		if years, hasYears := ctx.Float("years_experience"); hasYears {
			level = experienceLevelForYears(years)
		}
	}
	multiplier, known := salaryMultipliers[level]
	if !known {
		multiplier = 1.5
	}

	estimated := salary * multiplier
	var value string
	switch {
	case estimated < 50_000:
		value = "Under $50K"
	case estimated < 75_000:
		value = "$50K-$75K"
	case estimated < 100_000:
		value = "$75K-$100K"
	case estimated < 150_000:
		value = "$100K-$150K"
	default:
		value = "$150K+"
	}

	return &model.FieldInference{
		Field:        rule.Field,
		Value:        value,
		Confidence:   rule.Confidence,
		Reasoning:    fmt.Sprintf("Current salary $%.0f at %s level (x%.1f) estimates the %s band", salary, level, multiplier, value),
		SourceFields: rule.SourceFields,
	}
}

// containsWord reports whether text contains kw as a whole word. Plain
// substring matching would let "lead" match inside "leader".
func containsWord(text, kw string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], kw)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(kw)
		beforeOK := start == 0 || !isLetter(text[start-1])
		afterOK := end == len(text) || !isLetter(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
