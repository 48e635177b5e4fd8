package inference

import (
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

// managementKeywords are title fragments that place a contact in the
// management hierarchy. Order matters: more senior classes first, so the
// first match decides the class.
var managementKeywords = []string{
	"chief executive", "ceo",
	"vice president", "vp",
	"director",
	"manager", "lead",
}

func conditionTable() map[ConditionID]conditionFunc {
	return map[ConditionID]conditionFunc{
		CondTitleHasManagementKeyword: titleHasManagementKeyword,
		CondEmployeeCountPresent:      fieldPresent("employee_count"),
		CondRevenuePresent:            fieldPresent("annual_revenue"),
		CondYearsExperiencePresent:    fieldPresent("years_experience"),
	}
}

func titleHasManagementKeyword(ctx model.Context) bool {
	title := strings.ToLower(ctx.String("title"))
	if title == "" {
		return false
	}
	for _, kw := range managementKeywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

// fieldPresent returns a predicate that holds when the field is present,
// non-nil, and non-empty.
func fieldPresent(key string) conditionFunc {
	return func(ctx model.Context) bool {
		return ctx.Has(key)
	}
}
