// Package inference derives missing contact and company fields from partial
// context using an ordered catalog of conditional rules.
package inference

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/outreach-cli/internal/model"
)

// ConditionID names a predicate over a context.
type ConditionID string

// ProcedureID names an inference procedure.
type ProcedureID string

const (
	CondTitleHasManagementKeyword ConditionID = "title_has_management_keyword"
	CondEmployeeCountPresent      ConditionID = "employee_count_present"
	CondRevenuePresent            ConditionID = "revenue_present"
	CondYearsExperiencePresent    ConditionID = "years_experience_present"

	ProcTitleHierarchy           ProcedureID = "title_hierarchy"
	ProcCompanySizeFromEmployees ProcedureID = "company_size_from_employees"
	ProcCompanySizeFromRevenue   ProcedureID = "company_size_from_revenue"
	ProcSalaryRange              ProcedureID = "salary_range_from_experience"
	ProcExperienceLevel          ProcedureID = "experience_level_from_years"
)

// ConditionalRule binds a target field to a condition, an inference
// procedure, a base confidence, and the context fields the inference reads.
// Rules are immutable after catalog construction and evaluate in catalog
// order; every matching rule produces an independent inference.
type ConditionalRule struct {
	Field        string      `yaml:"field"`
	Condition    ConditionID `yaml:"condition"`
	Procedure    ProcedureID `yaml:"procedure"`
	Confidence   float64     `yaml:"confidence"`
	SourceFields []string    `yaml:"source_fields"`
}

// conditionFunc is a pure predicate over a context.
type conditionFunc func(ctx model.Context) bool

// procedureFunc produces an inference for a matched rule, or nil when the
// context lacks the evidence to support a value.
type procedureFunc func(ctx model.Context, rule ConditionalRule) *model.FieldInference

// Catalog holds an ordered rule set with its dispatch tables. Both tables
// are closed: every rule's condition and procedure identifier is checked at
// construction time.
type Catalog struct {
	rules      []ConditionalRule
	conditions map[ConditionID]conditionFunc
	procedures map[ProcedureID]procedureFunc
}

// NewCatalog builds a catalog from the given rules. Rules naming an unknown
// condition or procedure are rejected up front rather than silently never
// matching.
func NewCatalog(rules []ConditionalRule) (*Catalog, error) {
	c := &Catalog{
		rules:      rules,
		conditions: conditionTable(),
		procedures: procedureTable(),
	}
	for i, r := range rules {
		if r.Field == "" {
			return nil, eris.Errorf("inference: rule %d has no target field", i)
		}
		if _, ok := c.conditions[r.Condition]; !ok {
			return nil, eris.Errorf("inference: rule %d (%s): unknown condition %q", i, r.Field, r.Condition)
		}
		if _, ok := c.procedures[r.Procedure]; !ok {
			return nil, eris.Errorf("inference: rule %d (%s): unknown procedure %q", i, r.Field, r.Procedure)
		}
		if r.Confidence < 0 || r.Confidence > 1 {
			return nil, eris.Errorf("inference: rule %d (%s): confidence %.2f outside [0,1]", i, r.Field, r.Confidence)
		}
	}
	return c, nil
}

// DefaultRules returns the built-in rule catalog, in evaluation order.
func DefaultRules() []ConditionalRule {
	return []ConditionalRule{
		{
			Field:        "reports_to",
			Condition:    CondTitleHasManagementKeyword,
			Procedure:    ProcTitleHierarchy,
			Confidence:   0.95,
			SourceFields: []string{"title"},
		},
		{
			Field:        "company_size",
			Condition:    CondEmployeeCountPresent,
			Procedure:    ProcCompanySizeFromEmployees,
			Confidence:   0.95,
			SourceFields: []string{"employee_count"},
		},
		{
			Field:        "company_size",
			Condition:    CondRevenuePresent,
			Procedure:    ProcCompanySizeFromRevenue,
			Confidence:   0.85,
			SourceFields: []string{"annual_revenue"},
		},
		{
			Field:        "experience_level",
			Condition:    CondYearsExperiencePresent,
			Procedure:    ProcExperienceLevel,
			Confidence:   0.90,
			SourceFields: []string{"years_experience"},
		},
		{
			Field:        "salary_range",
			Condition:    CondYearsExperiencePresent,
			Procedure:    ProcSalaryRange,
			Confidence:   0.80,
			SourceFields: []string{"years_experience", "experience_level", "current_salary"},
		},
	}
}

// Rules returns the catalog's rules in evaluation order.
func (c *Catalog) Rules() []ConditionalRule {
	return c.rules
}

// Evaluate reports whether the named condition holds. Unknown conditions
// evaluate to false.
func (c *Catalog) Evaluate(id ConditionID, ctx model.Context) bool {
	fn, ok := c.conditions[id]
	if !ok {
		return false
	}
	return fn(ctx)
}

// LoadRules reads a rule catalog from a YAML file. The file has a top-level
// "rules" key; identifiers are validated against the dispatch tables.
func LoadRules(path string) ([]ConditionalRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "inference: read rules %s", path)
	}
	var wrapper struct {
		Rules []ConditionalRule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "inference: parse rules")
	}
	if len(wrapper.Rules) == 0 {
		return nil, eris.Errorf("inference: no rules in %s", path)
	}
	return wrapper.Rules, nil
}
