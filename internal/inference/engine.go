package inference

import (
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
)

// DefaultAcceptanceFloor is the minimum inference confidence kept by
// ValidateInferences. It is independent of the validation queue's
// auto-approve threshold; see pipeline gating for how the two interact.
const DefaultAcceptanceFloor = 0.75

// Engine applies a rule catalog to contexts.
type Engine struct {
	catalog         *Catalog
	acceptanceFloor float64
}

// NewEngine creates an engine over the given catalog with the default
// acceptance floor.
func NewEngine(catalog *Catalog) *Engine {
	return &Engine{catalog: catalog, acceptanceFloor: DefaultAcceptanceFloor}
}

// WithAcceptanceFloor overrides the minimum confidence kept by
// ValidateInferences. Out-of-range values are ignored.
func (e *Engine) WithAcceptanceFloor(floor float64) *Engine {
	if floor >= 0 && floor <= 1 {
		e.acceptanceFloor = floor
	}
	return e
}

// Catalog returns the rule catalog this engine evaluates.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Infer evaluates every catalog rule against the context, in catalog order.
// All matching rules contribute; a matching rule whose procedure finds no
// usable evidence contributes nothing.
func (e *Engine) Infer(ctx model.Context) []model.FieldInference {
	var results []model.FieldInference
	for _, rule := range e.catalog.Rules() {
		if !e.catalog.Evaluate(rule.Condition, ctx) {
			continue
		}
		proc := e.catalog.procedures[rule.Procedure]
		inf := proc(ctx, rule)
		if inf == nil {
			zap.L().Debug("inference: condition matched but no evidence",
				zap.String("field", rule.Field),
				zap.String("procedure", string(rule.Procedure)),
			)
			continue
		}
		inf.Confidence = model.Clamp01(inf.Confidence)
		results = append(results, *inf)
	}
	return results
}

// ValidateInferences filters inferences below the acceptance floor. It is a
// pure filter: the input slice is not modified and repeated application
// yields the same result.
func (e *Engine) ValidateInferences(inferences []model.FieldInference) []model.FieldInference {
	var kept []model.FieldInference
	for _, inf := range inferences {
		if inf.Confidence >= e.acceptanceFloor {
			kept = append(kept, inf)
		}
	}
	return kept
}

// MissingFields returns the required fields that are absent, nil, or empty
// in the context, preserving the order of required.
func (e *Engine) MissingFields(ctx model.Context, required []string) []string {
	var missing []string
	for _, f := range required {
		if !ctx.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// Suggest runs inference and validation, grouping accepted inferences by
// field, restricted to the requested missing set.
func (e *Engine) Suggest(ctx model.Context, missingFields []string) map[string][]model.FieldInference {
	wanted := make(map[string]bool, len(missingFields))
	for _, f := range missingFields {
		wanted[f] = true
	}

	accepted := e.ValidateInferences(e.Infer(ctx))

	suggestions := make(map[string][]model.FieldInference)
	for _, inf := range accepted {
		if wanted[inf.Field] {
			suggestions[inf.Field] = append(suggestions[inf.Field], inf)
		}
	}
	return suggestions
}
