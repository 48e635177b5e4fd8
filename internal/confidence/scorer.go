// Package confidence computes composite trust scores for field values,
// independent of whether the value was observed or inferred.
package confidence

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Weights are the multipliers for the four scoring factors. They must sum
// to 1.0.
type Weights struct {
	SourceReliability float64 `yaml:"source_reliability" mapstructure:"source_reliability"`
	Completeness      float64 `yaml:"completeness" mapstructure:"completeness"`
	FieldValidation   float64 `yaml:"field_validation" mapstructure:"field_validation"`
	Consistency       float64 `yaml:"consistency" mapstructure:"consistency"`
}

// DefaultWeights returns the standard factor weights.
func DefaultWeights() Weights {
	return Weights{
		SourceReliability: 0.30,
		Completeness:      0.25,
		FieldValidation:   0.25,
		Consistency:       0.20,
	}
}

// ValidateWeights checks that weights are non-negative and sum to 1.0
// within floating-point tolerance.
func ValidateWeights(w Weights) error {
	var errs []string
	for name, v := range map[string]float64{
		"source_reliability": w.SourceReliability,
		"completeness":       w.Completeness,
		"field_validation":   w.FieldValidation,
		"consistency":        w.Consistency,
	} {
		if v < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}
	sum := w.SourceReliability + w.Completeness + w.FieldValidation + w.Consistency
	if sum < 0.99 || sum > 1.01 {
		errs = append(errs, fmt.Sprintf("weights must sum to 1.0, got %.2f", sum))
	}
	if len(errs) > 0 {
		return eris.Errorf("confidence: weight validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// sourceReliability ranks known context sources. Unknown sources score 0.50.
var sourceReliability = map[string]float64{
	"linkedin":        0.95,
	"crm":             0.90,
	"company_website": 0.85,
	"enrichment_api":  0.80,
	"form_submission": 0.75,
	"manual_entry":    0.70,
	"scraped":         0.60,
}

const unknownSourceReliability = 0.50

// defaultRequiredFields is the completeness denominator.
var defaultRequiredFields = []string{"name", "email", "title", "company"}

// ThresholdSource supplies the current auto-approve threshold. The
// validation queue implements it; scores pick up threshold updates on the
// next call, never retroactively.
type ThresholdSource interface {
	AutoApprove() float64
}

// Scorer computes composite confidence scores.
type Scorer struct {
	weights        Weights
	requiredFields []string
	thresholds     ThresholdSource
}

// NewScorer creates a scorer. A nil thresholds source falls back to the
// default auto-approve threshold of 0.95.
func NewScorer(weights Weights, thresholds ThresholdSource) *Scorer {
	return &Scorer{
		weights:        weights,
		requiredFields: defaultRequiredFields,
		thresholds:     thresholds,
	}
}

// WithRequiredFields overrides the completeness field set.
func (s *Scorer) WithRequiredFields(fields []string) *Scorer {
	if len(fields) > 0 {
		s.requiredFields = fields
	}
	return s
}

func (s *Scorer) autoApprove() float64 {
	if s.thresholds != nil {
		return s.thresholds.AutoApprove()
	}
	return 0.95
}

// Score computes the composite confidence for a (field, value, context)
// triple as the weighted sum of source reliability, completeness,
// field-specific validation, and cross-field consistency.
func (s *Scorer) Score(field, value string, ctx model.Context) model.ConfidenceScore {
	reliability := s.scoreSource(ctx)
	completeness, present := s.scoreCompleteness(ctx)
	fieldScore := validateField(field, value)
	consistency := scoreConsistency(field, value, ctx)

	composite := s.weights.SourceReliability*reliability +
		s.weights.Completeness*completeness +
		s.weights.FieldValidation*fieldScore +
		s.weights.Consistency*consistency
	composite = model.Clamp01(composite)

	factors := []string{
		fmt.Sprintf("source reliability (%s): %.2f", sourceName(ctx), reliability),
		fmt.Sprintf("data completeness: %d/%d required fields (%.2f)", present, len(s.requiredFields), completeness),
		fmt.Sprintf("%s validation: %.2f", field, fieldScore),
		fmt.Sprintf("cross-field consistency: %.2f", consistency),
	}

	return model.ConfidenceScore{
		Field:              field,
		Value:              value,
		Confidence:         composite,
		Level:              model.LevelFor(composite),
		Factors:            factors,
		ValidationRequired: composite < s.autoApprove(),
	}
}

// scoreSource looks up the reliability of the context's declared source.
func (s *Scorer) scoreSource(ctx model.Context) float64 {
	if r, ok := sourceReliability[sourceName(ctx)]; ok {
		return r
	}
	return unknownSourceReliability
}

func sourceName(ctx model.Context) string {
	src := strings.ToLower(strings.TrimSpace(ctx.String("source")))
	if src == "" {
		return "unknown"
	}
	return src
}

// scoreCompleteness returns the fraction of required fields present and the
// count of those present.
func (s *Scorer) scoreCompleteness(ctx model.Context) (float64, int) {
	if len(s.requiredFields) == 0 {
		return 1.0, 0
	}
	present := 0
	for _, f := range s.requiredFields {
		if ctx.Has(f) {
			present++
		}
	}
	return float64(present) / float64(len(s.requiredFields)), present
}
