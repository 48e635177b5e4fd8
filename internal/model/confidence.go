package model

// ConfidenceLevel buckets a composite confidence into display bands.
type ConfidenceLevel string

const (
	LevelLow      ConfidenceLevel = "low"
	LevelMedium   ConfidenceLevel = "medium"
	LevelHigh     ConfidenceLevel = "high"
	LevelVeryHigh ConfidenceLevel = "very_high"
)

// LevelFor maps a confidence value to its fixed band:
// <0.61 low, 0.61-0.80 medium, 0.81-0.95 high, >=0.96 very_high.
func LevelFor(confidence float64) ConfidenceLevel {
	switch {
	case confidence >= 0.96:
		return LevelVeryHigh
	case confidence >= 0.81:
		return LevelHigh
	case confidence >= 0.61:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Clamp01 clamps a confidence to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ConfidenceScore is the composite trust estimate for a (field, value, context)
// triple, with the per-factor breakdown that produced it.
type ConfidenceScore struct {
	Field              string          `json:"field"`
	Value              string          `json:"value"`
	Confidence         float64         `json:"confidence"`
	Level              ConfidenceLevel `json:"level"`
	Factors            []string        `json:"factors"`
	ValidationRequired bool            `json:"validation_required"`
}
