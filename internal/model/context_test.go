package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextHas(t *testing.T) {
	ctx := Context{
		"name":   "Jane",
		"empty":  "",
		"blank":  "   ",
		"nilval": nil,
		"count":  0,
		"nested": map[string]any{"a": 1},
	}

	assert.True(t, ctx.Has("name"))
	assert.False(t, ctx.Has("empty"))
	assert.False(t, ctx.Has("blank"))
	assert.False(t, ctx.Has("nilval"))
	assert.False(t, ctx.Has("absent"))
	assert.True(t, ctx.Has("count"), "zero is a value, not a gap")
	assert.True(t, ctx.Has("nested"))
}

func TestContextString(t *testing.T) {
	ctx := Context{
		"name":  "Jane",
		"count": 75,
		"rate":  2.5,
		"whole": 3.0,
		"ok":    true,
	}

	assert.Equal(t, "Jane", ctx.String("name"))
	assert.Equal(t, "75", ctx.String("count"))
	assert.Equal(t, "2.5", ctx.String("rate"))
	assert.Equal(t, "3", ctx.String("whole"), "whole floats drop the decimal")
	assert.Equal(t, "true", ctx.String("ok"))
	assert.Equal(t, "", ctx.String("absent"))
}

func TestContextFloat(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
		ok    bool
	}{
		{"int", 75, 75, true},
		{"float", 2.5, 2.5, true},
		{"numeric string", "75", 75, true},
		{"currency string", "$5,000,000", 5_000_000, true},
		{"non-numeric string", "lots", 0, false},
		{"empty string", "", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Context{"k": tt.value}.Float("k")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContextMapAndSlice(t *testing.T) {
	ctx := Context{
		"contact": map[string]any{"name": "Jane"},
		"nested":  Context{"name": "Acme"},
		"matches": []any{"a", "b"},
	}

	assert.Equal(t, "Jane", ctx.Map("contact")["name"])
	assert.Equal(t, "Acme", ctx.Map("nested")["name"])
	assert.Nil(t, ctx.Map("matches"))
	assert.Len(t, ctx.Slice("matches"), 2)
	assert.Nil(t, ctx.Slice("contact"))
}

func TestContextClone(t *testing.T) {
	orig := Context{"a": 1}
	clone := orig.Clone()
	clone["b"] = 2

	assert.Len(t, orig, 1)
	assert.Len(t, clone, 2)
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		confidence float64
		want       ConfidenceLevel
	}{
		{0.0, LevelLow},
		{0.60, LevelLow},
		{0.61, LevelMedium},
		{0.80, LevelMedium},
		{0.81, LevelHigh},
		{0.95, LevelHigh},
		{0.96, LevelVeryHigh},
		{1.0, LevelVeryHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.confidence), "confidence=%v", tt.confidence)
	}
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.5))
	assert.Equal(t, 0.5, Clamp01(0.5))
	assert.Equal(t, 1.0, Clamp01(1.5))
}

func TestParseValidationStatus(t *testing.T) {
	assert.Equal(t, StatusApproved, ParseValidationStatus("approved"))
	assert.Equal(t, StatusRejected, ParseValidationStatus("rejected"))
	assert.Equal(t, StatusNeedsReview, ParseValidationStatus("needs_review"))
	assert.Equal(t, ValidationStatus(""), ParseValidationStatus("pending"))
	assert.Equal(t, ValidationStatus(""), ParseValidationStatus("maybe"))
}
