// Package pipeline composes inference, scoring, validation gating, and
// template rendering into the end-to-end outreach flow.
package pipeline

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/confidence"
	"github.com/sells-group/outreach-cli/internal/inference"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/template"
	"github.com/sells-group/outreach-cli/internal/validation"
)

// GatePolicy decides what happens to accepted inferences whose confidence
// sits between the engine's acceptance floor and the queue's auto-approve
// threshold.
type GatePolicy string

const (
	// GateAuto merges in-band inferences provisionally and queues them for
	// review at the same time.
	GateAuto GatePolicy = "auto"
	// GateStrict only merges inferences at or above auto-approve; the band
	// goes to the queue unmerged.
	GateStrict GatePolicy = "strict"
)

// ParsePolicy returns the matching policy, defaulting to GateAuto.
func ParsePolicy(s string) GatePolicy {
	if GatePolicy(s) == GateStrict {
		return GateStrict
	}
	return GateAuto
}

// FieldOutcome records what the pipeline did with one field.
type FieldOutcome struct {
	Field     string                `json:"field"`
	Value     string                `json:"value"`
	Inferred  bool                  `json:"inferred"`
	Merged    bool                  `json:"merged"`
	Score     model.ConfidenceScore `json:"score"`
	RequestID string                `json:"request_id,omitempty"`
	Rejected  bool                  `json:"rejected"`
}

// OutreachResult is the end-to-end output for one context + template.
type OutreachResult struct {
	Context     model.Context             `json:"context"`
	Inferences  []model.FieldInference    `json:"inferences"`
	Outcomes    []FieldOutcome            `json:"outcomes"`
	ParseResult model.TemplateParseResult `json:"parse_result"`
	Rendered    string                    `json:"rendered"`
}

// Pipeline wires the core subsystems together.
type Pipeline struct {
	engine      *inference.Engine
	scorer      *confidence.Scorer
	queue       *validation.Queue
	templates   *template.Engine
	policy      GatePolicy
	requestedBy string
}

// New creates a pipeline over already-constructed subsystems.
func New(engine *inference.Engine, scorer *confidence.Scorer, queue *validation.Queue, templates *template.Engine, policy GatePolicy, requestedBy string) *Pipeline {
	if requestedBy == "" {
		requestedBy = "pipeline"
	}
	return &Pipeline{
		engine:      engine,
		scorer:      scorer,
		queue:       queue,
		templates:   templates,
		policy:      policy,
		requestedBy: requestedBy,
	}
}

// Run executes the flow for one context and template: infer missing fields,
// gate and merge, score merged values, queue what needs review, render.
func (p *Pipeline) Run(ctx context.Context, data model.Context, tmpl string) (*OutreachResult, error) {
	inferences := p.engine.Infer(data)
	accepted := p.engine.ValidateInferences(inferences)

	merged := data.Clone()
	thresholds := p.queue.GetThresholds()

	var outcomes []FieldOutcome

	// Best inference per missing field, highest confidence first.
	for _, inf := range bestPerField(accepted) {
		if merged.Has(inf.Field) {
			continue
		}

		outcome := FieldOutcome{Field: inf.Field, Value: inf.Value, Inferred: true}

		switch {
		case inf.Confidence >= thresholds.AutoApprove:
			merged[inf.Field] = inf.Value
			outcome.Merged = true
		case p.policy == GateAuto:
			// Provisional merge plus a review request.
			merged[inf.Field] = inf.Value
			outcome.Merged = true
			outcome.RequestID = p.createRequest(ctx, inf.Field, inf.Value, inf.Confidence, data)
		default:
			outcome.RequestID = p.createRequest(ctx, inf.Field, inf.Value, inf.Confidence, data)
		}

		outcome.Score = p.scorer.Score(inf.Field, inf.Value, merged)
		outcomes = append(outcomes, outcome)
	}

	// Score observed scalar fields; sub-threshold values go to the queue,
	// hopeless ones are flagged rejected without queueing.
	inferredFields := make(map[string]bool)
	for _, o := range outcomes {
		inferredFields[o.Field] = true
	}
	for _, field := range scalarFields(merged) {
		if inferredFields[field] || field == "source" {
			continue
		}
		value := merged.String(field)
		score := p.scorer.Score(field, value, merged)
		outcome := FieldOutcome{Field: field, Value: value, Merged: true, Score: score}

		switch {
		case !score.ValidationRequired:
			// Above auto-approve; nothing to review.
		case score.Confidence < thresholds.Reject:
			outcome.Rejected = true
		default:
			outcome.RequestID = p.createRequest(ctx, field, value, score.Confidence, data)
		}
		outcomes = append(outcomes, outcome)
	}

	parse := p.templates.Parse(tmpl, merged)
	rendered := p.templates.Substitute(tmpl, merged)

	zap.L().Info("pipeline: run complete",
		zap.Int("inferences", len(inferences)),
		zap.Int("accepted", len(accepted)),
		zap.Int("missing_variables", len(parse.MissingVariables)),
	)

	return &OutreachResult{
		Context:     merged,
		Inferences:  inferences,
		Outcomes:    outcomes,
		ParseResult: parse,
		Rendered:    rendered,
	}, nil
}

func (p *Pipeline) createRequest(ctx context.Context, field, value string, conf float64, data model.Context) string {
	req, err := p.queue.CreateRequest(ctx, field, value, conf, data, p.requestedBy)
	if err != nil {
		zap.L().Warn("pipeline: create validation request failed",
			zap.String("field", field),
			zap.Error(err),
		)
		return ""
	}
	return req.ID
}

// bestPerField keeps the highest-confidence inference for each field,
// preserving catalog order between fields.
func bestPerField(inferences []model.FieldInference) []model.FieldInference {
	best := make(map[string]model.FieldInference)
	var order []string
	for _, inf := range inferences {
		cur, seen := best[inf.Field]
		if !seen {
			order = append(order, inf.Field)
			best[inf.Field] = inf
			continue
		}
		if inf.Confidence > cur.Confidence {
			best[inf.Field] = inf
		}
	}
	out := make([]model.FieldInference, 0, len(order))
	for _, f := range order {
		out = append(out, best[f])
	}
	return out
}

// scalarFields returns sorted top-level keys holding scalar values.
func scalarFields(ctx model.Context) []string {
	var fields []string
	for k, v := range ctx {
		switch v.(type) {
		case map[string]any, model.Context, []any, nil:
			continue
		}
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}
