package template

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

// MissingMarker wraps an unresolved token during substitution so rendered
// text never drops a placeholder silently.
const MissingMarker = "[MISSING: %s]"

// descriptionPreviewLen caps value previews in AvailableVariables output.
const descriptionPreviewLen = 50

// Engine parses and renders outreach templates. It holds no state; every
// call is a pure function of its inputs.
type Engine struct{}

// NewEngine returns a template engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Parse tokenizes the template and resolves each token against the context.
// Unresolved tokens are reported verbatim in MissingVariables, each exactly
// once. A malformed template yields ParseSuccess=false with an error
// message rather than an error return.
func (e *Engine) Parse(tmpl string, ctx model.Context) model.TemplateParseResult {
	result := model.TemplateParseResult{Template: tmpl}

	tokens, err := scan(tmpl)
	if err != nil {
		result.ErrorMessage = err.Error()
		return result
	}
	result.ParseSuccess = true

	for _, tok := range tokens {
		res, ok := resolve(tok, ctx)
		if !ok {
			result.MissingVariables = append(result.MissingVariables, tok.Literal)
			continue
		}
		v := model.TemplateVariable{
			Name:        tok.Literal,
			Type:        tok.Type,
			Value:       res.Value,
			Confidence:  res.Confidence,
			Source:      res.Source,
			Description: describe(tok),
			Required:    tok.Type == model.VarContact || tok.Type == model.VarCompany,
		}
		if res.Source != "context" {
			v.Fallback = res.Source
		}
		result.Variables = append(result.Variables, v)
	}
	return result
}

// Substitute renders the template, replacing resolved tokens with their
// values and unresolved tokens with an explicit missing marker. A malformed
// template is returned unchanged.
func (e *Engine) Substitute(tmpl string, ctx model.Context) string {
	result := e.Parse(tmpl, ctx)
	if !result.ParseSuccess {
		return tmpl
	}

	out := tmpl
	for _, v := range result.Variables {
		out = strings.ReplaceAll(out, v.Name, v.Value)
	}
	for _, missing := range result.MissingVariables {
		out = strings.ReplaceAll(out, missing, fmt.Sprintf(MissingMarker, missing))
	}
	return out
}

// Validate reports whether the template can be fully rendered from the
// context: parsing succeeded and no variable is missing.
func (e *Engine) Validate(tmpl string, ctx model.Context) model.TemplateValidation {
	result := e.Parse(tmpl, ctx)
	return model.TemplateValidation{
		Valid:            result.ParseSuccess && len(result.MissingVariables) == 0,
		VariablesFound:   len(result.Variables),
		MissingVariables: result.MissingVariables,
		Variables:        result.Variables,
		ErrorMessage:     result.ErrorMessage,
	}
}

// AvailableVariables introspects the context and advertises every token
// that would currently resolve, with a short value preview.
func (e *Engine) AvailableVariables(ctx model.Context) []model.AvailableVariable {
	var out []model.AvailableVariable
	seen := make(map[string]bool)

	add := func(name string, typ model.VariableType, preview string) {
		literal := "{{" + name + "}}"
		if seen[literal] {
			return
		}
		seen[literal] = true
		out = append(out, model.AvailableVariable{
			Name:        literal,
			Type:        typ,
			Description: truncatePreview(preview),
		})
	}

	// Top-level scalar keys resolve directly.
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch ctx[k].(type) {
		case map[string]any, model.Context, []any:
			continue
		}
		if !ctx.Has(k) {
			continue
		}
		tok := classify(k)
		add(k, tok.Type, ctx.String(k))
	}

	// Nested namespaces advertise their canonical tokens.
	for key := range contactKeys {
		tok := classify(key)
		if res, ok := resolveContact(ctx, key); ok {
			add(key, tok.Type, res.Value)
		}
	}
	for key := range companyKeys {
		tok := classify(key)
		if res, ok := resolveCompany(ctx, key); ok {
			add(key, tok.Type, res.Value)
		}
	}
	for key := range personalKeys {
		tok := classify(key)
		if res, ok := resolvePersonal(ctx, key); ok {
			add(key, tok.Type, res.Value)
		}
	}

	// Indexed match lists advertise one token per record.
	for listKey, family := range map[string]model.VariableType{
		"pinpoint_matches": model.VarPinpoint,
		"solution_matches": model.VarSolution,
		"metric_matches":   model.VarMetric,
	} {
		prefix := strings.TrimSuffix(listKey, "_matches")
		for i := range ctx.Slice(listKey) {
			name := fmt.Sprintf("%s_%d", prefix, i+1)
			if res, ok := resolve(classify(name), ctx); ok {
				add(name, family, res.Value)
			}
		}
	}

	// Custom variables.
	customKeys := make([]string, 0)
	for k := range ctx.Map("custom_variables") {
		customKeys = append(customKeys, k)
	}
	sort.Strings(customKeys)
	for _, k := range customKeys {
		name := k
		if !strings.HasPrefix(name, "custom_") {
			name = "custom_" + name
		}
		if res, ok := resolveCustom(ctx, name); ok {
			add(name, model.VarCustom, res.Value)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// describe produces a short human description for a classified token.
func describe(tok token) string {
	switch tok.Type {
	case model.VarPinpoint:
		return fmt.Sprintf("Pain point #%d from research matches", tok.Index)
	case model.VarSolution:
		return fmt.Sprintf("Proposed solution #%d from research matches", tok.Index)
	case model.VarMetric:
		return fmt.Sprintf("Result metric #%d from research matches", tok.Index)
	case model.VarContact:
		return "Contact " + strings.ReplaceAll(tok.Key, "_", " ")
	case model.VarCompany:
		return "Company " + strings.ReplaceAll(strings.TrimPrefix(tok.Key, "company_"), "_", " ")
	case model.VarPersonal:
		return "Sender " + strings.ReplaceAll(strings.TrimPrefix(tok.Key, "my_"), "_", " ")
	default:
		return "Custom variable " + strings.TrimPrefix(tok.Key, "custom_")
	}
}

func truncatePreview(s string) string {
	// Truncate on runes so a multi-byte value is never split mid-character.
	runes := []rune(s)
	if len(runes) <= descriptionPreviewLen {
		return s
	}
	return string(runes[:descriptionPreviewLen-3]) + "..."
}
