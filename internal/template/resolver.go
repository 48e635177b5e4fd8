package template

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/outreach-cli/internal/model"
)

// resolution is a resolved token value with provenance.
type resolution struct {
	Value      string
	Source     string
	Confidence float64
}

var titleCaser = cases.Title(language.English)

// resolve finds a value for a token: direct context key first, then the
// category-specific fallback path.
func resolve(tok token, ctx model.Context) (resolution, bool) {
	// Direct key lookup applies to every category, including tokens outside
	// the known families.
	if ctx.Has(tok.Key) {
		return resolution{Value: ctx.String(tok.Key), Source: "context", Confidence: 1.0}, true
	}
	if tok.Name != tok.Key && ctx.Has(tok.Name) {
		return resolution{Value: ctx.String(tok.Name), Source: "context", Confidence: 1.0}, true
	}
	if !tok.Known {
		return resolution{}, false
	}

	switch tok.Type {
	case model.VarPinpoint:
		return resolveMatch(ctx, "pinpoint_matches", tok.Index, "pain_point", "challenge", "value")
	case model.VarSolution:
		return resolveMatch(ctx, "solution_matches", tok.Index, "solution", "approach", "value")
	case model.VarMetric:
		return resolveMatch(ctx, "metric_matches", tok.Index, "metric", "result", "value")
	case model.VarContact:
		return resolveContact(ctx, tok.Key)
	case model.VarCompany:
		return resolveCompany(ctx, tok.Key)
	case model.VarPersonal:
		return resolvePersonal(ctx, tok.Key)
	case model.VarCustom:
		return resolveCustom(ctx, tok.Key)
	}
	return resolution{}, false
}

// resolveMatch pulls a sub-field from an indexed list of structured match
// records. Index is the token's 1-based slot.
func resolveMatch(ctx model.Context, listKey string, index int, fieldSynonyms ...string) (resolution, bool) {
	matches := ctx.Slice(listKey)
	if index < 1 || index > len(matches) {
		return resolution{}, false
	}
	record, ok := matches[index-1].(map[string]any)
	if !ok {
		// A bare string entry is the value itself.
		if s, isStr := matches[index-1].(string); isStr && s != "" {
			return resolution{Value: s, Source: listKey, Confidence: 0.9}, true
		}
		return resolution{}, false
	}
	for _, syn := range fieldSynonyms {
		if v, present := record[syn]; present && v != nil {
			s := model.Stringify(v)
			if s != "" {
				return resolution{Value: s, Source: listKey, Confidence: 0.9}, true
			}
		}
	}
	return resolution{}, false
}

func resolveContact(ctx model.Context, key string) (resolution, bool) {
	contact := ctx.Map("contact")
	if contact == nil {
		return resolution{}, false
	}

	synonyms := map[string][]string{
		"first_name": {"first_name"},
		"last_name":  {"last_name"},
		"full_name":  {"full_name", "name"},
		"title":      {"title", "job_title"},
		"email":      {"email", "email_address"},
		"phone":      {"phone", "phone_number"},
		"linkedin":   {"linkedin", "linkedin_url"},
	}
	if r, ok := lookupSynonyms(contact, synonyms[key], "contact", 0.9); ok {
		return r, true
	}

	// Derived names: split a combined "name" when explicit first/last keys
	// are absent, then fall back to the email local part.
	switch key {
	case "first_name":
		if first, _ := splitName(stringAt(contact, "name")); first != "" {
			return resolution{Value: first, Source: "contact.name", Confidence: 0.8}, true
		}
		if full := nameFromEmail(stringAt(contact, "email")); full != "" {
			first, _ := splitName(full)
			return resolution{Value: first, Source: "contact.email", Confidence: 0.6}, true
		}
	case "last_name":
		if _, last := splitName(stringAt(contact, "name")); last != "" {
			return resolution{Value: last, Source: "contact.name", Confidence: 0.8}, true
		}
	case "full_name":
		if full := nameFromEmail(stringAt(contact, "email")); full != "" {
			return resolution{Value: full, Source: "contact.email", Confidence: 0.6}, true
		}
	}
	return resolution{}, false
}

func resolveCompany(ctx model.Context, key string) (resolution, bool) {
	company := ctx.Map("company")
	if company == nil {
		return resolution{}, false
	}
	synonyms := map[string][]string{
		"company_name":        {"name", "company_name"},
		"company_size":        {"size", "company_size"},
		"industry":            {"industry"},
		"company_description": {"description"},
		"website":             {"website", "url"},
		"location":            {"location", "city"},
	}
	return lookupSynonyms(company, synonyms[key], "company", 0.9)
}

func resolvePersonal(ctx model.Context, key string) (resolution, bool) {
	personal := ctx.Map("personal")
	if personal == nil {
		return resolution{}, false
	}
	synonyms := map[string][]string{
		"my_name":    {"name", "full_name"},
		"my_title":   {"title"},
		"my_company": {"company", "company_name"},
		"my_email":   {"email"},
		"my_phone":   {"phone"},
	}
	return lookupSynonyms(personal, synonyms[key], "personal", 0.9)
}

func resolveCustom(ctx model.Context, key string) (resolution, bool) {
	custom := ctx.Map("custom_variables")
	if custom == nil {
		return resolution{}, false
	}
	stripped := strings.TrimPrefix(key, "custom_")
	for _, candidate := range []string{key, stripped} {
		if v, present := custom[candidate]; present && v != nil {
			s := model.Stringify(v)
			if s != "" {
				return resolution{Value: s, Source: "custom_variables", Confidence: 0.9}, true
			}
		}
	}
	return resolution{}, false
}

func lookupSynonyms(m map[string]any, keys []string, source string, confidence float64) (resolution, bool) {
	for _, k := range keys {
		if v, present := m[k]; present && v != nil {
			s := model.Stringify(v)
			if strings.TrimSpace(s) != "" {
				return resolution{Value: s, Source: source, Confidence: confidence}, true
			}
		}
	}
	return resolution{}, false
}

func stringAt(m map[string]any, key string) string {
	if v, ok := m[key]; ok && v != nil {
		return model.Stringify(v)
	}
	return ""
}

// splitName divides a combined name into first and last parts.
func splitName(full string) (first, last string) {
	parts := strings.Fields(strings.TrimSpace(full))
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// nameFromEmail derives a display name from an email local part:
// "jane.doe@acme.com" becomes "Jane Doe".
func nameFromEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return ""
	}
	local := email[:at]
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
	local = strings.TrimSpace(local)
	if local == "" || strings.ContainsAny(local, "0123456789") {
		return ""
	}
	return titleCaser.String(strings.ToLower(local))
}
