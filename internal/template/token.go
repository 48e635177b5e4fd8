// Package template parses {{placeholder}} tokens in outreach templates,
// resolves them against a context, and renders the result.
package template

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

// tokenRe recognizes placeholder tokens. A single scan produces every
// candidate token; classification and resolution happen per token
// afterwards, so the template is never re-scanned per pattern family.
var tokenRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// token is a classified placeholder occurrence.
type token struct {
	Literal string // verbatim token text, e.g. "{{ first_name }}"
	Name    string // inner name, e.g. "first_name"
	Type    model.VariableType
	Key     string // canonical key after alias normalization
	Index   int    // 1-based slot for numbered families, 0 otherwise
	Known   bool   // false for tokens outside every pattern family
}

// numbered family aliases; each collapses to the canonical prefix.
var numberedAliases = map[string]struct {
	canonical string
	varType   model.VariableType
}{
	"pinpoint":   {"pinpoint", model.VarPinpoint},
	"pain_point": {"pinpoint", model.VarPinpoint},
	"challenge":  {"pinpoint", model.VarPinpoint},
	"solution":   {"solution", model.VarSolution},
	"approach":   {"solution", model.VarSolution},
	"method":     {"solution", model.VarSolution},
	"metric":     {"metric", model.VarMetric},
	"result":     {"metric", model.VarMetric},
	"outcome":    {"metric", model.VarMetric},
}

var contactKeys = map[string]bool{
	"first_name": true,
	"last_name":  true,
	"full_name":  true,
	"title":      true,
	"email":      true,
	"phone":      true,
	"linkedin":   true,
}

var companyKeys = map[string]bool{
	"company_name":        true,
	"company_size":        true,
	"industry":            true,
	"company_description": true,
	"website":             true,
	"location":            true,
}

var personalKeys = map[string]bool{
	"my_name":    true,
	"my_title":   true,
	"my_company": true,
	"my_email":   true,
	"my_phone":   true,
}

var numberedRe = regexp.MustCompile(`^([a-z_]+)_(\d+)$`)

// classify maps a token name to its category and canonical key. Numbered
// synonyms collapse before lookup so challenge_2 and pain_point_2 resolve
// identically to pinpoint_2.
func classify(name string) token {
	lower := strings.ToLower(name)

	if m := numberedRe.FindStringSubmatch(lower); m != nil {
		if fam, ok := numberedAliases[m[1]]; ok {
			idx, _ := strconv.Atoi(m[2])
			return token{
				Name:  name,
				Type:  fam.varType,
				Key:   fam.canonical + "_" + m[2],
				Index: idx,
				Known: true,
			}
		}
	}

	switch {
	case contactKeys[lower]:
		return token{Name: name, Type: model.VarContact, Key: lower, Known: true}
	case companyKeys[lower]:
		return token{Name: name, Type: model.VarCompany, Key: lower, Known: true}
	case personalKeys[lower]:
		return token{Name: name, Type: model.VarPersonal, Key: lower, Known: true}
	case strings.HasPrefix(lower, "custom_"):
		return token{Name: name, Type: model.VarCustom, Key: lower, Known: true}
	case strings.HasPrefix(lower, "custom."):
		return token{Name: name, Type: model.VarCustom, Key: "custom_" + strings.TrimPrefix(lower, "custom."), Known: true}
	}

	// Catch-all: unrecognized tokens still get a direct-lookup attempt and
	// otherwise surface as missing.
	return token{Name: name, Type: model.VarCustom, Key: lower, Known: false}
}

// scan extracts every distinct token from the template, preserving first
// occurrence order. A brace imbalance is a malformed template.
func scan(tmpl string) ([]token, error) {
	if opens, closes := strings.Count(tmpl, "{{"), strings.Count(tmpl, "}}"); opens != closes {
		return nil, errUnbalanced(opens, closes)
	}

	seen := make(map[string]bool)
	var tokens []token
	for _, m := range tokenRe.FindAllStringSubmatch(tmpl, -1) {
		literal, name := m[0], m[1]
		if seen[literal] {
			continue
		}
		seen[literal] = true
		tok := classify(name)
		tok.Literal = literal
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

type unbalancedError struct {
	opens, closes int
}

func errUnbalanced(opens, closes int) error {
	return &unbalancedError{opens: opens, closes: closes}
}

func (e *unbalancedError) Error() string {
	return "unbalanced placeholder braces: " +
		strconv.Itoa(e.opens) + " opening vs " + strconv.Itoa(e.closes) + " closing"
}
