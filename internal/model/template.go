package model

// VariableType classifies a template placeholder and determines its
// resolution fallback path.
type VariableType string

const (
	VarPinpoint VariableType = "pinpoint"
	VarSolution VariableType = "solution"
	VarMetric   VariableType = "metric"
	VarContact  VariableType = "contact"
	VarCompany  VariableType = "company"
	VarPersonal VariableType = "personal"
	VarCustom   VariableType = "custom"
)

// TemplateVariable is a resolved placeholder from a single parse call.
type TemplateVariable struct {
	Name        string       `json:"name"` // literal token, e.g. "{{first_name}}"
	Type        VariableType `json:"type"`
	Value       string       `json:"value"`
	Confidence  float64      `json:"confidence"`
	Source      string       `json:"source"`
	Description string       `json:"description"`
	Required    bool         `json:"required"`
	Fallback    string       `json:"fallback,omitempty"`
}

// TemplateParseResult is the outcome of parsing a template against a context.
// Missing variables are reported verbatim, each exactly once.
type TemplateParseResult struct {
	Template         string             `json:"template"`
	Variables        []TemplateVariable `json:"variables"`
	MissingVariables []string           `json:"missing_variables"`
	ParseSuccess     bool               `json:"parse_success"`
	ErrorMessage     string             `json:"error_message,omitempty"`
}

// TemplateValidation reports whether a template can be fully rendered from a
// context.
type TemplateValidation struct {
	Valid            bool               `json:"valid"`
	VariablesFound   int                `json:"variables_found"`
	MissingVariables []string           `json:"missing_variables"`
	Variables        []TemplateVariable `json:"variables"`
	ErrorMessage     string             `json:"error_message,omitempty"`
}

// AvailableVariable advertises a token that could currently be resolved.
type AvailableVariable struct {
	Name        string       `json:"name"`
	Type        VariableType `json:"type"`
	Description string       `json:"description"`
}
