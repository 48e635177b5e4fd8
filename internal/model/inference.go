package model

// FieldInference is a deterministically derived field value produced when a
// catalog rule's condition holds against a context.
type FieldInference struct {
	Field        string   `json:"field"`
	Value        string   `json:"value"`
	Confidence   float64  `json:"confidence"`
	Reasoning    string   `json:"reasoning"`
	SourceFields []string `json:"source_fields"`
}
