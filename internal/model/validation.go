package model

import "time"

// ValidationStatus is the review state of a validation request.
type ValidationStatus string

const (
	StatusPending     ValidationStatus = "pending"
	StatusApproved    ValidationStatus = "approved"
	StatusRejected    ValidationStatus = "rejected"
	StatusNeedsReview ValidationStatus = "needs_review"
)

// ParseValidationStatus returns the terminal status matching s, or "" when s
// is not a recognized terminal status. "pending" is not a valid response
// status: a response always resolves a request.
func ParseValidationStatus(s string) ValidationStatus {
	switch ValidationStatus(s) {
	case StatusApproved, StatusRejected, StatusNeedsReview:
		return ValidationStatus(s)
	}
	return ""
}

// ValidationRequest is the human-in-the-loop review unit for a low-confidence
// field value. Created pending; resolved exactly once.
type ValidationRequest struct {
	ID            string           `json:"id"`
	Field         string           `json:"field"`
	Value         string           `json:"value"`
	Confidence    float64          `json:"confidence"`
	Context       Context          `json:"context,omitempty"`
	RequestedBy   string           `json:"requested_by"`
	RequestedAt   time.Time        `json:"requested_at"`
	Status        ValidationStatus `json:"status"`
	HumanFeedback string           `json:"human_feedback,omitempty"`
	ValidatedBy   string           `json:"validated_by,omitempty"`
	ValidatedAt   *time.Time       `json:"validated_at,omitempty"`
}

// Resolved reports whether the request has received its terminal status.
func (r *ValidationRequest) Resolved() bool {
	return r.Status != StatusPending
}

// ValidationResponse is the write-once terminal resolution of a request.
type ValidationResponse struct {
	RequestID            string           `json:"request_id"`
	Status               ValidationStatus `json:"status"`
	Feedback             string           `json:"feedback,omitempty"`
	ValidatedBy          string           `json:"validated_by"`
	ValidatedAt          time.Time        `json:"validated_at"`
	ConfidenceAdjustment *float64         `json:"confidence_adjustment,omitempty"`
}

// Thresholds is the shared queue configuration gating automatic acceptance.
type Thresholds struct {
	AutoApprove float64 `json:"auto_approve" yaml:"auto_approve" mapstructure:"auto_approve"`
	HumanReview float64 `json:"human_review" yaml:"human_review" mapstructure:"human_review"`
	Reject      float64 `json:"reject" yaml:"reject" mapstructure:"reject"`
}

// QueueStats summarizes queue state for reporting.
type QueueStats struct {
	TotalRequests int     `json:"total_requests"`
	Pending       int     `json:"pending"`
	Approved      int     `json:"approved"`
	Rejected      int     `json:"rejected"`
	NeedsReview   int     `json:"needs_review"`
	ApprovalRate  float64 `json:"approval_rate"`
}
