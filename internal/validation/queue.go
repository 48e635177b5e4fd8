// Package validation holds the human-in-the-loop review queue for
// low-confidence field values.
package validation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Sentinel errors for caller-recoverable conditions. Check with eris.Is.
var (
	ErrNotFound        = eris.New("validation: request not found")
	ErrAlreadyResolved = eris.New("validation: request already resolved")
	ErrInvalidInput    = eris.New("validation: invalid input")
)

// DefaultThresholds returns the standard queue gate configuration.
func DefaultThresholds() model.Thresholds {
	return model.Thresholds{
		AutoApprove: 0.95,
		HumanReview: 0.70,
		Reject:      0.50,
	}
}

// AuditSink receives a copy of every created request and submitted response.
// Sink failures are logged, never propagated; the queue is the source of
// truth for in-process state.
type AuditSink interface {
	RecordRequest(ctx context.Context, req model.ValidationRequest) error
	RecordResponse(ctx context.Context, resp model.ValidationResponse) error
}

// Queue owns all validation requests for the life of the process. All state
// is guarded by a single mutex so id generation, resolution, and threshold
// updates are race-free.
type Queue struct {
	mu         sync.Mutex
	requests   map[string]*model.ValidationRequest
	order      []string
	thresholds model.Thresholds
	counter    uint64
	now        func() time.Time
	audit      AuditSink
}

// NewQueue creates an empty queue with the given thresholds.
func NewQueue(thresholds model.Thresholds) *Queue {
	return &Queue{
		requests:   make(map[string]*model.ValidationRequest),
		thresholds: thresholds,
		now:        time.Now,
	}
}

// WithAuditSink attaches an optional persistence sink.
func (q *Queue) WithAuditSink(sink AuditSink) *Queue {
	q.audit = sink
	return q
}

// Restore seeds the queue with previously persisted requests so resolution
// and history survive process restarts. Restored entries keep their ids and
// statuses, never pass through the audit sink, and are ordered oldest first;
// ids already present are skipped.
func (q *Queue) Restore(reqs []model.ValidationRequest) {
	sorted := make([]model.ValidationRequest, len(reqs))
	copy(sorted, reqs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RequestedAt.Before(sorted[j].RequestedAt)
	})

	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range sorted {
		req := sorted[i]
		if req.ID == "" {
			continue
		}
		if _, ok := q.requests[req.ID]; ok {
			continue
		}
		q.requests[req.ID] = &req
		q.order = append(q.order, req.ID)
	}
}

// WithNow sets a fixed clock for testing.
func (q *Queue) WithNow(fn func() time.Time) *Queue {
	q.now = fn
	return q
}

// AutoApprove returns the current auto-approve threshold. Implements the
// confidence scorer's threshold source.
func (q *Queue) AutoApprove() float64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.thresholds.AutoApprove
}

// CreateRequest records a new pending validation request. IDs are unique
// within the process even for identical submissions created concurrently.
func (q *Queue) CreateRequest(ctx context.Context, field, value string, confidence float64, reqCtx model.Context, requestedBy string) (model.ValidationRequest, error) {
	if field == "" {
		return model.ValidationRequest{}, eris.Wrap(ErrInvalidInput, "field is required")
	}

	q.mu.Lock()
	q.counter++
	req := model.ValidationRequest{
		ID:          fmt.Sprintf("vr-%d-%d", q.now().UnixNano(), q.counter),
		Field:       field,
		Value:       value,
		Confidence:  model.Clamp01(confidence),
		Context:     reqCtx,
		RequestedBy: requestedBy,
		RequestedAt: q.now().UTC(),
		Status:      model.StatusPending,
	}
	q.requests[req.ID] = &req
	q.order = append(q.order, req.ID)
	snapshot := req
	q.mu.Unlock()

	q.recordRequest(ctx, snapshot)

	zap.L().Debug("validation: request created",
		zap.String("id", snapshot.ID),
		zap.String("field", field),
		zap.Float64("confidence", snapshot.Confidence),
	)
	return snapshot, nil
}

// SubmitResponse resolves a pending request. Exactly one terminal transition
// is permitted; resubmission fails with ErrAlreadyResolved regardless of
// whether the second status matches the first.
func (q *Queue) SubmitResponse(ctx context.Context, requestID, status, feedback, validatedBy string, confidenceAdjustment *float64) (model.ValidationResponse, error) {
	terminal := model.ParseValidationStatus(status)
	if terminal == "" {
		return model.ValidationResponse{}, eris.Wrapf(ErrInvalidInput, "status %q", status)
	}
	if confidenceAdjustment != nil && (*confidenceAdjustment < -1 || *confidenceAdjustment > 1) {
		return model.ValidationResponse{}, eris.Wrapf(ErrInvalidInput, "confidence adjustment %.2f outside [-1,1]", *confidenceAdjustment)
	}

	q.mu.Lock()
	req, ok := q.requests[requestID]
	if !ok {
		q.mu.Unlock()
		return model.ValidationResponse{}, eris.Wrapf(ErrNotFound, "request %s", requestID)
	}
	if req.Resolved() {
		q.mu.Unlock()
		return model.ValidationResponse{}, eris.Wrapf(ErrAlreadyResolved, "request %s is %s", requestID, req.Status)
	}

	validatedAt := q.now().UTC()
	req.Status = terminal
	req.HumanFeedback = feedback
	req.ValidatedBy = validatedBy
	req.ValidatedAt = &validatedAt
	if confidenceAdjustment != nil {
		req.Confidence = model.Clamp01(req.Confidence + *confidenceAdjustment)
	}

	resp := model.ValidationResponse{
		RequestID:            requestID,
		Status:               terminal,
		Feedback:             feedback,
		ValidatedBy:          validatedBy,
		ValidatedAt:          validatedAt,
		ConfidenceAdjustment: confidenceAdjustment,
	}
	q.mu.Unlock()

	q.recordResponse(ctx, resp)

	zap.L().Info("validation: request resolved",
		zap.String("id", requestID),
		zap.String("status", string(terminal)),
		zap.String("validated_by", validatedBy),
	)
	return resp, nil
}

// Get returns a copy of the request with the given id.
func (q *Queue) Get(requestID string) (model.ValidationRequest, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	req, ok := q.requests[requestID]
	if !ok {
		return model.ValidationRequest{}, eris.Wrapf(ErrNotFound, "request %s", requestID)
	}
	return *req, nil
}

// Pending returns up to limit pending requests, oldest first. limit <= 0
// means no cap.
func (q *Queue) Pending(limit int) []model.ValidationRequest {
	q.mu.Lock()
	defer q.mu.Unlock()

	var pending []model.ValidationRequest
	for _, id := range q.order {
		req := q.requests[id]
		if req.Status != model.StatusPending {
			continue
		}
		pending = append(pending, *req)
		if limit > 0 && len(pending) == limit {
			break
		}
	}
	return pending
}

// History returns requests filtered by field and/or status (empty string
// matches all), newest first.
func (q *Queue) History(field string, status model.ValidationStatus) []model.ValidationRequest {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []model.ValidationRequest
	for _, id := range q.order {
		req := q.requests[id]
		if field != "" && req.Field != field {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		out = append(out, *req)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RequestedAt.After(out[j].RequestedAt)
	})
	return out
}

// Stats summarizes queue state. The approval rate is approved/total, zero
// when the queue is empty.
func (q *Queue) Stats() model.QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()

	stats := model.QueueStats{TotalRequests: len(q.requests)}
	for _, req := range q.requests {
		switch req.Status {
		case model.StatusPending:
			stats.Pending++
		case model.StatusApproved:
			stats.Approved++
		case model.StatusRejected:
			stats.Rejected++
		case model.StatusNeedsReview:
			stats.NeedsReview++
		}
	}
	if stats.TotalRequests > 0 {
		stats.ApprovalRate = float64(stats.Approved) / float64(stats.TotalRequests)
	}
	return stats
}

// UpdateThresholds applies threshold changes atomically. Unknown keys and
// values outside [0,1] are rejected without applying anything.
func (q *Queue) UpdateThresholds(updates map[string]float64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	next := q.thresholds
	for key, v := range updates {
		if v < 0 || v > 1 {
			return eris.Wrapf(ErrInvalidInput, "threshold %s=%.2f outside [0,1]", key, v)
		}
		switch key {
		case "auto_approve":
			next.AutoApprove = v
		case "human_review":
			next.HumanReview = v
		case "reject":
			next.Reject = v
		default:
			return eris.Wrapf(ErrInvalidInput, "unknown threshold %q", key)
		}
	}
	q.thresholds = next
	return nil
}

// GetThresholds returns the current threshold configuration.
func (q *Queue) GetThresholds() model.Thresholds {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.thresholds
}

func (q *Queue) recordRequest(ctx context.Context, req model.ValidationRequest) {
	if q.audit == nil {
		return
	}
	if err := q.audit.RecordRequest(ctx, req); err != nil {
		zap.L().Warn("validation: audit request failed",
			zap.String("id", req.ID),
			zap.Error(err),
		)
	}
}

func (q *Queue) recordResponse(ctx context.Context, resp model.ValidationResponse) {
	if q.audit == nil {
		return
	}
	if err := q.audit.RecordResponse(ctx, resp); err != nil {
		zap.L().Warn("validation: audit response failed",
			zap.String("request_id", resp.RequestID),
			zap.Error(err),
		)
	}
}
