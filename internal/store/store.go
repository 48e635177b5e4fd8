// Package store persists a validation audit trail. The queue itself is
// in-memory and process-scoped; the store is the downstream record the CLI
// and server wire in for history across runs.
package store

import (
	"context"

	"github.com/sells-group/outreach-cli/internal/model"
)

// RequestFilter specifies criteria for listing audited requests.
type RequestFilter struct {
	Field  string                 `json:"field,omitempty"`
	Status model.ValidationStatus `json:"status,omitempty"`
	Limit  int                    `json:"limit,omitempty"`
}

// Store defines the audit persistence interface. It satisfies the
// validation queue's AuditSink.
type Store interface {
	RecordRequest(ctx context.Context, req model.ValidationRequest) error
	RecordResponse(ctx context.Context, resp model.ValidationResponse) error
	GetRequest(ctx context.Context, id string) (*model.ValidationRequest, error)
	ListRequests(ctx context.Context, filter RequestFilter) ([]model.ValidationRequest, error)

	Migrate(ctx context.Context) error
	Close() error
}
