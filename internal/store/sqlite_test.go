package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleRequest(id string, at time.Time) model.ValidationRequest {
	return model.ValidationRequest{
		ID:          id,
		Field:       "email",
		Value:       "jane@acme.com",
		Confidence:  0.55,
		Context:     model.Context{"name": "Jane"},
		RequestedBy: "pipeline",
		RequestedAt: at,
		Status:      model.StatusPending,
	}
}

func TestSQLiteRecordAndGetRequest(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, s.RecordRequest(ctx, sampleRequest("vr-1", now)))

	got, err := s.GetRequest(ctx, "vr-1")
	require.NoError(t, err)
	assert.Equal(t, "email", got.Field)
	assert.Equal(t, "jane@acme.com", got.Value)
	assert.Equal(t, 0.55, got.Confidence)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Equal(t, "Jane", got.Context.String("name"))
	assert.Nil(t, got.ValidatedAt)
}

func TestSQLiteGetRequest_NotFound(t *testing.T) {
	s := newTestSQLite(t)
	_, err := s.GetRequest(context.Background(), "vr-nope")
	assert.Error(t, err)
}

func TestSQLiteRecordResponse(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, s.RecordRequest(ctx, sampleRequest("vr-1", now)))

	adj := -0.1
	resp := model.ValidationResponse{
		RequestID:            "vr-1",
		Status:               model.StatusApproved,
		Feedback:             "confirmed by phone",
		ValidatedBy:          "alex",
		ValidatedAt:          now.Add(time.Minute),
		ConfidenceAdjustment: &adj,
	}
	require.NoError(t, s.RecordResponse(ctx, resp))

	got, err := s.GetRequest(ctx, "vr-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, got.Status)
	assert.Equal(t, "confirmed by phone", got.HumanFeedback)
	assert.Equal(t, "alex", got.ValidatedBy)
	require.NotNil(t, got.ValidatedAt)
}

func TestSQLiteListRequests(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	reqs := []model.ValidationRequest{
		sampleRequest("vr-1", base),
		sampleRequest("vr-2", base.Add(time.Second)),
		sampleRequest("vr-3", base.Add(2*time.Second)),
	}
	reqs[1].Field = "phone"
	for _, r := range reqs {
		require.NoError(t, s.RecordRequest(ctx, r))
	}
	require.NoError(t, s.RecordResponse(ctx, model.ValidationResponse{
		RequestID: "vr-1", Status: model.StatusApproved, ValidatedAt: base.Add(time.Minute),
	}))

	t.Run("all, newest first", func(t *testing.T) {
		out, err := s.ListRequests(ctx, RequestFilter{})
		require.NoError(t, err)
		require.Len(t, out, 3)
		assert.Equal(t, "vr-3", out[0].ID)
		assert.Equal(t, "vr-1", out[2].ID)
	})

	t.Run("by field", func(t *testing.T) {
		out, err := s.ListRequests(ctx, RequestFilter{Field: "phone"})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "vr-2", out[0].ID)
	})

	t.Run("by status", func(t *testing.T) {
		out, err := s.ListRequests(ctx, RequestFilter{Status: model.StatusApproved})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "vr-1", out[0].ID)
	})

	t.Run("with limit", func(t *testing.T) {
		out, err := s.ListRequests(ctx, RequestFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, out, 2)
	})
}

func TestSQLiteDeleteResolvedBefore(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, s.RecordRequest(ctx, sampleRequest("vr-old", base.Add(-48*time.Hour))))
	require.NoError(t, s.RecordRequest(ctx, sampleRequest("vr-new", base)))
	require.NoError(t, s.RecordResponse(ctx, model.ValidationResponse{
		RequestID: "vr-old", Status: model.StatusRejected, ValidatedAt: base.Add(-47 * time.Hour),
	}))

	n, err := s.DeleteResolvedBefore(ctx, base.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.GetRequest(ctx, "vr-old")
	assert.Error(t, err)
	_, err = s.GetRequest(ctx, "vr-new")
	assert.NoError(t, err, "pending requests are never pruned")
}
