package validation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

func TestCreateRequest(t *testing.T) {
	q := NewQueue(DefaultThresholds())

	req, err := q.CreateRequest(context.Background(), "email", "jane@acme.com", 0.55, model.Context{"name": "Jane"}, "pipeline")
	require.NoError(t, err)

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, "email", req.Field)
	assert.Equal(t, 0.55, req.Confidence)
	assert.Equal(t, model.StatusPending, req.Status)
	assert.Equal(t, "pipeline", req.RequestedBy)
	assert.False(t, req.RequestedAt.IsZero())

	got, err := q.Get(req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, got.ID)
}

func TestCreateRequest_RequiresField(t *testing.T) {
	q := NewQueue(DefaultThresholds())
	_, err := q.CreateRequest(context.Background(), "", "v", 0.5, nil, "")
	assert.True(t, eris.Is(err, ErrInvalidInput))
}

func TestCreateRequest_ClampsConfidence(t *testing.T) {
	q := NewQueue(DefaultThresholds())
	req, err := q.CreateRequest(context.Background(), "email", "v", 1.7, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 1.0, req.Confidence)
}

func TestCreateRequest_ConcurrentIDsAreDistinct(t *testing.T) {
	q := NewQueue(DefaultThresholds())

	const n = 50
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, err := q.CreateRequest(context.Background(), "email", "same", 0.5, nil, "test")
			assert.NoError(t, err)
			ids <- req.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, n)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, q.Stats().TotalRequests)
}

func TestSubmitResponse(t *testing.T) {
	q := NewQueue(DefaultThresholds())
	req, err := q.CreateRequest(context.Background(), "email", "v", 0.5, nil, "")
	require.NoError(t, err)

	adj := 0.3
	resp, err := q.SubmitResponse(context.Background(), req.ID, "approved", "looks right", "alex", &adj)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, resp.Status)
	assert.Equal(t, "alex", resp.ValidatedBy)

	got, err := q.Get(req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, got.Status)
	assert.Equal(t, "looks right", got.HumanFeedback)
	assert.InDelta(t, 0.8, got.Confidence, 0.0001)
	require.NotNil(t, got.ValidatedAt)
}

func TestSubmitResponse_Errors(t *testing.T) {
	q := NewQueue(DefaultThresholds())
	req, err := q.CreateRequest(context.Background(), "email", "v", 0.5, nil, "")
	require.NoError(t, err)

	t.Run("unknown request", func(t *testing.T) {
		_, err := q.SubmitResponse(context.Background(), "vr-nope", "approved", "", "", nil)
		assert.True(t, eris.Is(err, ErrNotFound))
	})

	t.Run("pending is not a terminal status", func(t *testing.T) {
		_, err := q.SubmitResponse(context.Background(), req.ID, "pending", "", "", nil)
		assert.True(t, eris.Is(err, ErrInvalidInput))
	})

	t.Run("adjustment outside range", func(t *testing.T) {
		adj := 1.5
		_, err := q.SubmitResponse(context.Background(), req.ID, "approved", "", "", &adj)
		assert.True(t, eris.Is(err, ErrInvalidInput))
	})

	t.Run("resubmission is rejected", func(t *testing.T) {
		_, err := q.SubmitResponse(context.Background(), req.ID, "approved", "", "", nil)
		require.NoError(t, err)

		_, err = q.SubmitResponse(context.Background(), req.ID, "approved", "", "", nil)
		assert.True(t, eris.Is(err, ErrAlreadyResolved))

		_, err = q.SubmitResponse(context.Background(), req.ID, "rejected", "", "", nil)
		assert.True(t, eris.Is(err, ErrAlreadyResolved))
	})
}

func TestPending_OldestFirstWithLimit(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	q := NewQueue(DefaultThresholds()).WithNow(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})

	var ids []string
	for _, field := range []string{"a", "b", "c"} {
		req, err := q.CreateRequest(context.Background(), field, "v", 0.5, nil, "")
		require.NoError(t, err)
		ids = append(ids, req.ID)
	}
	_, err := q.SubmitResponse(context.Background(), ids[0], "approved", "", "", nil)
	require.NoError(t, err)

	pending := q.Pending(0)
	require.Len(t, pending, 2)
	assert.Equal(t, "b", pending[0].Field)
	assert.Equal(t, "c", pending[1].Field)

	limited := q.Pending(1)
	require.Len(t, limited, 1)
	assert.Equal(t, "b", limited[0].Field)
}

func TestHistory(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	q := NewQueue(DefaultThresholds()).WithNow(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})

	first, err := q.CreateRequest(context.Background(), "email", "a", 0.5, nil, "")
	require.NoError(t, err)
	_, err = q.CreateRequest(context.Background(), "phone", "b", 0.5, nil, "")
	require.NoError(t, err)
	_, err = q.CreateRequest(context.Background(), "email", "c", 0.5, nil, "")
	require.NoError(t, err)
	_, err = q.SubmitResponse(context.Background(), first.ID, "approved", "", "", nil)
	require.NoError(t, err)

	t.Run("newest first", func(t *testing.T) {
		all := q.History("", "")
		require.Len(t, all, 3)
		assert.Equal(t, "c", all[0].Value)
		assert.Equal(t, "a", all[2].Value)
	})

	t.Run("filter by field", func(t *testing.T) {
		emails := q.History("email", "")
		require.Len(t, emails, 2)
		assert.Equal(t, "c", emails[0].Value)
	})

	t.Run("filter by status", func(t *testing.T) {
		approved := q.History("", model.StatusApproved)
		require.Len(t, approved, 1)
		assert.Equal(t, "a", approved[0].Value)
	})

	t.Run("combined filter", func(t *testing.T) {
		assert.Empty(t, q.History("phone", model.StatusApproved))
	})
}

func TestStats(t *testing.T) {
	q := NewQueue(DefaultThresholds())

	assert.Equal(t, model.QueueStats{}, q.Stats())

	var ids []string
	for i := 0; i < 4; i++ {
		req, err := q.CreateRequest(context.Background(), "email", "v", 0.5, nil, "")
		require.NoError(t, err)
		ids = append(ids, req.ID)
	}
	_, err := q.SubmitResponse(context.Background(), ids[0], "approved", "", "", nil)
	require.NoError(t, err)
	_, err = q.SubmitResponse(context.Background(), ids[1], "approved", "", "", nil)
	require.NoError(t, err)
	_, err = q.SubmitResponse(context.Background(), ids[2], "rejected", "", "", nil)
	require.NoError(t, err)

	stats := q.Stats()
	assert.Equal(t, 4, stats.TotalRequests)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 2, stats.Approved)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 0.5, stats.ApprovalRate)
}

func TestUpdateThresholds(t *testing.T) {
	q := NewQueue(DefaultThresholds())

	require.NoError(t, q.UpdateThresholds(map[string]float64{
		"auto_approve": 0.9,
		"human_review": 0.6,
	}))
	got := q.GetThresholds()
	assert.Equal(t, 0.9, got.AutoApprove)
	assert.Equal(t, 0.6, got.HumanReview)
	assert.Equal(t, 0.50, got.Reject, "untouched threshold keeps its value")
	assert.Equal(t, 0.9, q.AutoApprove())

	t.Run("unknown key applies nothing", func(t *testing.T) {
		err := q.UpdateThresholds(map[string]float64{
			"reject":  0.1,
			"unknown": 0.2,
		})
		assert.True(t, eris.Is(err, ErrInvalidInput))
		assert.Equal(t, 0.50, q.GetThresholds().Reject)
	})

	t.Run("out of range applies nothing", func(t *testing.T) {
		err := q.UpdateThresholds(map[string]float64{"reject": 1.2})
		assert.True(t, eris.Is(err, ErrInvalidInput))
		assert.Equal(t, 0.50, q.GetThresholds().Reject)
	})
}

// recordingSink captures audit calls; failing forces the warn-only path.
type recordingSink struct {
	mu        sync.Mutex
	requests  []model.ValidationRequest
	responses []model.ValidationResponse
	fail      bool
}

func (s *recordingSink) RecordRequest(_ context.Context, req model.ValidationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return eris.New("sink down")
	}
	s.requests = append(s.requests, req)
	return nil
}

func (s *recordingSink) RecordResponse(_ context.Context, resp model.ValidationResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return eris.New("sink down")
	}
	s.responses = append(s.responses, resp)
	return nil
}

func TestAuditSink(t *testing.T) {
	sink := &recordingSink{}
	q := NewQueue(DefaultThresholds()).WithAuditSink(sink)

	req, err := q.CreateRequest(context.Background(), "email", "v", 0.5, nil, "")
	require.NoError(t, err)
	_, err = q.SubmitResponse(context.Background(), req.ID, "approved", "", "alex", nil)
	require.NoError(t, err)

	require.Len(t, sink.requests, 1)
	assert.Equal(t, req.ID, sink.requests[0].ID)
	require.Len(t, sink.responses, 1)
	assert.Equal(t, req.ID, sink.responses[0].RequestID)
}

func TestAuditSink_FailureDoesNotBlockQueue(t *testing.T) {
	sink := &recordingSink{fail: true}
	q := NewQueue(DefaultThresholds()).WithAuditSink(sink)

	req, err := q.CreateRequest(context.Background(), "email", "v", 0.5, nil, "")
	require.NoError(t, err)

	_, err = q.SubmitResponse(context.Background(), req.ID, "approved", "", "", nil)
	require.NoError(t, err)

	got, err := q.Get(req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, got.Status)
}

func TestRestore(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	resolvedAt := base.Add(time.Hour)
	records := []model.ValidationRequest{
		{
			ID:          "vr-2-1",
			Field:       "company_size",
			Value:       "Small (51-200 employees)",
			Confidence:  0.85,
			RequestedAt: base.Add(time.Minute),
			Status:      model.StatusPending,
		},
		{
			ID:          "vr-1-1",
			Field:       "email",
			Value:       "jane@acme.com",
			Confidence:  0.61,
			Context:     model.Context{"name": "Jane"},
			RequestedAt: base,
			Status:      model.StatusApproved,
			ValidatedBy: "alex",
			ValidatedAt: &resolvedAt,
		},
	}

	sink := &recordingSink{}
	q := NewQueue(DefaultThresholds()).WithAuditSink(sink)
	q.Restore(records)

	t.Run("pending oldest first regardless of input order", func(t *testing.T) {
		pending := q.Pending(0)
		require.Len(t, pending, 1)
		assert.Equal(t, "vr-2-1", pending[0].ID)
	})

	t.Run("restored requests resolve normally", func(t *testing.T) {
		resp, err := q.SubmitResponse(context.Background(), "vr-2-1", "approved", "", "alex", nil)
		require.NoError(t, err)
		assert.Equal(t, model.StatusApproved, resp.Status)
	})

	t.Run("restored resolutions stay terminal", func(t *testing.T) {
		_, err := q.SubmitResponse(context.Background(), "vr-1-1", "rejected", "", "alex", nil)
		assert.True(t, eris.Is(err, ErrAlreadyResolved))
	})

	t.Run("history and stats cover restored entries", func(t *testing.T) {
		assert.Len(t, q.History("", ""), 2)
		stats := q.Stats()
		assert.Equal(t, 2, stats.TotalRequests)
		assert.Equal(t, 2, stats.Approved)
	})

	t.Run("restore bypasses the audit sink", func(t *testing.T) {
		// Only the live resolution above reaches the sink.
		assert.Empty(t, sink.requests)
		assert.Len(t, sink.responses, 1)
	})
}

func TestRestore_SkipsDuplicatesAndBlankIDs(t *testing.T) {
	q := NewQueue(DefaultThresholds())
	req, err := q.CreateRequest(context.Background(), "email", "v", 0.5, nil, "pipeline")
	require.NoError(t, err)

	q.Restore([]model.ValidationRequest{
		{ID: req.ID, Field: "email", Status: model.StatusApproved},
		{Field: "title", Status: model.StatusPending},
	})

	got, err := q.Get(req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Equal(t, 1, q.Stats().TotalRequests)
}
