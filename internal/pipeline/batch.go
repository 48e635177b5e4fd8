package pipeline

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BatchItem is one context to run against a template.
type BatchItem struct {
	ID       string         `json:"id"`
	Context  map[string]any `json:"context"`
	Template string         `json:"template,omitempty"` // overrides the batch template when set
}

// BatchResult reports one item's outcome. Items fail independently; there
// is no rollback.
type BatchResult struct {
	ID     string          `json:"id"`
	Result *OutreachResult `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// RunBatch processes items with bounded concurrency. Every item is
// attempted; per-item failures are captured in its result.
func (p *Pipeline) RunBatch(ctx context.Context, items []BatchItem, tmpl string, maxConcurrent int) []BatchResult {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	results := make([]BatchResult, len(items))
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, item := range items {
		g.Go(func() error {
			itemTmpl := item.Template
			if itemTmpl == "" {
				itemTmpl = tmpl
			}
			res, err := p.Run(gctx, item.Context, itemTmpl)
			if err != nil {
				failed.Add(1)
				results[i] = BatchResult{ID: item.ID, Error: err.Error()}
				return nil // item failures never cancel the batch
			}
			results[i] = BatchResult{ID: item.ID, Result: res}
			return nil
		})
	}
	_ = g.Wait()

	zap.L().Info("pipeline: batch complete",
		zap.Int("items", len(items)),
		zap.Int64("failed", failed.Load()),
	)
	return results
}
