package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/confidence"
	"github.com/sells-group/outreach-cli/internal/inference"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/pipeline"
	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/internal/template"
	"github.com/sells-group/outreach-cli/internal/validation"
)

// coreEnv holds the constructed subsystems shared by commands.
type coreEnv struct {
	Engine    *inference.Engine
	Scorer    *confidence.Scorer
	Queue     *validation.Queue
	Templates *template.Engine
	Pipeline  *pipeline.Pipeline
	Store     store.Store
}

// initCore builds the core from config: rule catalog, queue (with the audit
// store when configured), scorer, template engine, and the pipeline.
func initCore(ctx context.Context) (*coreEnv, error) {
	rules := inference.DefaultRules()
	if cfg.Inference.RulesPath != "" {
		loaded, err := inference.LoadRules(cfg.Inference.RulesPath)
		if err != nil {
			return nil, err
		}
		rules = loaded
	}
	catalog, err := inference.NewCatalog(rules)
	if err != nil {
		return nil, err
	}
	engine := inference.NewEngine(catalog).WithAcceptanceFloor(cfg.Inference.AcceptanceFloor)

	queue := validation.NewQueue(cfg.Validation.Thresholds)

	var auditStore store.Store
	switch cfg.Store.Driver {
	case "sqlite":
		s, err := store.NewSQLite(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		auditStore = s
	case "postgres":
		s, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		auditStore = s
	case "none", "":
		// queue runs without an audit trail
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if auditStore != nil {
		if err := auditStore.Migrate(ctx); err != nil {
			return nil, err
		}
		queue.WithAuditSink(auditStore)

		recorded, err := auditStore.ListRequests(ctx, store.RequestFilter{})
		if err != nil {
			return nil, err
		}
		queue.Restore(recorded)
	}

	scorer := confidence.NewScorer(cfg.Confidence.Weights, queue).
		WithRequiredFields(cfg.Confidence.RequiredFields)
	templates := template.NewEngine()

	pipe := pipeline.New(engine, scorer, queue, templates,
		pipeline.ParsePolicy(cfg.Pipeline.GatePolicy), cfg.Pipeline.RequestedBy)

	return &coreEnv{
		Engine:    engine,
		Scorer:    scorer,
		Queue:     queue,
		Templates: templates,
		Pipeline:  pipe,
		Store:     auditStore,
	}, nil
}

// Close releases the audit store if one was opened.
func (e *coreEnv) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("close store", zap.Error(err))
		}
	}
}

// loadContext reads a JSON context mapping from a file, or stdin when path
// is "-".
func loadContext(path string) (model.Context, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = os.ReadFile("/dev/stdin")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "read context %s", path)
	}
	var ctx model.Context
	if err := json.Unmarshal(data, &ctx); err != nil {
		return nil, eris.Wrap(err, "parse context JSON")
	}
	return ctx, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
