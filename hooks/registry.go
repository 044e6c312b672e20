package hooks

import (
	"context"
	"log/slog"

	"github.com/poiesic/docgraph/core"
)

// BeforeStoreHook transforms the entity list extracted from one document
// before the pipeline stores it.
type BeforeStoreHook interface {
	// Name identifies the hook in logs.
	Name() string

	// Transform receives the source document and the current entity list and
	// returns the transformed list. Implementations may return the input
	// slice modified in place.
	Transform(ctx context.Context, doc *core.Document, entities []*core.Entity) ([]*core.Entity, error)
}

// AfterBatchHook observes the entities accumulated over a whole run.
type AfterBatchHook interface {
	// Name identifies the hook in logs.
	Name() string

	// Observe receives entities from all successfully processed documents.
	Observe(ctx context.Context, entities []*core.Entity) error
}

// Registry holds the ordered hook lists for a run.
// Register hooks before the run starts; the registry is not safe for
// concurrent mutation.
type Registry struct {
	beforeStore []BeforeStoreHook
	afterBatch  []AfterBatchHook
	logger      *slog.Logger
}

// NewRegistry creates an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default().With("component", "hooks"),
	}
}

// RegisterBeforeStore appends a before-store hook. Hooks run in
// registration order.
func (r *Registry) RegisterBeforeStore(hook BeforeStoreHook) {
	r.beforeStore = append(r.beforeStore, hook)
}

// RegisterAfterBatch appends an after-batch hook. Hooks run in
// registration order.
func (r *Registry) RegisterAfterBatch(hook AfterBatchHook) {
	r.afterBatch = append(r.afterBatch, hook)
}

// RunBeforeStore runs the before-store chain over a document's entities.
// A hook error is logged and that hook's output discarded; the chain
// continues with the last good entity list.
func (r *Registry) RunBeforeStore(ctx context.Context, doc *core.Document, entities []*core.Entity) []*core.Entity {
	current := entities
	for _, hook := range r.beforeStore {
		transformed, err := hook.Transform(ctx, doc, current)
		if err != nil {
			r.logger.Warn("before-store hook failed, continuing with previous entity list",
				"hook", hook.Name(), "doc_id", doc.DocID, "err", err)
			continue
		}
		current = transformed
	}
	return current
}

// RunAfterBatch runs the after-batch observers once. Errors are logged and
// never propagated.
func (r *Registry) RunAfterBatch(ctx context.Context, entities []*core.Entity) {
	for _, hook := range r.afterBatch {
		if err := hook.Observe(ctx, entities); err != nil {
			r.logger.Warn("after-batch hook failed", "hook", hook.Name(), "err", err)
		}
	}
}
