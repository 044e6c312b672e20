package ingestion

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/docgraph/ai"
	"github.com/poiesic/docgraph/core"
	"github.com/poiesic/docgraph/hooks"
	"github.com/poiesic/docgraph/storage"
)

// Pipeline orchestrates one ingest run: enumerate documents, gate unchanged
// ones, extract entities with retry, run the hook chain, and write the
// graph. Documents are processed strictly sequentially; the orchestrator
// goroutine owns all run state.
type Pipeline struct {
	docs      storage.DocumentRepository
	entities  storage.EntityRepository
	runs      storage.RunRepository
	extractor ai.EntityExtractor
	registry  *hooks.Registry
	config    *Config
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "pipeline")
		return nil
	}
}

// WithRunRepository sets the repository the final run report is saved to.
// Without one, the report is only returned, not persisted.
func WithRunRepository(runs storage.RunRepository) Option {
	return func(p *Pipeline) error {
		p.runs = runs
		return nil
	}
}

// NewPipeline creates an ingest pipeline.
func NewPipeline(
	docs storage.DocumentRepository,
	entities storage.EntityRepository,
	extractor ai.EntityExtractor,
	registry *hooks.Registry,
	config *Config,
	opts ...Option,
) (*Pipeline, error) {
	if docs == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if entities == nil {
		return nil, ErrEntityRepositoryRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		docs:      docs,
		entities:  entities,
		extractor: extractor,
		registry:  registry,
		config:    config,
		logger:    slog.Default().With("component", "pipeline"),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Run executes one ingest run over the source's documents and returns the
// run result. The result is also returned when the run aborts on the
// consecutive-failure ceiling; only source enumeration and context
// cancellation produce an error.
func (p *Pipeline) Run(ctx context.Context, source DocumentSource) (*RunResult, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}

	result := &RunResult{StartedAt: time.Now().UTC()}

	srcDocs, err := source.Documents(ctx)
	if err != nil {
		return nil, err
	}
	if p.config.MaxDocuments > 0 && len(srcDocs) > p.config.MaxDocuments {
		srcDocs = srcDocs[:p.config.MaxDocuments]
	}
	result.DocsDiscovered = len(srcDocs)

	g := newGate(p.docs, p.config.Refresh, p.logger)
	retry := newRetryExecutor(p.config.MaxRetries, p.config.RetryBaseDelay, p.logger)

	// Entities from successfully processed documents, for the after-batch hooks
	var batchEntities []*core.Entity

	aborted := false
	for _, src := range srcDocs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		// Circuit breaker: checked before the next document's extraction call
		if result.consecutiveFailures >= p.config.MaxConsecutiveFailures {
			p.logger.Error("aborting run: consecutive failure ceiling reached",
				"failures", result.consecutiveFailures)
			aborted = true
			break
		}

		doc := &core.Document{
			Namespace:   p.config.Namespace,
			DocID:       src.DocID,
			SourcePath:  src.SourcePath,
			Fingerprint: core.Fingerprint(src.Title, src.Text, src.Links),
			Title:       src.Title,
			Text:        src.Text,
			Links:       src.Links,
		}

		if g.shouldSkip(ctx, doc.Namespace, doc.DocID, doc.Fingerprint) {
			p.logger.Debug("skipping unchanged document", "doc_id", doc.DocID)
			result.DocsSkipped++
			continue
		}

		entities, relations, ok := p.extractDocument(ctx, retry, doc, result)
		if !ok {
			continue
		}

		entities = p.registry.RunBeforeStore(ctx, doc, entities)

		if p.config.DryRun {
			p.logger.Info("dry run: skipping writes", "doc_id", doc.DocID, "entities", len(entities))
			result.DocsProcessed++
			batchEntities = append(batchEntities, entities...)
			continue
		}

		if !p.storeDocument(ctx, doc, entities, relations, result) {
			continue
		}

		result.DocsProcessed++
		batchEntities = append(batchEntities, entities...)
	}

	// After-batch hooks run exactly once, also on an aborted run, over the
	// entities of the documents that did succeed.
	p.registry.RunAfterBatch(ctx, batchEntities)

	switch {
	case aborted:
		result.Status = core.RunStatusAbortedConsecutive
	case result.DocsFailed > 0:
		result.Status = core.RunStatusCompletedWithErrors
	default:
		result.Status = core.RunStatusCompleted
	}
	result.FinishedAt = time.Now().UTC()

	if p.runs != nil && !p.config.DryRun {
		if err := p.runs.SaveRunReport(ctx, result.report(p.config.Namespace)); err != nil {
			p.logger.Warn("failed to save run report", "err", err)
		}
	}

	p.logger.Info("run finished",
		"status", result.Status,
		"discovered", result.DocsDiscovered,
		"processed", result.DocsProcessed,
		"skipped", result.DocsSkipped,
		"failed", result.DocsFailed)

	return result, nil
}

// extractDocument runs the retry-wrapped extraction call and converts the
// result into domain entities, dropping those below the confidence floor.
// Returns ok=false when the document failed; extraction failures feed the
// consecutive-failure counter, and any success resets it.
func (p *Pipeline) extractDocument(ctx context.Context, retry *retryExecutor, doc *core.Document, result *RunResult) ([]*core.Entity, []ai.ExtractedRelation, bool) {
	start := time.Now()
	extraction, err := retry.execute(ctx, func(ctx context.Context) (*ai.Extraction, error) {
		return p.extractor.ExtractEntities(ctx, doc.Text)
	})
	result.ExtractionDuration += time.Since(start)

	if err != nil {
		result.consecutiveFailures++
		result.recordFailure(doc.DocID, err, p.config.RecentFailureLimit)
		p.logger.Error("document failed extraction",
			"doc_id", doc.DocID, "consecutive", result.consecutiveFailures, "err", err)
		return nil, nil, false
	}
	result.consecutiveFailures = 0

	entities := make([]*core.Entity, 0, len(extraction.Entities))
	for _, extracted := range extraction.Entities {
		if extracted.Confidence < 0 || extracted.Confidence > 1 {
			p.logger.Warn("dropping entity with out-of-range confidence",
				"doc_id", doc.DocID, "entity", extracted.Name, "confidence", extracted.Confidence)
			result.EntitiesDropped++
			continue
		}
		if extracted.Confidence < p.config.MinConfidence {
			result.EntitiesDropped++
			continue
		}
		entities = append(entities, &core.Entity{
			Namespace:  p.config.Namespace,
			Type:       extracted.Type,
			Name:       extracted.Name,
			Confidence: extracted.Confidence,
			Properties: extracted.Properties,
		})
	}

	return entities, extraction.Relations, true
}

// storeDocument writes the document node and its entities, mentions, and
// relations. A document-node failure fails the document; per-entity
// failures are logged and the rest of the document continues.
func (p *Pipeline) storeDocument(ctx context.Context, doc *core.Document, entities []*core.Entity, relations []ai.ExtractedRelation, result *RunResult) bool {
	start := time.Now()
	defer func() { result.StoreDuration += time.Since(start) }()

	if err := p.docs.UpsertDocument(ctx, doc); err != nil {
		// Not an extraction failure; the consecutive counter is untouched
		result.recordFailure(doc.DocID, err, p.config.RecentFailureLimit)
		p.logger.Error("failed to store document", "doc_id", doc.DocID, "err", err)
		return false
	}

	idsByName := make(map[string]core.ID, len(entities))
	mentioned := make(map[core.ID]bool, len(entities))
	var docEntityIDs []core.ID

	for _, entity := range entities {
		id, ok := p.storeEntity(ctx, doc, entity, result)
		if !ok {
			continue
		}
		idsByName[entity.NormalizedName] = id

		// One mention per (doc, entity) pair; repeated extractions of the
		// same entity within a document collapse here.
		if mentioned[id] {
			continue
		}
		mentioned[id] = true
		docEntityIDs = append(docEntityIDs, id)

		if err := p.entities.UpsertMention(ctx, &core.Mention{
			Namespace:  doc.Namespace,
			DocID:      doc.DocID,
			EntityId:   id,
			Confidence: entity.Confidence,
		}); err != nil {
			p.logger.Warn("failed to upsert mention", "doc_id", doc.DocID, "entity", entity.NormalizedName, "err", err)
			continue
		}
		result.MentionsUpserted++
	}

	p.storeRelations(ctx, doc, relations, idsByName, result)

	if p.config.CoMentions {
		p.storeCoMentions(ctx, doc, docEntityIDs, result)
	}

	return true
}

// storeEntity resolves a duplicate-marked entity to its stored target or
// creates it. Returns the stored entity ID.
func (p *Pipeline) storeEntity(ctx context.Context, doc *core.Document, entity *core.Entity, result *RunResult) (core.ID, bool) {
	if entity.DuplicateOf != nil {
		target, err := p.entities.GetEntity(ctx, doc.Namespace, entity.DuplicateOf.Id)
		if err != nil {
			p.logger.Warn("failed to resolve duplicate target",
				"doc_id", doc.DocID, "entity", entity.NormalizedName,
				"target", entity.DuplicateOf.Name, "err", err)
			return 0, false
		}
		return target.Id, true
	}

	stored, created, err := p.entities.CreateEntity(ctx, entity)
	if err != nil {
		p.logger.Warn("failed to create entity",
			"doc_id", doc.DocID, "entity", entity.NormalizedName, "err", err)
		return 0, false
	}
	if created {
		result.EntitiesCreated++
	} else {
		result.EntitiesExisting++
	}
	return stored.Id, true
}

// storeRelations upserts the relations extracted for this document. Both
// endpoints must have landed in idsByName; relations pointing at dropped or
// failed entities are skipped.
func (p *Pipeline) storeRelations(ctx context.Context, doc *core.Document, relations []ai.ExtractedRelation, idsByName map[string]core.ID, result *RunResult) {
	for _, rel := range relations {
		fromID, okFrom := idsByName[hooks.NormalizeName(rel.From)]
		toID, okTo := idsByName[hooks.NormalizeName(rel.To)]
		if !okFrom || !okTo {
			p.logger.Debug("skipping relation with unresolved endpoint",
				"doc_id", doc.DocID, "from", rel.From, "to", rel.To)
			continue
		}

		if err := p.entities.UpsertRelation(ctx, &core.Relation{
			Namespace:  doc.Namespace,
			FromId:     fromID,
			ToId:       toID,
			Type:       rel.Type,
			Confidence: rel.Confidence,
		}); err != nil {
			p.logger.Warn("failed to upsert relation",
				"doc_id", doc.DocID, "from", rel.From, "to", rel.To, "err", err)
			continue
		}
		result.RelationsUpserted++
	}
}

// storeCoMentions adds implicit "mentioned_with" edges between every pair
// of distinct entities in the document. The smaller ID goes first so the
// edge key is stable.
func (p *Pipeline) storeCoMentions(ctx context.Context, doc *core.Document, ids []core.ID, result *RunResult) {
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			from, to := ids[i], ids[j]
			if from == to {
				continue
			}
			if to < from {
				from, to = to, from
			}
			if err := p.entities.UpsertRelation(ctx, &core.Relation{
				Namespace:  doc.Namespace,
				FromId:     from,
				ToId:       to,
				Type:       "mentioned_with",
				Confidence: 1.0,
			}); err != nil {
				p.logger.Warn("failed to upsert co-mention", "doc_id", doc.DocID, "err", err)
				continue
			}
			result.RelationsUpserted++
		}
	}
}
