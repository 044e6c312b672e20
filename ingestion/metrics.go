package ingestion

import (
	"time"

	"github.com/poiesic/docgraph/core"
)

// FailureRecord captures one failed document for the run report.
type FailureRecord struct {
	DocID string
	Err   string
	At    time.Time
}

// RunMetrics accumulates counters over one ingest run. It is owned by the
// single orchestrator goroutine and needs no locking.
type RunMetrics struct {
	DocsDiscovered int
	DocsProcessed  int
	DocsSkipped    int
	DocsFailed     int

	EntitiesCreated  int
	EntitiesExisting int
	EntitiesDropped  int

	MentionsUpserted  int
	RelationsUpserted int

	ExtractionDuration time.Duration
	StoreDuration      time.Duration

	// RecentFailures is a bounded list of the most recent failed documents.
	RecentFailures []FailureRecord

	consecutiveFailures int
}

// recordFailure appends a failure to the bounded recent-failure list.
func (m *RunMetrics) recordFailure(docID string, err error, limit int) {
	m.DocsFailed++
	if limit <= 0 {
		return
	}
	m.RecentFailures = append(m.RecentFailures, FailureRecord{
		DocID: docID,
		Err:   err.Error(),
		At:    time.Now().UTC(),
	})
	if len(m.RecentFailures) > limit {
		m.RecentFailures = m.RecentFailures[len(m.RecentFailures)-limit:]
	}
}

// RunResult is the outcome of one ingest run.
type RunResult struct {
	RunMetrics

	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// report converts the result into the persisted per-namespace run report.
func (r *RunResult) report(namespace string) *core.RunReport {
	return &core.RunReport{
		Namespace:         namespace,
		Status:            r.Status,
		StartedAt:         r.StartedAt,
		FinishedAt:        r.FinishedAt,
		DocsDiscovered:    uint64(r.DocsDiscovered),
		DocsProcessed:     uint64(r.DocsProcessed),
		DocsSkipped:       uint64(r.DocsSkipped),
		DocsFailed:        uint64(r.DocsFailed),
		EntitiesCreated:   uint64(r.EntitiesCreated),
		EntitiesExisting:  uint64(r.EntitiesExisting),
		EntitiesDropped:   uint64(r.EntitiesDropped),
		MentionsUpserted:  uint64(r.MentionsUpserted),
		RelationsUpserted: uint64(r.RelationsUpserted),
	}
}
