package core

import "time"

// Run status values recorded in a RunReport.
const (
	RunStatusCompleted           = "completed"
	RunStatusCompletedWithErrors = "completed-with-failures"
	RunStatusAbortedConsecutive  = "aborted-consecutive-failures"
)

// RunReport is the persisted summary of an ingest run for a namespace.
// The most recent report is stored per namespace so operators can inspect
// the outcome of the last run without access to its logs.
type RunReport struct {
	Namespace  string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time

	DocsDiscovered    uint64
	DocsProcessed     uint64
	DocsSkipped       uint64
	DocsFailed        uint64
	EntitiesCreated   uint64
	EntitiesExisting  uint64
	EntitiesDropped   uint64
	MentionsUpserted  uint64
	RelationsUpserted uint64
}
