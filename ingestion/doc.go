// Package ingestion provides the ingest run orchestrator.
//
// A run enumerates a corpus of parsed documents in a stable order and
// processes them strictly sequentially:
//
//  1. Idempotency gate: a document whose content fingerprint matches the
//     stored one is skipped (unless Refresh is set). The gate fails open.
//  2. Extraction: the entity extractor is called with bounded retries and
//     exponential backoff; only classified retryable errors are retried.
//     A run-wide consecutive-failure counter aborts the run at the
//     configured ceiling; any success resets it.
//  3. Hook chain: the registered before-store hooks (normalization, fuzzy
//     and vector dedup) transform the entity list.
//  4. Graph write: document node, entities (create is an idempotent no-op
//     on an existing identity tuple), mentions, and relations.
//
// After the last document the after-batch hooks observe the entities of
// all successfully processed documents, exactly once.
//
// The orchestrator goroutine owns all run state (metrics, the failure
// counter, the accumulated entity list), so the package needs no locks.
// Per-document failures are recorded in a bounded recent-failure list on
// the RunResult.
package ingestion
