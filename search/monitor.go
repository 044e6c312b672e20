package search

import (
	"iter"

	"github.com/poiesic/docgraph/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterNameSearch(ids iter.Seq[uint64])
	AfterSemanticSearch(ids []uint64)
	NameAndSemanticHit(entity *core.Entity)
	NameHit(entity *core.Entity)
	SemanticHit(entity *core.Entity)
	Finish(results []*Result)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                     {}
func (n *noopMonitor) AfterNameSearch(_ iter.Seq[uint64]) {}
func (n *noopMonitor) AfterSemanticSearch(_ []uint64)     {}
func (n *noopMonitor) NameAndSemanticHit(_ *core.Entity)  {}
func (n *noopMonitor) NameHit(_ *core.Entity)             {}
func (n *noopMonitor) SemanticHit(_ *core.Entity)         {}
func (n *noopMonitor) Finish(_ []*Result)                 {}
