// Package graph persists discovered papers to a knowledge graph.
//
// Writes happen on a side-channel: the agent loop enqueues a batch and moves
// on. Nothing here may surface an error to, or delay, the primary response
// stream.
package graph

import (
	"context"

	"github.com/saraswati/saraswati/pkg/paperrank"
)

// Store is the narrow graph-store contract. All operations use merge
// semantics and must tolerate redundant calls.
type Store interface {
	// UpsertPaper merges a Paper node plus its Author nodes and
	// authorship edges.
	UpsertPaper(ctx context.Context, paper paperrank.Paper) error

	// LinkProjectPaper merges a Project node and an explored edge from it
	// to the paper.
	LinkProjectPaper(ctx context.Context, projectID, arxivID string) error

	// LinkRelatedPapers merges pairwise related edges between all papers
	// of one fetch batch, tagged with the triggering query.
	LinkRelatedPapers(ctx context.Context, arxivIDs []string, query string) error
}
