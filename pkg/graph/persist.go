package graph

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/saraswati/saraswati/pkg/paperrank"
)

const (
	// queueCapacity bounds how many unprocessed batches may pile up before
	// new ones are dropped.
	queueCapacity = 16

	// batchTimeout limits how long one batch may spend writing.
	batchTimeout = 30 * time.Second
)

type batch struct {
	papers    []paperrank.Paper
	query     string
	projectID string
}

// Persister is the fire-and-forget graph writer. Enqueue hands a batch to a
// single consumer goroutine and returns immediately; write failures are
// logged and swallowed. Batches detach from the request context, so writes
// may outlive the stream that triggered them.
type Persister struct {
	store  Store
	logger zerolog.Logger
	jobs   chan batch
	wg     sync.WaitGroup

	closeOnce sync.Once
}

// NewPersister starts the consumer goroutine.
func NewPersister(store Store, logger zerolog.Logger) *Persister {
	p := &Persister{
		store:  store,
		logger: logger,
		jobs:   make(chan batch, queueCapacity),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Enqueue submits a batch of papers fetched for one query. Never blocks: if
// the queue is full the batch is dropped with a warning. Reports whether the
// batch was accepted.
func (p *Persister) Enqueue(papers []paperrank.Paper, query, projectID string) bool {
	if len(papers) == 0 {
		return false
	}
	select {
	case p.jobs <- batch{papers: papers, query: query, projectID: projectID}:
		return true
	default:
		p.logger.Warn().Str("query", query).Int("count", len(papers)).
			Msg("graph persist queue full, dropping batch")
		return false
	}
}

// Close drains pending batches and stops the consumer.
func (p *Persister) Close() {
	p.closeOnce.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}

func (p *Persister) run() {
	defer p.wg.Done()
	for b := range p.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
		p.persist(ctx, b)
		cancel()
	}
}

// persist writes one batch: every paper node, the project links, then the
// pairwise related edges. Each step is best-effort.
func (p *Persister) persist(ctx context.Context, b batch) {
	ids := make([]string, 0, len(b.papers))
	for _, paper := range b.papers {
		if err := p.store.UpsertPaper(ctx, paper); err != nil {
			p.logger.Warn().Err(err).Str("arxiv_id", paper.ArxivID).
				Msg("graph upsert failed (non-fatal)")
			continue
		}
		ids = append(ids, paper.ArxivID)

		if err := p.store.LinkProjectPaper(ctx, b.projectID, paper.ArxivID); err != nil {
			p.logger.Warn().Err(err).Str("arxiv_id", paper.ArxivID).
				Msg("graph project link failed (non-fatal)")
		}
	}

	if err := p.store.LinkRelatedPapers(ctx, ids, b.query); err != nil {
		p.logger.Warn().Err(err).Str("query", b.query).
			Msg("graph related links failed (non-fatal)")
	}

	p.logger.Info().Int("papers", len(ids)).Str("query", b.query).Msg("graph updated")
}
