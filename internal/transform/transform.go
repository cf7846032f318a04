// Package transform merges harvested date partitions into the papers table.
// It runs strictly downstream of the harvest: the set of dates to merge is
// the difference between the harvest checkpoint's fetched dates and its own
// transformed dates, so re-running it is always safe.
package transform

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/timmy/papertrawl/internal/domain"
	"github.com/timmy/papertrawl/internal/logger"
	"github.com/timmy/papertrawl/internal/partition"
	"github.com/timmy/papertrawl/internal/repository"
	"github.com/timmy/papertrawl/internal/state"
	"github.com/timmy/papertrawl/internal/taxonomy"
)

// Transformer reads new date partitions from disk, validates them, and
// upserts their records into the papers table.
type Transformer struct {
	store   *state.Store
	papers  *repository.PaperRepository
	tax     *taxonomy.Taxonomy
	dataDir string
}

// NewTransformer creates a Transformer.
// Parameters:
//   - store: checkpoint persistence shared with the harvest.
//   - papers: destination repository for merged rows.
//   - tax: category table used for advisory validation; may be nil to skip.
//   - dataDir: directory holding the date partitions.
//
// Returns:
//   - *Transformer: initialized merge step.
func NewTransformer(store *state.Store, papers *repository.PaperRepository, tax *taxonomy.Taxonomy, dataDir string) *Transformer {
	return &Transformer{
		store:   store,
		papers:  papers,
		tax:     tax,
		dataDir: dataDir,
	}
}

// Run merges every harvested-but-untransformed partition, oldest first.
// Each partition is validated before any of its rows reach the database;
// a ValidationError halts the run with earlier partitions already merged
// and checkpointed. A run that finds no new dates is a no-op.
func (t *Transformer) Run(ctx context.Context) error {
	ctx = logger.SetComponent(ctx, "transform")
	log := logger.FromContext(ctx)

	var hcp domain.Checkpoint
	if err := t.store.Load(ctx, state.NamespaceHarvest, &hcp); err != nil {
		return err
	}
	var tcp domain.TransformCheckpoint
	if err := t.store.Load(ctx, state.NamespaceTransform, &tcp); err != nil {
		return err
	}

	pending := pendingDates(hcp.FetchedDates, &tcp)
	if len(pending) == 0 {
		log.Info("No new partitions to transform")
		return nil
	}
	log.WithField(logger.FieldCount, len(pending)).Info("Transforming new partitions")

	merged := 0
	for _, date := range pending {
		path := filepath.Join(t.dataDir, partition.FileName(date))
		records, err := partition.ReadPartition(path)
		if err != nil {
			return fmt.Errorf("read partition %s: %w", date, err)
		}

		if err := validateBatch(date, records); err != nil {
			return err
		}
		t.warnUnknownCategories(ctx, date, records)

		papers := make([]domain.Paper, 0, len(records))
		for _, r := range records {
			papers = append(papers, domain.PaperFromRecord(r))
		}
		if err := t.papers.Merge(ctx, papers); err != nil {
			return fmt.Errorf("merge partition %s: %w", date, err)
		}

		tcp.MarkTransformed(date)
		if err := t.store.Save(ctx, state.NamespaceTransform, &tcp); err != nil {
			return err
		}

		merged += len(papers)
		logger.With(logger.Fields{"date": date}).
			WithCount(len(papers)).
			Info(ctx, "Partition merged")
	}

	log.WithField(logger.FieldCount, merged).Info("Transform complete")
	return nil
}

// pendingDates returns the fetched dates not yet transformed, in ascending
// order. FetchedDates is kept sorted by the harvest checkpoint.
func pendingDates(fetched []string, tcp *domain.TransformCheckpoint) []string {
	var out []string
	for _, d := range fetched {
		if !tcp.HasTransformed(d) {
			out = append(out, d)
		}
	}
	return out
}

// warnUnknownCategories flags primary categories missing from the taxonomy
// table. Historical records carry retired archive names, so this is
// advisory only.
func (t *Transformer) warnUnknownCategories(ctx context.Context, date string, records []domain.Record) {
	if t.tax == nil {
		return
	}
	for _, r := range records {
		if r.PrimaryCategory != nil && !t.tax.Known(*r.PrimaryCategory) {
			logger.FromContext(ctx).WithFields(logger.Fields{
				"date":     date,
				"id":       r.ID,
				"category": *r.PrimaryCategory,
			}).Warn("Unknown primary category")
		}
	}
}
