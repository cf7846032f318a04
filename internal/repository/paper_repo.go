package repository

import (
	"context"

	"github.com/timmy/papertrawl/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaperRepository handles the merged analytics table.
type PaperRepository struct {
	db *gorm.DB
}

// NewPaperRepository creates a new PaperRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *PaperRepository: repository instance bound to db.
func NewPaperRepository(db *gorm.DB) *PaperRepository {
	return &PaperRepository{db: db}
}

// mergeBatchSize bounds the number of rows per multi-row insert so the
// statement stays under SQLite's bound-variable limit.
const mergeBatchSize = 500

// Merge upserts papers keyed by ID: a re-harvested record replaces the
// previous row rather than duplicating it.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - papers: rows to create or update.
// Returns:
//   - error: non-nil if the merge fails.
func (r *PaperRepository) Merge(ctx context.Context, papers []domain.Paper) error {
	if len(papers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).CreateInBatches(papers, mergeBatchSize).Error
}

// GetByID retrieves a paper by its ID.
func (r *PaperRepository) GetByID(ctx context.Context, id string) (*domain.Paper, error) {
	var paper domain.Paper
	if err := r.db.WithContext(ctx).First(&paper, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &paper, nil
}

// Count returns the number of merged papers.
func (r *PaperRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Paper{}).Count(&n).Error
	return n, err
}
