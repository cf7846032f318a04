package repository

import (
	"context"

	"github.com/timmy/papertrawl/internal/domain"
	"gorm.io/gorm"
)

// RunRepository handles harvest run bookkeeping.
type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a new RunRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *RunRepository: repository instance bound to db.
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new harvest run record.
func (r *RunRepository) Create(ctx context.Context, run *domain.HarvestRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// Update updates an existing harvest run record.
func (r *RunRepository) Update(ctx context.Context, run *domain.HarvestRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// GetByID retrieves a harvest run by its ID.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*domain.HarvestRun, error) {
	var run domain.HarvestRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRecent returns the most recent harvest runs, newest first.
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]domain.HarvestRun, error) {
	var runs []domain.HarvestRun
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}
