// Package state persists harvest progress as namespaced JSON documents.
// The checkpoint is the single source of truth for what has been fetched;
// it is loaded once at startup and written after every confirmed unit of
// work, so a crash never loses more than one already-durable unit.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/timmy/papertrawl/internal/domain"
	"github.com/timmy/papertrawl/internal/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Well-known checkpoint namespaces. Keeping the harvest and transform
// checkpoints separate lets the transform diff fetched minus transformed.
const (
	NamespaceHarvest   = "oai_harvest"
	NamespaceTransform = "transform_papers"
)

// Store reads and writes checkpoint documents.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new Store.
// Parameters:
//   - db: GORM database handle used for persistence.
// Returns:
//   - *Store: store instance bound to db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Load reads the checkpoint for the namespace into out. A missing row is a
// cold start: out is left at its zero value and no error is returned.
func (s *Store) Load(ctx context.Context, namespace string, out any) error {
	var row domain.HarvestState
	err := s.db.WithContext(ctx).First(&row, "namespace = ?", namespace).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading state %q: %w", namespace, err)
	}
	if err := json.Unmarshal([]byte(row.Payload), out); err != nil {
		return fmt.Errorf("decoding state %q: %w", namespace, err)
	}
	return nil
}

// Save durably replaces the checkpoint for the namespace. The row swap is a
// single upsert, so readers never observe a partial write.
func (s *Store) Save(ctx context.Context, namespace string, state any) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding state %q: %w", namespace, err)
	}
	row := domain.HarvestState{
		Namespace: namespace,
		Payload:   string(payload),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("saving state %q: %w", namespace, err)
	}
	logger.FromContext(ctx).WithField(logger.FieldNamespace, namespace).Debug("Checkpoint saved")
	return nil
}
