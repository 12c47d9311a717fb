package repository

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/database"
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/model"
)

// PositionRepository handles read/write operations for positions and their legs.
type PositionRepository struct {
	db *gorm.DB
}

// NewPositionRepository creates a new repository instance using the main database.
func NewPositionRepository() *PositionRepository {
	logger.WithField("component", "PositionRepository").
		Info("Creating new PositionRepository with MainDB")

	return &PositionRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *PositionRepository) WithDB(db *gorm.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// Create inserts a new position together with its legs.
func (r *PositionRepository) Create(ctx context.Context, position *model.Position) error {

	logger.WithFields(map[string]interface{}{
		"repo":     "PositionRepository",
		"op":       "Create",
		"id":       position.ID,
		"symbol":   position.Symbol,
		"strategy": position.Strategy,
		"legs":     len(position.Legs),
	}).Debug("Creating new position")

	if err := r.db.WithContext(ctx).Create(position).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "Create",
			"id":   position.ID,
		}).WithError(err).Error("Failed to create position")
		return err
	}

	return nil
}

// FindByID fetches a single position (legs preloaded, display order).
// Returns (nil, nil) if the position is not found.
func (r *PositionRepository) FindByID(ctx context.Context, id string) (*model.Position, error) {

	var position model.Position

	err := r.db.WithContext(ctx).
		Preload("Legs", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC, id ASC")
		}).
		First(&position, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "FindByID",
			"id":   id,
		}).WithError(err).Error("Failed to fetch position by ID")
		return nil, err
	}

	return &position, nil
}

// FindSuccessor returns the position rolled out of the given one, if any.
// Returns (nil, nil) when the position was never rolled.
func (r *PositionRepository) FindSuccessor(ctx context.Context, id string) (*model.Position, error) {

	var position model.Position

	err := r.db.WithContext(ctx).
		Preload("Legs", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC, id ASC")
		}).
		First(&position, "rolled_from = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &position, nil
}

// Save persists the full position state including leg mutations.
func (r *PositionRepository) Save(ctx context.Context, position *model.Position) error {

	err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(position).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "Save",
			"id":   position.ID,
		}).WithError(err).Error("Failed to save position")
		return err
	}

	return nil
}

// ClaimOpenTransition atomically moves a position from Open to the given
// terminal status. The conditional WHERE clause makes concurrent close and
// roll on the same id race-free: exactly one caller observes claimed=true.
func (r *PositionRepository) ClaimOpenTransition(ctx context.Context, id, toStatus string) (bool, error) {

	result := r.db.WithContext(ctx).
		Model(&model.Position{}).
		Where("id = ? AND status = ?", id, model.PositionStatusOpen).
		Update("status", toStatus)

	if result.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "ClaimOpenTransition",
			"id":   id,
			"to":   toStatus,
		}).WithError(result.Error).Error("Failed to claim status transition")
		return false, result.Error
	}

	claimed := result.RowsAffected == 1

	logger.WithFields(map[string]interface{}{
		"repo":    "PositionRepository",
		"op":      "ClaimOpenTransition",
		"id":      id,
		"to":      toStatus,
		"claimed": claimed,
	}).Debug("Status transition attempted")

	return claimed, nil
}

// Delete removes the position and its legs. Ledger rows are untouched here;
// cascading them is the ledger repository's concern, gated by config.
func (r *PositionRepository) Delete(ctx context.Context, id string) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("position_id = ?", id).Delete(&model.Leg{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Position{}, "id = ?", id).Error
	})
}

// PositionSearchOptions filters the position listing.
type PositionSearchOptions struct {
	Status       *string
	Archived     *bool
	Symbol       *string
	OpenedAfter  *time.Time
	OpenedBefore *time.Time
	Limit        int
	Offset       int
}

// Search returns positions newest first, applying any provided filters.
func (r *PositionRepository) Search(ctx context.Context, options PositionSearchOptions) ([]model.Position, error) {

	query := r.db.WithContext(ctx).Model(&model.Position{})

	if options.Status != nil {
		query = query.Where("status = ?", *options.Status)
	}
	if options.Archived != nil {
		query = query.Where("archived = ?", *options.Archived)
	}
	if options.Symbol != nil {
		query = query.Where("symbol = ?", *options.Symbol)
	}
	if options.OpenedAfter != nil {
		query = query.Where("open_date >= ?", *options.OpenedAfter)
	}
	if options.OpenedBefore != nil {
		query = query.Where("open_date <= ?", *options.OpenedBefore)
	}

	query = query.Order("open_date DESC, id DESC")

	if options.Limit > 0 {
		query = query.Limit(options.Limit)
	}
	if options.Offset > 0 {
		query = query.Offset(options.Offset)
	}

	var positions []model.Position
	if err := query.Preload("Legs", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq ASC, id ASC")
	}).Find(&positions).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "Search",
		}).WithError(err).Error("Failed to search positions")
		return nil, err
	}

	return positions, nil
}

// ClosedStatusCounts tallies win/loss/breakeven over Closed and Rolled positions.
func (r *PositionRepository) ClosedStatusCounts(ctx context.Context) (map[string]int64, error) {

	type row struct {
		ClosedStatus string
		Total        int64
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.Position{}).
		Select("closed_status, COUNT(*) AS total").
		Where("status IN ?", []string{model.PositionStatusClosed, model.PositionStatusRolled}).
		Where("closed_status IS NOT NULL").
		Group("closed_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.ClosedStatus] = r.Total
	}
	return counts, nil
}
