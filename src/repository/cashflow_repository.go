package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/database"
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/model"
)

// CashFlowRepository is the append-only ledger. Entries are immutable once
// the owning operation has committed, with a single exception: re-saving
// the CLOSE_PREMIUM amount when a close is retried on an already-written
// entry. There is no general update or delete path.
type CashFlowRepository struct {
	db *gorm.DB
}

// NewCashFlowRepository creates a new repository instance using the main database.
func NewCashFlowRepository() *CashFlowRepository {
	logger.WithField("component", "CashFlowRepository").
		Info("Creating new CashFlowRepository with MainDB")

	return &CashFlowRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *CashFlowRepository) WithDB(db *gorm.DB) *CashFlowRepository {
	return &CashFlowRepository{db: db}
}

// Append writes one ledger entry. The entry is updated in place with the
// generated id.
func (r *CashFlowRepository) Append(ctx context.Context, entry *model.CashFlowEntry) error {

	logger.WithFields(map[string]interface{}{
		"repo":        "CashFlowRepository",
		"op":          "Append",
		"position_id": entry.PositionID,
		"type":        entry.Type,
		"amount":      entry.Amount,
	}).Debug("Appending ledger entry")

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":        "CashFlowRepository",
			"op":          "Append",
			"position_id": entry.PositionID,
			"type":        entry.Type,
		}).WithError(err).Error("Failed to append ledger entry")
		return err
	}

	return nil
}

// HasEntry reports whether the position already has an entry of the given
// type. This is the idempotence check for OPEN_PREMIUM / CLOSE_PREMIUM
// writes: uniqueness is per (positionId, type), not per request.
func (r *CashFlowRepository) HasEntry(ctx context.Context, positionID, entryType string) (bool, error) {

	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CashFlowEntry{}).
		Where("position_id = ? AND type = ?", positionID, entryType).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// UpdateClosePremium re-saves the CLOSE_PREMIUM amount and description for
// a position. Used only when a close is retried against an entry that was
// already written; it never creates a duplicate row.
func (r *CashFlowRepository) UpdateClosePremium(ctx context.Context, positionID string, amount float64, description string) error {

	err := r.db.WithContext(ctx).
		Model(&model.CashFlowEntry{}).
		Where("position_id = ? AND type = ?", positionID, model.CashFlowClosePremium).
		Updates(map[string]interface{}{
			"amount":      amount,
			"description": description,
		}).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":        "CashFlowRepository",
			"op":          "UpdateClosePremium",
			"position_id": positionID,
		}).WithError(err).Error("Failed to update close premium entry")
		return err
	}

	return nil
}

// SumForPosition totals the signed amounts for one position. When
// rollGroupID is non-nil the sum is scoped to entries of that roll group,
// which is how a rolled-out position's realized P&L is derived.
func (r *CashFlowRepository) SumForPosition(ctx context.Context, positionID string, rollGroupID *string) (float64, error) {

	query := r.db.WithContext(ctx).
		Model(&model.CashFlowEntry{}).
		Where("position_id = ?", positionID)

	if rollGroupID != nil {
		query = query.Where("roll_group_id = ?", *rollGroupID)
	}

	var total float64
	err := query.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":        "CashFlowRepository",
			"op":          "SumForPosition",
			"position_id": positionID,
		}).WithError(err).Error("Failed to sum ledger entries")
		return 0, err
	}

	return total, nil
}

// ListForPosition returns the position's ledger rows in append order.
func (r *CashFlowRepository) ListForPosition(ctx context.Context, positionID string) ([]model.CashFlowEntry, error) {

	var entries []model.CashFlowEntry
	err := r.db.WithContext(ctx).
		Where("position_id = ?", positionID).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// DeleteForPosition removes all ledger rows of a position. Only invoked
// when LEDGER_CASCADE_DELETE is enabled; the default keeps the rows as an
// audit trail surviving position deletion.
func (r *CashFlowRepository) DeleteForPosition(ctx context.Context, positionID string) error {

	err := r.db.WithContext(ctx).
		Where("position_id = ?", positionID).
		Delete(&model.CashFlowEntry{}).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":        "CashFlowRepository",
			"op":          "DeleteForPosition",
			"position_id": positionID,
		}).WithError(err).Error("Failed to cascade-delete ledger entries")
		return err
	}

	return nil
}

// CashSummaryRow is one aggregation bucket of the realized cash flows.
type CashSummaryRow struct {
	Key    string  `json:"key"`
	Total  float64 `json:"total"`
	Events int64   `json:"events"`
}

// SummarizeBySymbol totals signed cash per symbol over the whole ledger.
func (r *CashFlowRepository) SummarizeBySymbol(ctx context.Context) ([]CashSummaryRow, error) {
	return r.summarize(ctx, "symbol")
}

// SummarizeByStrategy totals signed cash per strategy label.
func (r *CashFlowRepository) SummarizeByStrategy(ctx context.Context) ([]CashSummaryRow, error) {
	return r.summarize(ctx, "strategy")
}

func (r *CashFlowRepository) summarize(ctx context.Context, column string) ([]CashSummaryRow, error) {

	var rows []CashSummaryRow
	err := r.db.WithContext(ctx).
		Model(&model.CashFlowEntry{}).
		Select(column + " AS key, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS events").
		Group(column).
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":   "CashFlowRepository",
			"op":     "summarize",
			"column": column,
		}).WithError(err).Error("Failed to summarize ledger")
		return nil, err
	}

	return rows, nil
}
