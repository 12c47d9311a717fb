package repository

import (
	"context"
	"errors"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/database"
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/model"
)

// WatchlistRepository stores favorited tickers.
type WatchlistRepository struct {
	db *gorm.DB
}

// NewWatchlistRepository creates a new repository instance using the main database.
func NewWatchlistRepository() *WatchlistRepository {
	return &WatchlistRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *WatchlistRepository) WithDB(db *gorm.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Upsert adds a symbol to the watchlist or refreshes its note.
func (r *WatchlistRepository) Upsert(ctx context.Context, item *model.WatchlistItem) error {

	item.Symbol = strings.ToUpper(strings.TrimSpace(item.Symbol))

	var existing model.WatchlistItem
	err := r.db.WithContext(ctx).First(&existing, "symbol = ?", item.Symbol).Error
	switch {
	case err == nil:
		existing.Note = item.Note
		*item = existing
		return r.db.WithContext(ctx).Save(&existing).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
			logger.WithFields(map[string]interface{}{
				"repo":   "WatchlistRepository",
				"op":     "Upsert",
				"symbol": item.Symbol,
			}).WithError(err).Error("Failed to add watchlist item")
			return err
		}
		return nil
	default:
		return err
	}
}

// List returns all watchlist items alphabetically.
func (r *WatchlistRepository) List(ctx context.Context) ([]model.WatchlistItem, error) {

	var items []model.WatchlistItem
	if err := r.db.WithContext(ctx).Order("symbol ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Remove deletes a symbol from the watchlist.
func (r *WatchlistRepository) Remove(ctx context.Context, symbol string) error {

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	return r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Delete(&model.WatchlistItem{}).Error
}
