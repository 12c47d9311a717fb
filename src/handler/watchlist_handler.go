package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/model"
)

type watchlist interface {
	Upsert(ctx context.Context, item *model.WatchlistItem) error
	List(ctx context.Context) ([]model.WatchlistItem, error)
	Remove(ctx context.Context, symbol string) error
}

// MountWatchlistRoutes registers the watchlist endpoints.
func MountWatchlistRoutes(r chi.Router, repo watchlist) {
	r.Route("/watchlist", func(r chi.Router) {
		r.Get("/", ListWatchlistHandler(repo))
		r.Put("/", UpsertWatchlistHandler(repo))
		r.Delete("/{symbol}", RemoveWatchlistHandler(repo))
	})
}

// ListWatchlistHandler returns all favorited tickers.
func ListWatchlistHandler(repo watchlist) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := repo.List(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to list watchlist"})
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// UpsertWatchlistHandler adds a ticker or refreshes its note.
func UpsertWatchlistHandler(repo watchlist) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item model.WatchlistItem
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
			return
		}
		if strings.TrimSpace(item.Symbol) == "" {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "symbol is required"})
			return
		}

		if err := repo.Upsert(r.Context(), &item); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to save watchlist item"})
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

// RemoveWatchlistHandler drops a ticker from the watchlist.
func RemoveWatchlistHandler(repo watchlist) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := repo.Remove(r.Context(), chi.URLParam(r, "symbol")); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to remove watchlist item"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
