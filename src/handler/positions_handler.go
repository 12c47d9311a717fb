package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/controller"
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/model"
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/repository"
)

// positionService is the slice of the controller the position routes
// consume.
type positionService interface {
	Create(ctx context.Context, input controller.CreatePositionInput) (*model.Position, error)
	Close(ctx context.Context, id string, input controller.ClosePositionInput) (*model.Position, error)
	Roll(ctx context.Context, id string, input controller.RollPositionInput) (*model.Position, error)
	SetArchived(ctx context.Context, id string, archived bool) (*model.Position, error)
	Update(ctx context.Context, id string, input controller.UpdatePositionInput) (*model.Position, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Position, error)
	List(ctx context.Context, options repository.PositionSearchOptions) ([]model.Position, error)
	CashFlows(ctx context.Context, id string) ([]model.CashFlowEntry, error)
	RecordCashFlow(ctx context.Context, id string, input controller.CashFlowInput) (*model.CashFlowEntry, error)
	Chain(ctx context.Context, id string) ([]model.Position, error)
	Summary(ctx context.Context) (*controller.PortfolioSummary, error)
	LiveQuotes(ctx context.Context, id string) ([]controller.LegQuote, error)
	ValidateStrategy(strategyName string, legs []controller.LegInput, allowCloseOrRoll bool) error
}

// MountPositionRoutes registers the position endpoints on the router.
func MountPositionRoutes(r chi.Router, service positionService) {
	r.Route("/positions", func(r chi.Router) {
		r.Post("/", CreatePositionHandler(service))
		r.Get("/", ListPositionsHandler(service))
		r.Get("/summary", SummaryHandler(service))
		r.Post("/validate", ValidateStrategyHandler(service))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", GetPositionHandler(service))
			r.Patch("/", UpdatePositionHandler(service))
			r.Delete("/", DeletePositionHandler(service))
			r.Post("/close", ClosePositionHandler(service))
			r.Post("/roll", RollPositionHandler(service))
			r.Post("/archive", ArchivePositionHandler(service, true))
			r.Post("/unarchive", ArchivePositionHandler(service, false))
			r.Get("/cashflows", ListCashFlowsHandler(service))
			r.Post("/cashflows", RecordCashFlowHandler(service))
			r.Get("/chain", ChainHandler(service))
			r.Get("/quotes", LiveQuotesHandler(service))
		})
	})
}

// CreatePositionHandler opens a new position.
func CreatePositionHandler(service positionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input controller.CreatePositionInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
			return
		}

		position, err := service.Create(r.Context(), input)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, position)
	}
}

// ListPositionsHandler lists positions with status/archived/symbol filters
// and pagination.
func ListPositionsHandler(service positionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		options := repository.PositionSearchOptions{}

		if statusParam := r.URL.Query().Get("status"); statusParam != "" {
			options.Status = &statusParam
		}
		if symbolParam := r.URL.Query().Get("symbol"); symbolParam != "" {
			options.Symbol = &symbolParam
		}
		if archivedParam := r.URL.Query().Get("archived"); archivedParam != "" {
			archived, err := strconv.ParseBool(archivedParam)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid archived"})
				return
			}
			options.Archived = &archived
		}
		if fromParam := r.URL.Query().Get("openedFrom"); fromParam != "" {
			parsed, err := time.Parse(time.RFC3339, fromParam)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid openedFrom"})
				return
			}
			options.OpenedAfter = &parsed
		}
		if toParam := r.URL.Query().Get("openedTo"); toParam != "" {
			parsed, err := time.Parse(time.RFC3339, toParam)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid openedTo"})
				return
			}
			options.OpenedBefore = &parsed
		}

		page := 1
		if pageParam := r.URL.Query().Get("page"); pageParam != "" {
			parsedPage, err := strconv.Atoi(pageParam)
			if err != nil || parsedPage <= 0 {
				writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid page"})
				return
			}
			page = parsedPage
		}

		pageSize := 50
		if sizeParam := r.URL.Query().Get("pageSize"); sizeParam != "" {
			parsedSize, err := strconv.Atoi(sizeParam)
			if err != nil || parsedSize <= 0 {
				writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid pageSize"})
				return
			}
			pageSize = parsedSize
		}
		options.Limit = pageSize
		options.Offset = (page - 1) * pageSize

		positions, err := service.List(r.Context(), options)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, positions)
	}
}

// GetPositionHandler fetches one position with legs.
func GetPositionHandler(service positionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		position, err := service.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, position)
	}
}

// UpdatePositionHandler patches non-financial fields.
func UpdatePositionHandler(service positionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input controller.UpdatePositionInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
			return
		}

		position, err := service.Update(r.Context(), chi.URLParam(r, "id"), input)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, position)
	}
}

// DeletePositionHandler hard-deletes a position.
func DeletePositionHandler(service positionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ClosePositionHandler settles an open position at an exit price.
func ClosePositionHandler(service positionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input controller.ClosePositionInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
			return
		}

		position, err := service.Close(r.Context(), chi.URLParam(r, "id"), input)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, position)
	}
}

// RollPositionHandler closes the position and opens its replacement.
func RollPositionHandler(service positionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input controller.RollPositionInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
			return
		}

		position, err := service.Roll(r.Context(), chi.URLParam(r, "id"), input)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, position)
	}
}

// ArchivePositionHandler sets or clears the archived flag.
func ArchivePositionHandler(service positionService, archived bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		position, err := service.SetArchived(r.Context(), chi.URLParam(r, "id"), archived)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, position)
	}
}

// ListCashFlowsHandler returns the position's ledger rows.
func ListCashFlowsHandler(service positionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := service.CashFlows(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// RecordCashFlowHandler appends a manual ledger event.
func RecordCashFlowHandler(service positionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input controller.CashFlowInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
			return
		}

		entry, err := service.RecordCashFlow(r.Context(), chi.URLParam(r, "id"), input)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)
	}
}

// ChainHandler returns the full roll chain, oldest first.
func ChainHandler(service positionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chain, err := service.Chain(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, chain)
	}
}

// SummaryHandler aggregates realized cash and outcomes.
func SummaryHandler(service positionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := service.Summary(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

// LiveQuotesHandler enriches legs with live quotes.
func LiveQuotesHandler(service positionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quotes, err := service.LiveQuotes(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, quotes)
	}
}

type validateRequest struct {
	Strategy         string                `json:"strategy"`
	Legs             []controller.LegInput `json:"legs"`
	AllowCloseOrRoll bool                  `json:"allow_close_or_roll"`
}

type validateResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// ValidateStrategyHandler runs the standalone structural pre-check
// without persisting anything.
func ValidateStrategyHandler(service positionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
			return
		}

		if err := service.ValidateStrategy(req.Strategy, req.Legs, req.AllowCloseOrRoll); err != nil {
			writeJSON(w, http.StatusOK, validateResponse{Valid: false, Reason: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, validateResponse{Valid: true})
	}
}
