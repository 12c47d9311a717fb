package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/connectors"
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/model"
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/money"
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/notifier"
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/repository"
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/strategy"
)

// Options contract multiplier. Fixed: every leg controls 100 shares.
const contractMultiplier = 100.0

type positionStore interface {
	Create(ctx context.Context, position *model.Position) error
	FindByID(ctx context.Context, id string) (*model.Position, error)
	FindSuccessor(ctx context.Context, id string) (*model.Position, error)
	Save(ctx context.Context, position *model.Position) error
	ClaimOpenTransition(ctx context.Context, id, toStatus string) (bool, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, options repository.PositionSearchOptions) ([]model.Position, error)
	ClosedStatusCounts(ctx context.Context) (map[string]int64, error)
}

type cashFlowLedger interface {
	Append(ctx context.Context, entry *model.CashFlowEntry) error
	HasEntry(ctx context.Context, positionID, entryType string) (bool, error)
	UpdateClosePremium(ctx context.Context, positionID string, amount float64, description string) error
	SumForPosition(ctx context.Context, positionID string, rollGroupID *string) (float64, error)
	ListForPosition(ctx context.Context, positionID string) ([]model.CashFlowEntry, error)
	DeleteForPosition(ctx context.Context, positionID string) error
	SummarizeBySymbol(ctx context.Context) ([]repository.CashSummaryRow, error)
	SummarizeByStrategy(ctx context.Context) ([]repository.CashSummaryRow, error)
}

// PositionController owns the position lifecycle: Open -> Closed | Rolled,
// the orthogonal archived flag, and every ledger write the lifecycle
// produces. Mutating operations claim the status transition atomically so
// a concurrent close and roll on one id cannot both win.
type PositionController struct {
	positions positionStore
	ledger    cashFlowLedger
	notify    notifier.ChangeNotifier
	quotes    connectors.QuoteGateway
	cfg       Config
}

// NewPositionController wires the controller from explicit collaborators.
func NewPositionController(
	positions positionStore,
	ledger cashFlowLedger,
	notify notifier.ChangeNotifier,
	quotes connectors.QuoteGateway,
	cfg Config,
) *PositionController {
	return &PositionController{
		positions: positions,
		ledger:    ledger,
		notify:    notify,
		quotes:    quotes,
		cfg:       cfg,
	}
}

// emit is fire-and-forget: notifier failures never surface to callers.
func (c *PositionController) emit(event notifier.Event, payload interface{}) {
	if c.notify == nil {
		return
	}
	c.notify.Emit(event, payload)
}

// ---------------------------------------------------
// Create
// ---------------------------------------------------

// Create validates, prices and persists a new Open position, then writes
// its OPEN_PREMIUM ledger entry. The ledger write is idempotent per
// (positionId, type): retrying a create that already flushed its entry
// never yields a duplicate.
func (c *PositionController) Create(ctx context.Context, input CreatePositionInput) (*model.Position, error) {

	symbol := strings.ToUpper(strings.TrimSpace(input.Symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrInvalidPayload)
	}

	positionType := input.Type
	if positionType == "" {
		positionType = model.PositionTypeOption
	}
	if !validPositionType(positionType) {
		return nil, fmt.Errorf("%w: unknown position type %q", ErrInvalidPayload, positionType)
	}
	if !model.IsKnownBroker(input.Broker) {
		return nil, fmt.Errorf("%w: unknown broker %q", ErrInvalidPayload, input.Broker)
	}

	legs, err := normalizeLegs(input.Legs)
	if err != nil {
		return nil, err
	}

	openDate := time.Now().UTC()
	if input.OpenDate != nil {
		openDate = input.OpenDate.UTC()
	}

	position := &model.Position{
		ID:       uuid.NewString(),
		Symbol:   symbol,
		Type:     positionType,
		Strategy: input.Strategy,
		Broker:   input.Broker,
		Status:   model.PositionStatusOpen,
		Notes:    input.Notes,
		OpenDate: openDate,
		Legs:     legs,
	}

	if len(legs) == 0 {
		// Single-instrument position: cost comes from quantity x entry
		// price, there is no premium cash flow.
		quantity := float64(input.Quantity)
		if quantity <= 0 || input.EntryPrice == nil {
			return nil, fmt.Errorf("%w: quantity and entry price are required without legs", ErrInvalidPayload)
		}
		entryPrice := float64(*input.EntryPrice)
		if !money.IsFinite(entryPrice) || entryPrice <= 0 {
			return nil, fmt.Errorf("%w: entry price must be positive", ErrInvalidPayload)
		}
		position.Quantity = quantity
		position.EntryPrice = &entryPrice
		position.TotalCost = money.RoundCents(entryPrice * quantity)
	} else {
		if err := strategy.Validate(input.Strategy, legs, false); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}

		netCash, received, paid := legCashFlow(legs)
		position.NetPremium = netCash
		position.TotalCost = money.RoundCents(-netCash)
		position.PremiumReceived = received
		position.PremiumPaid = paid
		position.Revenue = received
		position.Quantity = legs[0].Quantity

		payoff := strategy.Precompute(input.Strategy, legs)
		position.MaxProfit = payoff.MaxProfit
		position.MaxLoss = payoff.MaxLoss
		position.BreakEvenLow = payoff.BreakEvenLow
		position.BreakEvenHigh = payoff.BreakEvenHigh
	}

	position.CumulativeNetPremium = position.NetPremium

	if err := c.positions.Create(ctx, position); err != nil {
		return nil, err
	}

	if err := c.writeOpenPremium(ctx, position, position.NetPremium, nil, nil); err != nil {
		// Position is persisted; the caller must re-query before retrying.
		return position, err
	}

	logger.WithFields(map[string]interface{}{
		"component":   "PositionController",
		"op":          "Create",
		"id":          position.ID,
		"symbol":      position.Symbol,
		"strategy":    position.Strategy,
		"net_premium": position.NetPremium,
	}).Info("Position created")

	c.emit(notifier.EventCreated, position)

	return position, nil
}

// writeOpenPremium appends the OPEN_PREMIUM entry unless the position
// already has one. Zero premium writes nothing.
func (c *PositionController) writeOpenPremium(ctx context.Context, position *model.Position, amount float64, rollGroupID, relatedID *string) error {
	if amount == 0 {
		return nil
	}

	exists, err := c.ledger.HasEntry(ctx, position.ID, model.CashFlowOpenPremium)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerWriteFailed, err)
	}
	if exists {
		return nil
	}

	entry := &model.CashFlowEntry{
		PositionID:        position.ID,
		RelatedPositionID: relatedID,
		RollGroupID:       rollGroupID,
		Symbol:            position.Symbol,
		Strategy:          position.Strategy,
		Type:              model.CashFlowOpenPremium,
		Amount:            amount,
		Date:              position.OpenDate,
		Description:       "Opening premium",
	}
	if err := c.ledger.Append(ctx, entry); err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerWriteFailed, err)
	}
	return nil
}

// ---------------------------------------------------
// Close
// ---------------------------------------------------

// Close settles an Open position at the given exit price. The trade sign
// flips relative to the opening cash direction: a credit trade closes at
// a debit and vice versa.
func (c *PositionController) Close(ctx context.Context, id string, input ClosePositionInput) (*model.Position, error) {

	position, err := c.positions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if position == nil {
		return nil, ErrNotFound
	}
	if !position.IsOpen() {
		return nil, ErrNotOpen
	}

	exitPrice := float64(input.ExitPrice)
	if !money.IsFinite(exitPrice) || exitPrice < 0 {
		return nil, fmt.Errorf("%w: exit price must be a non-negative number", ErrInvalidPayload)
	}

	quantity, err := closeQuantity(position)
	if err != nil {
		return nil, err
	}

	claimed, err := c.positions.ClaimOpenTransition(ctx, id, model.PositionStatusClosed)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrNotOpen
	}

	tradeSign := 1.0
	if position.TotalCost < 0 {
		tradeSign = -1.0
	}
	finalMarketValue := money.RoundCents(absFloat(exitPrice*quantity*contractMultiplier) * tradeSign)
	realizedPnL := money.RoundCents(finalMarketValue - position.TotalCost)

	now := time.Now().UTC()
	position.Status = model.PositionStatusClosed
	position.ExitPrice = &exitPrice
	position.CloseDate = &now
	position.RealizedPnL = &realizedPnL
	position.RealizedReturnPct = realizedReturnPct(realizedPnL, position.MaxLoss, position.TotalCost)
	closedStatus := model.DeriveClosedStatus(realizedPnL)
	position.ClosedStatus = &closedStatus
	position.Revenue = finalMarketValue

	for i := range position.Legs {
		leg := &position.Legs[i]
		legExit := exitPrice
		legValue := money.RoundCents(exitPrice * leg.Quantity * contractMultiplier)
		leg.ExitPrice = &legExit
		leg.MarketValue = &legValue
	}

	if err := c.positions.Save(ctx, position); err != nil {
		return nil, err
	}

	if err := c.writeClosePremium(ctx, position, finalMarketValue); err != nil {
		return position, err
	}

	logger.WithFields(map[string]interface{}{
		"component":     "PositionController",
		"op":            "Close",
		"id":            position.ID,
		"exit_price":    exitPrice,
		"realized_pnl":  realizedPnL,
		"closed_status": closedStatus,
	}).Info("Position closed")

	c.emit(notifier.EventClosed, position)

	return position, nil
}

// writeClosePremium writes the CLOSE_PREMIUM entry, or re-saves its
// amount when a retried close finds one already flushed. Never
// duplicates.
func (c *PositionController) writeClosePremium(ctx context.Context, position *model.Position, amount float64) error {
	exists, err := c.ledger.HasEntry(ctx, position.ID, model.CashFlowClosePremium)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerWriteFailed, err)
	}

	description := "Closing premium"
	if exists {
		if err := c.ledger.UpdateClosePremium(ctx, position.ID, amount, description); err != nil {
			return fmt.Errorf("%w: %v", ErrLedgerWriteFailed, err)
		}
		return nil
	}

	entry := &model.CashFlowEntry{
		PositionID:  position.ID,
		RollGroupID: position.RollGroupID,
		Symbol:      position.Symbol,
		Strategy:    position.Strategy,
		Type:        model.CashFlowClosePremium,
		Amount:      amount,
		Date:        time.Now().UTC(),
		Description: description,
	}
	if err := c.ledger.Append(ctx, entry); err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerWriteFailed, err)
	}
	return nil
}

// closeQuantity resolves the contract quantity a close settles. Legged
// positions must carry a uniform per-leg quantity; mixed sizes are
// rejected instead of silently trusting the first leg.
func closeQuantity(position *model.Position) (float64, error) {
	if len(position.Legs) == 0 {
		return position.Quantity, nil
	}
	quantity := position.Legs[0].Quantity
	for _, leg := range position.Legs[1:] {
		if leg.Quantity != quantity {
			return 0, fmt.Errorf("%w: close requires a uniform quantity across legs", ErrInvalidPayload)
		}
	}
	return quantity, nil
}

// ---------------------------------------------------
// Roll
// ---------------------------------------------------

// Roll closes the old position and opens a replacement in one operation.
// Both sides share a fresh roll group id, their two ledger rows
// cross-reference each other, and the old side's realized P&L is derived
// by summing its ledger rows inside the group, not by formula.
func (c *PositionController) Roll(ctx context.Context, id string, input RollPositionInput) (*model.Position, error) {

	oldPosition, err := c.positions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if oldPosition == nil {
		return nil, ErrNotFound
	}
	if !oldPosition.IsOpen() {
		return nil, ErrNotOpen
	}

	rollOutCost := float64(input.RollOutCost)
	if !money.IsFinite(rollOutCost) {
		return nil, fmt.Errorf("%w: roll_out_cost must be a finite number", ErrInvalidPayload)
	}

	signedAdjustment, err := resolveAdjustment(input)
	if err != nil {
		return nil, err
	}

	newLegs, err := normalizeLegs(input.Legs)
	if err != nil {
		return nil, err
	}
	if len(newLegs) == 0 {
		return nil, fmt.Errorf("%w: roll requires replacement legs", ErrInvalidPayload)
	}
	if err := strategy.Validate(oldPosition.Strategy, newLegs, true); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	claimed, err := c.positions.ClaimOpenTransition(ctx, id, model.PositionStatusRolled)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrNotOpen
	}

	rollGroupID := uuid.NewString()
	now := time.Now().UTC()

	_, received, paid := legCashFlow(newLegs)
	netPremium := money.RoundCents(signedAdjustment)

	newPosition := &model.Position{
		ID:              uuid.NewString(),
		Symbol:          oldPosition.Symbol,
		Type:            oldPosition.Type,
		Strategy:        oldPosition.Strategy,
		Broker:          oldPosition.Broker,
		Status:          model.PositionStatusOpen,
		Quantity:        newLegs[0].Quantity,
		Notes:           oldPosition.Notes,
		OpenDate:        now,
		Legs:            newLegs,
		RolledFrom:      &oldPosition.ID,
		RollGroupID:     &rollGroupID,
		NetPremium:      netPremium,
		TotalCost:       money.RoundCents(-signedAdjustment),
		PremiumReceived: received,
		PremiumPaid:     paid,
		Revenue:         received,
	}

	payoff := strategy.Precompute(newPosition.Strategy, newLegs)
	newPosition.MaxProfit = payoff.MaxProfit
	newPosition.MaxLoss = payoff.MaxLoss
	newPosition.BreakEvenLow = payoff.BreakEvenLow
	newPosition.BreakEvenHigh = payoff.BreakEvenHigh

	if err := c.positions.Create(ctx, newPosition); err != nil {
		return nil, err
	}

	closeAmount := -absFloat(rollOutCost)
	closeEntry := &model.CashFlowEntry{
		PositionID:        oldPosition.ID,
		RelatedPositionID: &newPosition.ID,
		RollGroupID:       &rollGroupID,
		Symbol:            oldPosition.Symbol,
		Strategy:          oldPosition.Strategy,
		Type:              model.CashFlowClosePremium,
		Amount:            money.RoundCents(closeAmount),
		Date:              now,
		Description:       "Roll out of position",
	}
	if err := c.ledger.Append(ctx, closeEntry); err != nil {
		return newPosition, fmt.Errorf("%w: %v", ErrLedgerWriteFailed, err)
	}

	openEntry := &model.CashFlowEntry{
		PositionID:        newPosition.ID,
		RelatedPositionID: &oldPosition.ID,
		RollGroupID:       &rollGroupID,
		Symbol:            newPosition.Symbol,
		Strategy:          newPosition.Strategy,
		Type:              model.CashFlowOpenPremium,
		Amount:            netPremium,
		Date:              now,
		Description:       "Roll into replacement position",
	}
	if err := c.ledger.Append(ctx, openEntry); err != nil {
		return newPosition, fmt.Errorf("%w: %v", ErrLedgerWriteFailed, err)
	}

	// Realized P&L of the rolled-out side is the ledger sum scoped to
	// this position and roll group. Only the CLOSE_PREMIUM row matches:
	// the OPEN_PREMIUM row belongs to the new position id.
	realizedPnL, err := c.ledger.SumForPosition(ctx, oldPosition.ID, &rollGroupID)
	if err != nil {
		return newPosition, fmt.Errorf("%w: %v", ErrLedgerWriteFailed, err)
	}
	realizedPnL = money.RoundCents(realizedPnL)

	closedStatus := model.DeriveClosedStatus(realizedPnL)
	oldPosition.Status = model.PositionStatusRolled
	oldPosition.Archived = true
	oldPosition.CloseDate = &now
	oldPosition.RollGroupID = &rollGroupID
	oldPosition.RealizedPnL = &realizedPnL
	oldPosition.ClosedStatus = &closedStatus
	// Transient close-only fields stay clear on a roll.
	oldPosition.ExitPrice = nil
	oldPosition.RealizedReturnPct = nil
	for i := range oldPosition.Legs {
		oldPosition.Legs[i].ExitPrice = nil
		oldPosition.Legs[i].MarketValue = nil
	}

	if err := c.positions.Save(ctx, oldPosition); err != nil {
		return newPosition, err
	}

	// Cumulative fields accumulate across the whole chain.
	newPosition.CumulativeRealizedPnL = money.RoundCents(oldPosition.CumulativeRealizedPnL + realizedPnL)
	newPosition.CumulativeNetPremium = money.RoundCents(oldPosition.CumulativeNetPremium + netPremium)
	newPosition.CumulativeBreakEven = money.RoundCents(absFloat(newPosition.CumulativeRealizedPnL))

	if err := c.positions.Save(ctx, newPosition); err != nil {
		return newPosition, err
	}

	logger.WithFields(map[string]interface{}{
		"component":     "PositionController",
		"op":            "Roll",
		"old_id":        oldPosition.ID,
		"new_id":        newPosition.ID,
		"roll_group_id": rollGroupID,
		"realized_pnl":  realizedPnL,
	}).Info("Position rolled")

	c.emit(notifier.EventRolledOut, oldPosition)
	c.emit(notifier.EventRolledIn, newPosition)

	return newPosition, nil
}

// resolveAdjustment turns either adjustment form into a signed amount:
// positive for credit, negative for debit, legacy raw value as-is.
func resolveAdjustment(input RollPositionInput) (float64, error) {
	if input.Adjustment != nil {
		amount := absFloat(float64(input.Adjustment.Amount))
		if !money.IsFinite(amount) {
			return 0, fmt.Errorf("%w: adjustment amount must be finite", ErrInvalidPayload)
		}
		switch input.Adjustment.Type {
		case "credit":
			return amount, nil
		case "debit":
			return -amount, nil
		default:
			return 0, fmt.Errorf("%w: adjustment type must be credit or debit", ErrInvalidPayload)
		}
	}
	if input.RollInCredit != nil {
		value := float64(*input.RollInCredit)
		if !money.IsFinite(value) {
			return 0, fmt.Errorf("%w: roll_in_credit must be finite", ErrInvalidPayload)
		}
		return value, nil
	}
	return 0, fmt.Errorf("%w: an adjustment or roll_in_credit is required", ErrInvalidPayload)
}

// ---------------------------------------------------
// Archive / Update / Delete
// ---------------------------------------------------

// SetArchived flips the orthogonal archive flag. No ledger effect. A
// rolled position stays archived for life; its slot in the chain is
// historical and may not resurface in the active view.
func (c *PositionController) SetArchived(ctx context.Context, id string, archived bool) (*model.Position, error) {

	position, err := c.positions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if position == nil {
		return nil, ErrNotFound
	}
	if !archived && position.Status == model.PositionStatusRolled {
		return nil, fmt.Errorf("%w: a rolled position cannot be unarchived", ErrInvalidPayload)
	}

	position.Archived = archived
	if err := c.positions.Save(ctx, position); err != nil {
		return nil, err
	}

	c.emit(notifier.EventArchived, position)
	return position, nil
}

// Update applies a generic non-financial patch. Strategy structure is not
// re-validated and the ledger is untouched.
func (c *PositionController) Update(ctx context.Context, id string, input UpdatePositionInput) (*model.Position, error) {

	position, err := c.positions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if position == nil {
		return nil, ErrNotFound
	}

	if input.Symbol != nil {
		symbol := strings.ToUpper(strings.TrimSpace(*input.Symbol))
		if symbol == "" {
			return nil, fmt.Errorf("%w: symbol cannot be empty", ErrInvalidPayload)
		}
		position.Symbol = symbol
	}
	if input.Type != nil {
		if !validPositionType(*input.Type) {
			return nil, fmt.Errorf("%w: unknown position type %q", ErrInvalidPayload, *input.Type)
		}
		position.Type = *input.Type
	}
	if input.Strategy != nil {
		position.Strategy = *input.Strategy
	}
	if input.Broker != nil {
		if !model.IsKnownBroker(*input.Broker) {
			return nil, fmt.Errorf("%w: unknown broker %q", ErrInvalidPayload, *input.Broker)
		}
		position.Broker = *input.Broker
	}
	if input.Notes != nil {
		position.Notes = *input.Notes
	}
	if input.OpenDate != nil {
		position.OpenDate = input.OpenDate.UTC()
	}

	if err := c.positions.Save(ctx, position); err != nil {
		return nil, err
	}

	c.emit(notifier.EventUpdated, position)
	return position, nil
}

// Delete removes the position. Ledger rows survive unless cascade is
// enabled by configuration.
func (c *PositionController) Delete(ctx context.Context, id string) error {

	position, err := c.positions.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if position == nil {
		return ErrNotFound
	}

	if err := c.positions.Delete(ctx, id); err != nil {
		return err
	}

	if c.cfg.LedgerCascadeDelete {
		if err := c.ledger.DeleteForPosition(ctx, id); err != nil {
			return fmt.Errorf("%w: %v", ErrLedgerWriteFailed, err)
		}
	}

	c.emit(notifier.EventDeleted, map[string]string{"id": id})
	return nil
}

// ---------------------------------------------------
// Reads
// ---------------------------------------------------

// Get fetches one position.
func (c *PositionController) Get(ctx context.Context, id string) (*model.Position, error) {
	position, err := c.positions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if position == nil {
		return nil, ErrNotFound
	}
	return position, nil
}

// List returns positions matching the filters, newest first.
func (c *PositionController) List(ctx context.Context, options repository.PositionSearchOptions) ([]model.Position, error) {
	return c.positions.Search(ctx, options)
}

// CashFlows returns the position's ledger rows in append order.
func (c *PositionController) CashFlows(ctx context.Context, id string) ([]model.CashFlowEntry, error) {
	position, err := c.positions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if position == nil {
		return nil, ErrNotFound
	}
	return c.ledger.ListForPosition(ctx, id)
}

// RecordCashFlow appends a manual ledger event (assignment, exercise,
// stock buy/sell). The lifecycle types stay owned by create/close/roll.
func (c *PositionController) RecordCashFlow(ctx context.Context, id string, input CashFlowInput) (*model.CashFlowEntry, error) {

	position, err := c.positions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if position == nil {
		return nil, ErrNotFound
	}

	if !model.ValidCashFlowType(input.Type) {
		return nil, fmt.Errorf("%w: unknown cash flow type %q", ErrInvalidPayload, input.Type)
	}
	if input.Type == model.CashFlowOpenPremium || input.Type == model.CashFlowClosePremium {
		return nil, fmt.Errorf("%w: %s entries are written by lifecycle operations only", ErrInvalidPayload, input.Type)
	}

	amount := float64(input.Amount)
	if !money.IsFinite(amount) || amount == 0 {
		return nil, fmt.Errorf("%w: amount must be a non-zero finite number", ErrInvalidPayload)
	}

	date := time.Now().UTC()
	if input.Date != nil {
		date = input.Date.UTC()
	}

	entry := &model.CashFlowEntry{
		PositionID:  id,
		RollGroupID: position.RollGroupID,
		Symbol:      position.Symbol,
		Strategy:    position.Strategy,
		Type:        input.Type,
		Amount:      money.RoundCents(amount),
		Description: input.Description,
		Date:        date,
	}
	if input.Quantity != nil {
		quantity := float64(*input.Quantity)
		entry.Quantity = &quantity
	}

	if err := c.ledger.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerWriteFailed, err)
	}

	c.emit(notifier.EventUpdated, position)
	return entry, nil
}

// Chain returns the full roll chain containing the position, oldest first.
func (c *PositionController) Chain(ctx context.Context, id string) ([]model.Position, error) {

	position, err := c.positions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if position == nil {
		return nil, ErrNotFound
	}

	// Walk back to the chain root.
	root := position
	for root.RolledFrom != nil {
		predecessor, err := c.positions.FindByID(ctx, *root.RolledFrom)
		if err != nil {
			return nil, err
		}
		if predecessor == nil {
			break
		}
		root = predecessor
	}

	// Walk forward collecting every successor.
	chain := []model.Position{*root}
	current := root
	for {
		successor, err := c.positions.FindSuccessor(ctx, current.ID)
		if err != nil {
			return nil, err
		}
		if successor == nil {
			break
		}
		chain = append(chain, *successor)
		current = successor
	}

	return chain, nil
}

// PortfolioSummary aggregates realized cash and trade outcomes.
type PortfolioSummary struct {
	BySymbol   []repository.CashSummaryRow `json:"by_symbol"`
	ByStrategy []repository.CashSummaryRow `json:"by_strategy"`
	Outcomes   map[string]int64            `json:"outcomes"`
}

// Summary aggregates over the ledger (source of truth) plus win/loss
// counts of settled positions.
func (c *PositionController) Summary(ctx context.Context) (*PortfolioSummary, error) {

	bySymbol, err := c.ledger.SummarizeBySymbol(ctx)
	if err != nil {
		return nil, err
	}
	byStrategy, err := c.ledger.SummarizeByStrategy(ctx)
	if err != nil {
		return nil, err
	}
	outcomes, err := c.positions.ClosedStatusCounts(ctx)
	if err != nil {
		return nil, err
	}

	return &PortfolioSummary{
		BySymbol:   bySymbol,
		ByStrategy: byStrategy,
		Outcomes:   outcomes,
	}, nil
}

// LegQuote pairs one leg with its live market snapshot.
type LegQuote struct {
	OCCSymbol string                  `json:"occ_symbol"`
	Leg       model.Leg               `json:"leg"`
	Quote     *connectors.OptionQuote `json:"quote,omitempty"`
}

// LiveQuotes enriches each leg with a quote from the gateway. Display
// only, never feeds the ledger. A failing feed degrades to nil quotes.
func (c *PositionController) LiveQuotes(ctx context.Context, id string) ([]LegQuote, error) {

	position, err := c.positions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if position == nil {
		return nil, ErrNotFound
	}
	if c.quotes == nil {
		return nil, fmt.Errorf("%w: no quote gateway configured", ErrInvalidPayload)
	}

	quotes := make([]LegQuote, 0, len(position.Legs))
	for _, leg := range position.Legs {
		occ := model.OCCSymbolForLeg(position.Symbol, leg)
		quote, err := c.quotes.GetQuote(ctx, occ)
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"component": "PositionController",
				"op":        "LiveQuotes",
				"symbol":    occ,
			}).WithError(err).Warn("Quote lookup failed, returning leg without quote")
			quote = nil
		}
		quotes = append(quotes, LegQuote{OCCSymbol: occ, Leg: leg, Quote: quote})
	}

	return quotes, nil
}

// ValidateStrategy runs the structural pre-check without persisting
// anything.
func (c *PositionController) ValidateStrategy(strategyName string, legInputs []LegInput, allowCloseOrRoll bool) error {
	legs := make([]model.Leg, 0, len(legInputs))
	for i, in := range legInputs {
		legs = append(legs, model.Leg{
			Seq:        i,
			Action:     in.Action,
			OptionType: in.OptionType,
			Strike:     float64(in.Strike),
			Expiration: in.Expiration,
			Premium:    float64(in.Premium),
			Quantity:   float64(in.Quantity),
		})
	}
	if err := strategy.Validate(strategyName, legs, allowCloseOrRoll); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return nil
}

// ---------------------------------------------------
// Helpers
// ---------------------------------------------------

// legCashFlow computes the signed opening cash: sells receive premium,
// buys pay it, each scaled by quantity and the contract multiplier.
// Returns net plus the gross received/paid components, all cent-rounded.
func legCashFlow(legs []model.Leg) (net, received, paid float64) {
	for _, leg := range legs {
		amount := leg.Premium * leg.Quantity * contractMultiplier
		if leg.IsSell() {
			received += amount
			net += amount
		} else {
			paid += amount
			net -= amount
		}
	}
	return money.RoundCents(net), money.RoundCents(received), money.RoundCents(paid)
}

// realizedReturnPct prefers max loss as capital at risk, falls back to
// absolute total cost, nil when neither is usable.
func realizedReturnPct(realizedPnL float64, maxLoss *float64, totalCost float64) *float64 {
	if maxLoss != nil && *maxLoss > 0 {
		pct := money.RoundCents(realizedPnL / *maxLoss * 100)
		return &pct
	}
	if totalCost != 0 {
		pct := money.RoundCents(realizedPnL / absFloat(totalCost) * 100)
		return &pct
	}
	return nil
}

func validPositionType(t string) bool {
	switch t {
	case model.PositionTypeStock, model.PositionTypeOption, model.PositionTypeCrypto,
		model.PositionTypeETF, model.PositionTypeFuture, model.PositionTypeBond:
		return true
	default:
		return false
	}
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
