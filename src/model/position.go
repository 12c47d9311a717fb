package model

import "time"

const (
	PositionStatusOpen   = "Open"
	PositionStatusClosed = "Closed"
	PositionStatusRolled = "Rolled"
)

const (
	ClosedStatusWin       = "win"
	ClosedStatusLoss      = "loss"
	ClosedStatusBreakeven = "breakeven"
)

const (
	PositionTypeStock  = "stock"
	PositionTypeOption = "option"
	PositionTypeCrypto = "crypto"
	PositionTypeETF    = "etf"
	PositionTypeFuture = "future"
	PositionTypeBond   = "bond"
)

// KnownBrokers is the enumerated set of broker names accepted on create/update.
var KnownBrokers = []string{
	"Robinhood",
	"TastyTrade",
	"Interactive Brokers",
	"Schwab",
	"Fidelity",
	"E*TRADE",
	"Webull",
	"Other",
}

// Position is a trader's multi-leg (or single instrument) position.
// Status drives the lifecycle: Open -> Closed | Rolled. Archived is an
// orthogonal soft-delete flag; a Rolled position is always archived.
// Monetary derived fields are a projection of the cash-flow ledger and
// stay re-derivable from it.
type Position struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	Symbol   string `gorm:"size:20;index;not null" json:"symbol"`
	Type     string `gorm:"size:20;not null;default:option" json:"type"`
	Strategy string `gorm:"size:100" json:"strategy"`
	Broker   string `gorm:"size:60" json:"broker"`

	Status       string  `gorm:"size:20;not null;default:Open;index" json:"status"`
	Archived     bool    `gorm:"index" json:"archived"`
	ClosedStatus *string `gorm:"size:20" json:"closed_status,omitempty"`

	Quantity   float64  `json:"quantity"`
	EntryPrice *float64 `json:"entry_price,omitempty"`
	ExitPrice  *float64 `json:"exit_price,omitempty"`

	TotalCost       float64 `json:"total_cost"`
	NetPremium      float64 `json:"net_premium"`
	PremiumReceived float64 `json:"premium_received"`
	PremiumPaid     float64 `json:"premium_paid"`
	Revenue         float64 `json:"revenue"`

	MaxProfit     *float64 `json:"max_profit,omitempty"`
	MaxLoss       *float64 `json:"max_loss,omitempty"`
	BreakEvenLow  *float64 `json:"break_even_low,omitempty"`
	BreakEvenHigh *float64 `json:"break_even_high,omitempty"`

	RealizedPnL       *float64 `gorm:"column:realized_pnl" json:"realized_pnl,omitempty"`
	RealizedReturnPct *float64 `json:"realized_return_pct,omitempty"`

	// Roll lineage. RolledFrom points at the predecessor position,
	// RollGroupID is shared by both sides of one roll, and the cumulative
	// fields accumulate across the whole chain, not just the last pair.
	RolledFrom            *string `gorm:"size:36;index" json:"rolled_from,omitempty"`
	RollGroupID           *string `gorm:"size:36;index" json:"roll_group_id,omitempty"`
	CumulativeRealizedPnL float64 `gorm:"column:cumulative_realized_pnl" json:"cumulative_realized_pnl"`
	CumulativeNetPremium  float64 `json:"cumulative_net_premium"`
	CumulativeBreakEven   float64 `json:"cumulative_break_even"`

	Notes string `gorm:"size:2048" json:"notes,omitempty"`

	OpenDate  time.Time  `json:"open_date"`
	CloseDate *time.Time `json:"close_date,omitempty"`

	Legs []Leg `gorm:"foreignKey:PositionID;constraint:OnDelete:CASCADE" json:"legs,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Position) TableName() string {
	return "positions"
}

// IsOpen reports whether the position can still be mutated by close/roll.
func (p *Position) IsOpen() bool {
	return p.Status == PositionStatusOpen
}

// IsKnownBroker reports whether name is part of the accepted broker set.
// The empty string is allowed (broker optional).
func IsKnownBroker(name string) bool {
	if name == "" {
		return true
	}
	for _, b := range KnownBrokers {
		if b == name {
			return true
		}
	}
	return false
}

// DeriveClosedStatus maps a realized P&L to win/loss/breakeven using the
// +-0.01 breakeven band.
func DeriveClosedStatus(realizedPnL float64) string {
	switch {
	case realizedPnL > 0.01:
		return ClosedStatusWin
	case realizedPnL < -0.01:
		return ClosedStatusLoss
	default:
		return ClosedStatusBreakeven
	}
}
