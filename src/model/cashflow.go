package model

import "time"

const (
	CashFlowOpenPremium  = "OPEN_PREMIUM"
	CashFlowClosePremium = "CLOSE_PREMIUM"
	CashFlowRollOut      = "ROLL_OUT"
	CashFlowRollIn       = "ROLL_IN"
	CashFlowAssignment   = "ASSIGNMENT"
	CashFlowExercise     = "EXERCISE"
	CashFlowStockBuy     = "STOCK_BUY"
	CashFlowStockSell    = "STOCK_SELL"
)

// CashFlowEntry is one signed cash movement tied to a position. Amount is
// positive when cash is received and negative when cash is paid; summing
// Amount is the only way realized P&L is derived from the ledger.
// Entries reference positions by id and outlive them: deleting a position
// does not delete its ledger rows unless cascade is explicitly enabled.
type CashFlowEntry struct {
	ID                uint    `gorm:"primaryKey" json:"id"`
	PositionID        string  `gorm:"size:36;index;not null" json:"position_id"`
	RelatedPositionID *string `gorm:"size:36;index" json:"related_position_id,omitempty"`
	RollGroupID       *string `gorm:"size:36;index" json:"roll_group_id,omitempty"`

	// Denormalized for reporting.
	Symbol   string `gorm:"size:20;index" json:"symbol"`
	Strategy string `gorm:"size:100" json:"strategy"`

	Type        string    `gorm:"size:20;not null;index" json:"type"`
	Amount      float64   `json:"amount"`
	Quantity    *float64  `json:"quantity,omitempty"`
	Description string    `gorm:"size:512" json:"description,omitempty"`
	Date        time.Time `json:"date"`

	CreatedAt time.Time `json:"created_at"`
}

func (CashFlowEntry) TableName() string {
	return "cash_flow_entries"
}

// ValidCashFlowType reports whether t is one of the ledger entry types.
func ValidCashFlowType(t string) bool {
	switch t {
	case CashFlowOpenPremium, CashFlowClosePremium,
		CashFlowRollOut, CashFlowRollIn,
		CashFlowAssignment, CashFlowExercise,
		CashFlowStockBuy, CashFlowStockSell:
		return true
	default:
		return false
	}
}
