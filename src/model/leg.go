package model

import (
	"strings"
	"time"
)

const (
	LegActionBuyToOpen   = "Buy to Open"
	LegActionSellToOpen  = "Sell to Open"
	LegActionBuyToClose  = "Buy to Close"
	LegActionSellToClose = "Sell to Close"
)

const (
	OptionTypeCall = "Call"
	OptionTypePut  = "Put"
)

// Leg is one option contract inside a position. Legs have no lifecycle of
// their own; the owning position creates and mutates them. Seq preserves
// insertion order for display, it carries no validation meaning.
type Leg struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	PositionID string `gorm:"size:36;index;not null" json:"position_id"`
	Seq        int    `json:"seq"`

	Action     string    `gorm:"size:20;not null" json:"action"`
	OptionType string    `gorm:"size:10;not null" json:"option_type"`
	Strike     float64   `json:"strike"`
	Expiration time.Time `json:"expiration"`
	Premium    float64   `json:"premium"`
	Quantity   float64   `gorm:"default:1" json:"quantity"`

	// Stamped by close().
	ExitPrice   *float64 `json:"exit_price,omitempty"`
	MarketValue *float64 `json:"market_value,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Leg) TableName() string {
	return "legs"
}

// IsClosing reports whether the action is a "to Close" action.
func (l *Leg) IsClosing() bool {
	return strings.Contains(l.Action, "to Close")
}

// IsOpening reports whether the action is a "to Open" action.
func (l *Leg) IsOpening() bool {
	return strings.Contains(l.Action, "to Open")
}

// IsSell reports whether the leg receives premium (sell side).
func (l *Leg) IsSell() bool {
	return strings.HasPrefix(l.Action, "Sell")
}

// IsBuy reports whether the leg pays premium (buy side).
func (l *Leg) IsBuy() bool {
	return strings.HasPrefix(l.Action, "Buy")
}

// IsCall reports whether the leg is a call option.
func (l *Leg) IsCall() bool {
	return l.OptionType == OptionTypeCall
}

// IsPut reports whether the leg is a put option.
func (l *Leg) IsPut() bool {
	return l.OptionType == OptionTypePut
}

// ValidLegAction reports whether action is one of the four OCC actions.
func ValidLegAction(action string) bool {
	switch action {
	case LegActionBuyToOpen, LegActionSellToOpen, LegActionBuyToClose, LegActionSellToClose:
		return true
	default:
		return false
	}
}

// ValidOptionType reports whether t is Call or Put.
func ValidOptionType(t string) bool {
	return t == OptionTypeCall || t == OptionTypePut
}
