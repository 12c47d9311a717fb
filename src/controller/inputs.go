package controller

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/model"
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/money"
)

// FlexFloat accepts JSON numbers or numeric strings. Broker exports and
// older clients send premiums and quantities as strings, so leg
// normalization coerces both forms.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	*f = FlexFloat(v)
	return nil
}

// LegInput is one proposed leg on create/roll requests.
type LegInput struct {
	Action     string    `json:"action"`
	OptionType string    `json:"option_type"`
	Strike     FlexFloat `json:"strike"`
	Expiration time.Time `json:"expiration"`
	Premium    FlexFloat `json:"premium"`
	Quantity   FlexFloat `json:"quantity"`
}

// CreatePositionInput is the create request payload.
type CreatePositionInput struct {
	Symbol     string     `json:"symbol"`
	Type       string     `json:"type"`
	Strategy   string     `json:"strategy"`
	Broker     string     `json:"broker"`
	Quantity   FlexFloat  `json:"quantity"`
	EntryPrice *FlexFloat `json:"entry_price,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	OpenDate   *time.Time `json:"open_date,omitempty"`
	Legs       []LegInput `json:"legs"`
}

// ClosePositionInput is the close request payload.
type ClosePositionInput struct {
	ExitPrice FlexFloat `json:"exit_price"`
}

// RollAdjustment is the explicit credit/debit form of the roll-in amount.
type RollAdjustment struct {
	Amount FlexFloat `json:"amount"`
	Type   string    `json:"type"` // "credit" or "debit"
}

// RollPositionInput is the roll request payload. Either Adjustment or the
// legacy RollInCredit must be present.
type RollPositionInput struct {
	Legs         []LegInput      `json:"legs"`
	RollOutCost  FlexFloat       `json:"roll_out_cost"`
	Adjustment   *RollAdjustment `json:"adjustment,omitempty"`
	RollInCredit *FlexFloat      `json:"roll_in_credit,omitempty"`
}

// UpdatePositionInput patches non-financial fields. Nil means unchanged.
// No strategy re-validation and no ledger writes happen on update.
type UpdatePositionInput struct {
	Symbol   *string    `json:"symbol,omitempty"`
	Type     *string    `json:"type,omitempty"`
	Strategy *string    `json:"strategy,omitempty"`
	Broker   *string    `json:"broker,omitempty"`
	Notes    *string    `json:"notes,omitempty"`
	OpenDate *time.Time `json:"open_date,omitempty"`
}

// CashFlowInput records a manual ledger event (assignment, exercise,
// stock buy/sell). The lifecycle entry types stay owned by the
// create/close/roll operations.
type CashFlowInput struct {
	Type        string     `json:"type"`
	Amount      FlexFloat  `json:"amount"`
	Quantity    *FlexFloat `json:"quantity,omitempty"`
	Description string     `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
}

// maxPerSharePremium guards against entering total-dollar amounts where a
// per-share contract price belongs. Exactly 50 is still accepted.
const maxPerSharePremium = 50.0

// normalizeLegs coerces and validates proposed legs into model legs.
// Premium must be a positive finite per-share price within the accepted
// band; quantity defaults to 1.
func normalizeLegs(inputs []LegInput) ([]model.Leg, error) {
	legs := make([]model.Leg, 0, len(inputs))
	for i, in := range inputs {
		if !model.ValidLegAction(in.Action) {
			return nil, fmt.Errorf("%w: leg %d has unknown action %q", ErrInvalidPayload, i+1, in.Action)
		}
		if !model.ValidOptionType(in.OptionType) {
			return nil, fmt.Errorf("%w: leg %d has unknown option type %q", ErrInvalidPayload, i+1, in.OptionType)
		}

		premium := float64(in.Premium)
		if !money.IsFinite(premium) || premium <= 0 {
			return nil, fmt.Errorf("%w: leg %d", ErrInvalidPremium, i+1)
		}
		if premium > maxPerSharePremium {
			return nil, fmt.Errorf("%w: leg %d has premium %.2f", ErrPremiumLooksLikeUSD, i+1, premium)
		}

		quantity := float64(in.Quantity)
		if quantity == 0 {
			quantity = 1
		}
		if !money.IsFinite(quantity) || quantity < 0 {
			return nil, fmt.Errorf("%w: leg %d has invalid quantity", ErrInvalidPayload, i+1)
		}

		legs = append(legs, model.Leg{
			Seq:        i,
			Action:     in.Action,
			OptionType: in.OptionType,
			Strike:     float64(in.Strike),
			Expiration: in.Expiration,
			Premium:    premium,
			Quantity:   quantity,
		})
	}
	return legs, nil
}
