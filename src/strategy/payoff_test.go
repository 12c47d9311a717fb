package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/model"
)

func assertPtrEqual(t *testing.T, expected float64, actual *float64, field string) {
	t.Helper()
	require.NotNil(t, actual, field)
	assert.InDelta(t, expected, *actual, 0.001, field)
}

func TestPrecompute_UnknownStrategy(t *testing.T) {
	exp := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	legs := []model.Leg{
		leg(model.LegActionSellToOpen, model.OptionTypePut, 100, exp, 1.20),
	}

	p := Precompute("the wheel", legs)
	assert.Equal(t, Payoff{}, p)

	p = Precompute("put credit spread", nil)
	assert.Equal(t, Payoff{}, p)
}

func TestPrecompute_PutCreditSpread(t *testing.T) {
	exp := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	legs := []model.Leg{
		leg(model.LegActionSellToOpen, model.OptionTypePut, 100, exp, 1.20),
		leg(model.LegActionBuyToOpen, model.OptionTypePut, 95, exp, 0.60),
	}

	p := Precompute("put credit spread", legs)
	assertPtrEqual(t, 60, p.MaxProfit, "max profit")
	assertPtrEqual(t, 440, p.MaxLoss, "max loss")
	assertPtrEqual(t, 99.40, p.BreakEvenLow, "break even")
	assert.Nil(t, p.BreakEvenHigh)
}

func TestPrecompute_CallDebitSpread(t *testing.T) {
	exp := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	legs := []model.Leg{
		leg(model.LegActionBuyToOpen, model.OptionTypeCall, 100, exp, 2.00),
		leg(model.LegActionSellToOpen, model.OptionTypeCall, 105, exp, 0.80),
	}

	p := Precompute("debit spread", legs)
	assertPtrEqual(t, 120, p.MaxLoss, "max loss")
	assertPtrEqual(t, 380, p.MaxProfit, "max profit")
	assertPtrEqual(t, 101.20, p.BreakEvenHigh, "break even")
	assert.Nil(t, p.BreakEvenLow)
}

func TestPrecompute_VerticalQuantityScales(t *testing.T) {
	exp := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	legs := []model.Leg{
		leg(model.LegActionSellToOpen, model.OptionTypePut, 100, exp, 1.20),
		leg(model.LegActionBuyToOpen, model.OptionTypePut, 95, exp, 0.60),
	}
	legs[0].Quantity = 3
	legs[1].Quantity = 3

	p := Precompute("put credit spread", legs)
	assertPtrEqual(t, 180, p.MaxProfit, "max profit")
	assertPtrEqual(t, 1320, p.MaxLoss, "max loss")
}

func TestPrecompute_IronCondor(t *testing.T) {
	exp := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	legs := []model.Leg{
		leg(model.LegActionSellToOpen, model.OptionTypePut, 95, exp, 1.00),
		leg(model.LegActionBuyToOpen, model.OptionTypePut, 90, exp, 0.50),
		leg(model.LegActionSellToOpen, model.OptionTypeCall, 110, exp, 0.95),
		leg(model.LegActionBuyToOpen, model.OptionTypeCall, 115, exp, 0.40),
	}

	p := Precompute("iron condor", legs)
	// net credit = 1.00 - 0.50 + 0.95 - 0.40 = 1.05
	assertPtrEqual(t, 105, p.MaxProfit, "max profit")
	assertPtrEqual(t, 395, p.MaxLoss, "max loss")
	assertPtrEqual(t, 93.95, p.BreakEvenLow, "break even low")
	assertPtrEqual(t, 111.05, p.BreakEvenHigh, "break even high")
}

func TestPrecompute_ShortStraddle(t *testing.T) {
	exp := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	legs := []model.Leg{
		leg(model.LegActionSellToOpen, model.OptionTypeCall, 100, exp, 2.10),
		leg(model.LegActionSellToOpen, model.OptionTypePut, 100, exp, 1.90),
	}

	p := Precompute("straddle", legs)
	assertPtrEqual(t, 400, p.MaxProfit, "max profit")
	assert.Nil(t, p.MaxLoss, "short straddle loss is open ended")
	assertPtrEqual(t, 96.00, p.BreakEvenLow, "break even low")
	assertPtrEqual(t, 104.00, p.BreakEvenHigh, "break even high")
}

func TestPrecompute_LongStrangle(t *testing.T) {
	exp := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	legs := []model.Leg{
		leg(model.LegActionBuyToOpen, model.OptionTypePut, 95, exp, 1.10),
		leg(model.LegActionBuyToOpen, model.OptionTypeCall, 105, exp, 1.05),
	}

	p := Precompute("strangle", legs)
	assert.Nil(t, p.MaxProfit, "long strangle profit is open ended")
	assertPtrEqual(t, 215, p.MaxLoss, "max loss")
	assertPtrEqual(t, 92.85, p.BreakEvenLow, "break even low")
	assertPtrEqual(t, 107.15, p.BreakEvenHigh, "break even high")
}

func TestPrecompute_CashSecuredPut(t *testing.T) {
	exp := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	legs := []model.Leg{
		leg(model.LegActionSellToOpen, model.OptionTypePut, 100, exp, 1.50),
	}

	p := Precompute("cash secured put", legs)
	assertPtrEqual(t, 150, p.MaxProfit, "max profit")
	assertPtrEqual(t, 9850, p.MaxLoss, "max loss")
	assertPtrEqual(t, 98.50, p.BreakEvenLow, "break even")
}

func TestPrecompute_CoveredCall(t *testing.T) {
	exp := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	legs := []model.Leg{
		leg(model.LegActionSellToOpen, model.OptionTypeCall, 110, exp, 0.85),
	}

	p := Precompute("covered call", legs)
	assertPtrEqual(t, 85, p.MaxProfit, "max profit")
	assert.Nil(t, p.MaxLoss, "stock side is not modeled")
	assertPtrEqual(t, 110.85, p.BreakEvenHigh, "break even")
}

func TestPrecompute_CalendarHasNoClosedForm(t *testing.T) {
	near := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	far := time.Date(2026, time.April, 17, 0, 0, 0, 0, time.UTC)
	legs := []model.Leg{
		leg(model.LegActionSellToOpen, model.OptionTypeCall, 100, near, 1.20),
		leg(model.LegActionBuyToOpen, model.OptionTypeCall, 100, far, 2.00),
	}

	assert.Equal(t, Payoff{}, Precompute("calendar", legs))
}
