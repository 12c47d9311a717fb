package strategy

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/model"
)

func expiry(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func leg(action, optionType string, strike float64, expiration time.Time, premium float64) model.Leg {
	return model.Leg{
		Action:     action,
		OptionType: optionType,
		Strike:     strike,
		Expiration: expiration,
		Premium:    premium,
		Quantity:   1,
	}
}

func TestValidate_NoLegs(t *testing.T) {
	err := Validate("put credit spread", nil, false)
	assert.ErrorIs(t, err, ErrNoLegs)
}

func TestValidate_CloseActionRejectedForNewPositions(t *testing.T) {
	exp := expiry(2026, time.March, 20)
	legs := []model.Leg{
		leg(model.LegActionBuyToClose, model.OptionTypePut, 100, exp, 1.20),
	}

	err := Validate("covered call", legs, false)
	assert.ErrorIs(t, err, ErrCloseActionNotAllowed)

	// Close/roll mode allows the same legs through the generic stage.
	err = Validate("unknown label", legs, true)
	assert.NoError(t, err)
}

func TestValidate_UnknownStrategyPassesStructuralStage(t *testing.T) {
	exp := expiry(2026, time.March, 20)
	legs := []model.Leg{
		leg(model.LegActionSellToOpen, model.OptionTypePut, 100, exp, 1.20),
	}

	assert.NoError(t, Validate("my custom wheel thing", legs, false))
}

func TestValidate_VerticalSpread(t *testing.T) {
	exp := expiry(2026, time.March, 20)

	t.Run("valid", func(t *testing.T) {
		legs := []model.Leg{
			leg(model.LegActionSellToOpen, model.OptionTypePut, 100, exp, 1.20),
			leg(model.LegActionBuyToOpen, model.OptionTypePut, 95, exp, 0.60),
		}
		assert.NoError(t, Validate("vertical spread", legs, false))
	})

	t.Run("wrong leg count", func(t *testing.T) {
		legs := []model.Leg{
			leg(model.LegActionSellToOpen, model.OptionTypePut, 100, exp, 1.20),
		}
		err := Validate("vertical spread", legs, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 legs")
	})

	t.Run("mixed expirations", func(t *testing.T) {
		legs := []model.Leg{
			leg(model.LegActionSellToOpen, model.OptionTypePut, 100, exp, 1.20),
			leg(model.LegActionBuyToOpen, model.OptionTypePut, 95, expiry(2026, time.April, 17), 0.60),
		}
		err := Validate("vertical spread", legs, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expiration")
	})

	t.Run("mixed option types", func(t *testing.T) {
		legs := []model.Leg{
			leg(model.LegActionSellToOpen, model.OptionTypePut, 100, exp, 1.20),
			leg(model.LegActionBuyToOpen, model.OptionTypeCall, 95, exp, 0.60),
		}
		err := Validate("vertical spread", legs, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "option type")
	})
}

func TestValidate_PutCreditSpread(t *testing.T) {
	exp := expiry(2026, time.March, 20)

	t.Run("valid pairing", func(t *testing.T) {
		legs := []model.Leg{
			leg(model.LegActionSellToOpen, model.OptionTypePut, 100, exp, 1.20),
			leg(model.LegActionBuyToOpen, model.OptionTypePut, 95, exp, 0.60),
		}
		assert.NoError(t, Validate("put credit spread", legs, false))
	})

	t.Run("inverted pairing rejected", func(t *testing.T) {
		legs := []model.Leg{
			leg(model.LegActionBuyToOpen, model.OptionTypePut, 100, exp, 1.20),
			leg(model.LegActionSellToOpen, model.OptionTypePut, 95, exp, 0.60),
		}
		err := Validate("put credit spread", legs, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "higher strike")
	})

	t.Run("calls rejected", func(t *testing.T) {
		legs := []model.Leg{
			leg(model.LegActionSellToOpen, model.OptionTypeCall, 100, exp, 1.20),
			leg(model.LegActionBuyToOpen, model.OptionTypeCall, 95, exp, 0.60),
		}
		err := Validate("put credit spread", legs, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "two puts")
	})
}

func TestValidate_CallCreditSpread(t *testing.T) {
	exp := expiry(2026, time.March, 20)

	legs := []model.Leg{
		leg(model.LegActionSellToOpen, model.OptionTypeCall, 105, exp, 1.10),
		leg(model.LegActionBuyToOpen, model.OptionTypeCall, 110, exp, 0.45),
	}
	assert.NoError(t, Validate("call credit spread", legs, false))

	inverted := []model.Leg{
		leg(model.LegActionBuyToOpen, model.OptionTypeCall, 105, exp, 1.10),
		leg(model.LegActionSellToOpen, model.OptionTypeCall, 110, exp, 0.45),
	}
	err := Validate("call credit spread", inverted, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lower strike")
}

func TestValidate_IronCondor(t *testing.T) {
	exp := expiry(2026, time.March, 20)

	valid := []model.Leg{
		leg(model.LegActionSellToOpen, model.OptionTypePut, 95, exp, 1.00),
		leg(model.LegActionBuyToOpen, model.OptionTypePut, 90, exp, 0.50),
		leg(model.LegActionSellToOpen, model.OptionTypeCall, 110, exp, 0.95),
		leg(model.LegActionBuyToOpen, model.OptionTypeCall, 115, exp, 0.40),
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Validate("iron condor", valid, false))
	})

	t.Run("order insensitive", func(t *testing.T) {
		shuffled := []model.Leg{valid[3], valid[1], valid[2], valid[0]}
		assert.NoError(t, Validate("iron condor", shuffled, false))

		reversed := []model.Leg{valid[2], valid[0], valid[3], valid[1]}
		assert.NoError(t, Validate("iron condor", reversed, false))
	})

	t.Run("three puts rejected", func(t *testing.T) {
		broken := []model.Leg{valid[0], valid[1], valid[2],
			leg(model.LegActionBuyToOpen, model.OptionTypePut, 115, exp, 0.40)}
		err := Validate("iron condor", broken, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 puts and 2 calls")
	})

	t.Run("wrong put side actions", func(t *testing.T) {
		broken := []model.Leg{
			leg(model.LegActionBuyToOpen, model.OptionTypePut, 95, exp, 1.00),
			leg(model.LegActionSellToOpen, model.OptionTypePut, 90, exp, 0.50),
			valid[2], valid[3],
		}
		err := Validate("iron condor", broken, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "put side")
	})
}

func TestValidate_Straddle(t *testing.T) {
	exp := expiry(2026, time.March, 20)

	t.Run("valid short straddle", func(t *testing.T) {
		legs := []model.Leg{
			leg(model.LegActionSellToOpen, model.OptionTypeCall, 100, exp, 2.10),
			leg(model.LegActionSellToOpen, model.OptionTypePut, 100, exp, 1.95),
		}
		assert.NoError(t, Validate("straddle", legs, false))
	})

	t.Run("unequal strikes rejected", func(t *testing.T) {
		legs := []model.Leg{
			leg(model.LegActionSellToOpen, model.OptionTypeCall, 105, exp, 2.10),
			leg(model.LegActionSellToOpen, model.OptionTypePut, 100, exp, 1.95),
		}
		err := Validate("straddle", legs, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "same strike")
	})

	t.Run("mixed direction rejected", func(t *testing.T) {
		legs := []model.Leg{
			leg(model.LegActionSellToOpen, model.OptionTypeCall, 100, exp, 2.10),
			leg(model.LegActionBuyToOpen, model.OptionTypePut, 100, exp, 1.95),
		}
		err := Validate("straddle", legs, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "all long or all short")
	})
}

func TestValidate_Strangle(t *testing.T) {
	exp := expiry(2026, time.March, 20)

	legs := []model.Leg{
		leg(model.LegActionSellToOpen, model.OptionTypePut, 95, exp, 1.10),
		leg(model.LegActionSellToOpen, model.OptionTypeCall, 105, exp, 1.05),
	}
	assert.NoError(t, Validate("strangle", legs, false))

	sameStrike := []model.Leg{
		leg(model.LegActionSellToOpen, model.OptionTypePut, 100, exp, 1.10),
		leg(model.LegActionSellToOpen, model.OptionTypeCall, 100, exp, 1.05),
	}
	err := Validate("strangle", sameStrike, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different strikes")
}

func TestValidate_CalendarAndDiagonal(t *testing.T) {
	near := expiry(2026, time.March, 20)
	far := expiry(2026, time.April, 17)

	t.Run("calendar", func(t *testing.T) {
		legs := []model.Leg{
			leg(model.LegActionSellToOpen, model.OptionTypeCall, 100, near, 1.20),
			leg(model.LegActionBuyToOpen, model.OptionTypeCall, 100, far, 2.00),
		}
		assert.NoError(t, Validate("calendar", legs, false))

		sameExp := []model.Leg{
			leg(model.LegActionSellToOpen, model.OptionTypeCall, 100, near, 1.20),
			leg(model.LegActionBuyToOpen, model.OptionTypeCall, 100, near, 2.00),
		}
		err := Validate("calendar", sameExp, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "distinct expirations")
	})

	t.Run("diagonal", func(t *testing.T) {
		legs := []model.Leg{
			leg(model.LegActionSellToOpen, model.OptionTypeCall, 100, near, 1.20),
			leg(model.LegActionBuyToOpen, model.OptionTypeCall, 105, far, 2.00),
		}
		assert.NoError(t, Validate("diagonal", legs, false))

		sameStrike := []model.Leg{
			leg(model.LegActionSellToOpen, model.OptionTypeCall, 100, near, 1.20),
			leg(model.LegActionBuyToOpen, model.OptionTypeCall, 100, far, 2.00),
		}
		err := Validate("diagonal", sameStrike, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "different strikes")
	})
}

func TestValidate_CashSecuredPut(t *testing.T) {
	exp := expiry(2026, time.March, 20)

	legs := []model.Leg{
		leg(model.LegActionSellToOpen, model.OptionTypePut, 100, exp, 1.50),
	}
	assert.NoError(t, Validate("cash secured put", legs, false))

	buying := []model.Leg{
		leg(model.LegActionBuyToOpen, model.OptionTypePut, 100, exp, 1.50),
	}
	err := Validate("cash secured put", buying, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Sell to Open")

	call := []model.Leg{
		leg(model.LegActionSellToOpen, model.OptionTypeCall, 100, exp, 1.50),
	}
	err = Validate("cash secured put", call, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put")
}

func TestValidate_CoveredCall(t *testing.T) {
	exp := expiry(2026, time.March, 20)

	legs := []model.Leg{
		leg(model.LegActionSellToOpen, model.OptionTypeCall, 110, exp, 0.85),
	}
	assert.NoError(t, Validate("covered call", legs, false))

	noCall := []model.Leg{
		leg(model.LegActionSellToOpen, model.OptionTypePut, 95, exp, 0.85),
	}
	err := Validate("covered call", noCall, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Sell to Open call")
}

func TestValidate_Butterfly(t *testing.T) {
	exp := expiry(2026, time.March, 20)

	// Strike/ratio pattern is unchecked on purpose, only count and
	// expiration matter.
	threeLegs := []model.Leg{
		leg(model.LegActionBuyToOpen, model.OptionTypeCall, 95, exp, 2.00),
		leg(model.LegActionSellToOpen, model.OptionTypeCall, 100, exp, 1.20),
		leg(model.LegActionBuyToOpen, model.OptionTypeCall, 105, exp, 0.60),
	}
	assert.NoError(t, Validate("butterfly", threeLegs, false))

	twoLegs := threeLegs[:2]
	err := Validate("butterfly", twoLegs, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 or 4 legs")
}

func TestValidate_Pure(t *testing.T) {
	exp := expiry(2026, time.March, 20)
	legs := []model.Leg{
		leg(model.LegActionSellToOpen, model.OptionTypePut, 100, exp, 1.20),
		leg(model.LegActionBuyToOpen, model.OptionTypePut, 95, exp, 0.60),
	}
	snapshot := make([]model.Leg, len(legs))
	copy(snapshot, legs)

	// Same input, same verdict, no mutation.
	for i := 0; i < 3; i++ {
		assert.NoError(t, Validate("put credit spread", legs, false))
	}
	assert.Equal(t, snapshot, legs)
}

func TestTemplateKey_NoSubstringMatching(t *testing.T) {
	// Exact-key dispatch: decorated labels do not half-match a rule.
	if _, ok := TemplateKey("iron condor deluxe"); ok {
		t.Fatal("decorated label should not dispatch to a template")
	}
	key, ok := TemplateKey("  Iron   Condor ")
	if !ok || key != keyIronCondor {
		t.Fatalf("normalized label should dispatch to iron condor, got %q ok=%v", key, ok)
	}
}

func TestValidate_FirstViolationWins(t *testing.T) {
	exp := expiry(2026, time.March, 20)
	// Both the leg count and strike pairing are wrong; the count error
	// surfaces first.
	legs := []model.Leg{
		leg(model.LegActionBuyToOpen, model.OptionTypePut, 100, exp, 1.20),
	}
	err := Validate("put credit spread", legs, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 legs")
	assert.False(t, errors.Is(err, ErrNoLegs))
}
