package strategy

import (
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/model"
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/money"
)

const sharesPerContract = 100.0

// Payoff holds the theoretical profile of a position at creation time.
// Display only: the cash-flow ledger, not this, is the source of truth
// for realized P&L. Nil means undefined/unlimited for the shape.
type Payoff struct {
	MaxProfit     *float64 `json:"max_profit,omitempty"`
	MaxLoss       *float64 `json:"max_loss,omitempty"`
	BreakEvenLow  *float64 `json:"break_even_low,omitempty"`
	BreakEvenHigh *float64 `json:"break_even_high,omitempty"`
}

// Precompute derives max profit / max loss / break-evens for the
// recognized strategy shapes. Unknown labels and shapes without a closed
// form (calendar, diagonal, butterfly) return an empty profile.
func Precompute(strategy string, legs []model.Leg) Payoff {
	key, ok := aliases[normalizeLabel(strategy)]
	if !ok || len(legs) == 0 {
		return Payoff{}
	}

	switch key {
	case keyVertical, keyPutCredit, keyCallCredit:
		return verticalPayoff(legs)
	case keyIronCondor:
		return ironCondorPayoff(legs)
	case keyStraddle, keyStrangle:
		return straddleStranglePayoff(legs)
	case keyCashSecuredPut:
		return cashSecuredPutPayoff(legs)
	case keyCoveredCall:
		return coveredCallPayoff(legs)
	default:
		return Payoff{}
	}
}

// perShareNet is the signed per-share premium: sells add, buys subtract.
func perShareNet(legs []model.Leg) float64 {
	var net float64
	for _, l := range legs {
		if l.IsSell() {
			net += l.Premium
		} else {
			net -= l.Premium
		}
	}
	return net
}

func contractDollars(perShare float64, qty float64) float64 {
	return money.RoundCents(perShare * qty * sharesPerContract)
}

func ptr(v float64) *float64 { return &v }

func verticalPayoff(legs []model.Leg) Payoff {
	if len(legs) != 2 {
		return Payoff{}
	}
	qty := legs[0].Quantity
	high, low := byStrike(legs)
	width := high.Strike - low.Strike
	net := perShareNet(legs)

	var p Payoff
	if net > 0 {
		p.MaxProfit = ptr(contractDollars(net, qty))
		p.MaxLoss = ptr(contractDollars(width-net, qty))
	} else {
		debit := -net
		p.MaxLoss = ptr(contractDollars(debit, qty))
		p.MaxProfit = ptr(contractDollars(width-debit, qty))
	}

	// Break-even sits next to the short strike for credit spreads and
	// the long strike for debit spreads, shifted by the per-share net.
	short, long := legs[0], legs[1]
	if legs[1].IsSell() {
		short, long = legs[1], legs[0]
	}
	anchor := short
	if net <= 0 {
		anchor = long
	}
	if legs[0].IsPut() {
		be := anchor.Strike - absFloat(net)
		p.BreakEvenLow = ptr(money.RoundCents(be))
	} else {
		be := anchor.Strike + absFloat(net)
		p.BreakEvenHigh = ptr(money.RoundCents(be))
	}
	return p
}

func ironCondorPayoff(legs []model.Leg) Payoff {
	if len(legs) != 4 {
		return Payoff{}
	}
	var puts, calls []model.Leg
	for _, l := range legs {
		if l.IsPut() {
			puts = append(puts, l)
		} else {
			calls = append(calls, l)
		}
	}
	if len(puts) != 2 || len(calls) != 2 {
		return Payoff{}
	}
	qty := legs[0].Quantity
	net := perShareNet(legs)

	highPut, lowPut := byStrike(puts)
	highCall, lowCall := byStrike(calls)
	putWidth := highPut.Strike - lowPut.Strike
	callWidth := highCall.Strike - lowCall.Strike
	widest := putWidth
	if callWidth > widest {
		widest = callWidth
	}

	return Payoff{
		MaxProfit:     ptr(contractDollars(net, qty)),
		MaxLoss:       ptr(contractDollars(widest-net, qty)),
		BreakEvenLow:  ptr(money.RoundCents(highPut.Strike - net)),
		BreakEvenHigh: ptr(money.RoundCents(lowCall.Strike + net)),
	}
}

func straddleStranglePayoff(legs []model.Leg) Payoff {
	if len(legs) != 2 {
		return Payoff{}
	}
	var call, put *model.Leg
	for i := range legs {
		if legs[i].IsCall() {
			call = &legs[i]
		} else {
			put = &legs[i]
		}
	}
	if call == nil || put == nil {
		return Payoff{}
	}
	qty := legs[0].Quantity
	net := perShareNet(legs)

	var p Payoff
	if net > 0 {
		// Short premium: capped profit, open-ended loss.
		p.MaxProfit = ptr(contractDollars(net, qty))
	} else {
		p.MaxLoss = ptr(contractDollars(-net, qty))
	}
	spread := absFloat(net)
	p.BreakEvenLow = ptr(money.RoundCents(put.Strike - spread))
	p.BreakEvenHigh = ptr(money.RoundCents(call.Strike + spread))
	return p
}

func cashSecuredPutPayoff(legs []model.Leg) Payoff {
	if len(legs) != 1 || !legs[0].IsPut() {
		return Payoff{}
	}
	l := legs[0]
	return Payoff{
		MaxProfit:    ptr(contractDollars(l.Premium, l.Quantity)),
		MaxLoss:      ptr(contractDollars(l.Strike-l.Premium, l.Quantity)),
		BreakEvenLow: ptr(money.RoundCents(l.Strike - l.Premium)),
	}
}

// coveredCallPayoff only models the short call premium; the stock side
// is held outside the position's legs.
func coveredCallPayoff(legs []model.Leg) Payoff {
	for _, l := range legs {
		if l.IsCall() && l.Action == model.LegActionSellToOpen {
			return Payoff{
				MaxProfit:     ptr(contractDollars(l.Premium, l.Quantity)),
				BreakEvenHigh: ptr(money.RoundCents(l.Strike + l.Premium)),
			}
		}
	}
	return Payoff{}
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
