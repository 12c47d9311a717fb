package strategy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/model"
)

var (
	// ErrNoLegs rejects any validation request without legs.
	ErrNoLegs = errors.New("at least one leg is required")
	// ErrCloseActionNotAllowed rejects "to Close" actions on new positions.
	ErrCloseActionNotAllowed = errors.New("new positions must use opening actions only")
)

// Template keys. One tagged variant per strategy shape, dispatched by
// exact key after label normalization. Substring matching is deliberately
// avoided so labels like "iron condor" can never double-match a shorter
// rule.
const (
	keyVertical       = "vertical"
	keyPutCredit      = "put_credit_spread"
	keyCallCredit     = "call_credit_spread"
	keyIronCondor     = "iron_condor"
	keyStraddle       = "straddle"
	keyStrangle       = "strangle"
	keyCalendar       = "calendar"
	keyDiagonal       = "diagonal"
	keyCashSecuredPut = "cash_secured_put"
	keyCoveredCall    = "covered_call"
	keyButterfly      = "butterfly"
)

// aliases maps normalized strategy labels to template keys.
var aliases = map[string]string{
	"vertical spread":    keyVertical,
	"vertical":           keyVertical,
	"credit spread":      keyVertical,
	"debit spread":       keyVertical,
	"put credit spread":  keyPutCredit,
	"bull put spread":    keyPutCredit,
	"call credit spread": keyCallCredit,
	"bear call spread":   keyCallCredit,
	"iron condor":        keyIronCondor,
	"straddle":           keyStraddle,
	"short straddle":     keyStraddle,
	"long straddle":      keyStraddle,
	"strangle":           keyStrangle,
	"short strangle":     keyStrangle,
	"long strangle":      keyStrangle,
	"calendar":           keyCalendar,
	"calendar spread":    keyCalendar,
	"diagonal":           keyDiagonal,
	"diagonal spread":    keyDiagonal,
	"cash secured put":   keyCashSecuredPut,
	"cash-secured put":   keyCashSecuredPut,
	"csp":                keyCashSecuredPut,
	"covered call":       keyCoveredCall,
	"butterfly":          keyButterfly,
	"butterfly spread":   keyButterfly,
}

var templates = map[string]func(legs []model.Leg) error{
	keyVertical:       checkVertical,
	keyPutCredit:      checkPutCreditSpread,
	keyCallCredit:     checkCallCreditSpread,
	keyIronCondor:     checkIronCondor,
	keyStraddle:       checkStraddle,
	keyStrangle:       checkStrangle,
	keyCalendar:       checkCalendar,
	keyDiagonal:       checkDiagonal,
	keyCashSecuredPut: checkCashSecuredPut,
	keyCoveredCall:    checkCoveredCall,
	keyButterfly:      checkButterfly,
}

// Validate checks that the leg set forms a structurally valid instance of
// the named strategy. It is a pure function: no I/O, no mutation, and the
// verdict does not depend on leg order.
//
// Unless allowCloseOrRoll is set, any "to Close" action fails: brand new
// positions open only. Labels outside the known vocabulary pass the
// structural stage untouched; only the generic rules apply to them.
// The first violated rule is returned, violations are not aggregated.
func Validate(strategy string, legs []model.Leg, allowCloseOrRoll bool) error {
	if len(legs) == 0 {
		return ErrNoLegs
	}

	if !allowCloseOrRoll {
		for i := range legs {
			if legs[i].IsClosing() {
				return ErrCloseActionNotAllowed
			}
		}
	}

	key, ok := aliases[normalizeLabel(strategy)]
	if !ok {
		return nil
	}
	return templates[key](legs)
}

// Recognized reports whether the label maps to a known strategy template.
func Recognized(strategy string) bool {
	_, ok := aliases[normalizeLabel(strategy)]
	return ok
}

// TemplateKey returns the template key a label dispatches to, if any.
func TemplateKey(strategy string) (string, bool) {
	key, ok := aliases[normalizeLabel(strategy)]
	return key, ok
}

func normalizeLabel(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

// ---------------------------------------------------
// Structural checks, one per template
// ---------------------------------------------------

func checkVertical(legs []model.Leg) error {
	if len(legs) != 2 {
		return fmt.Errorf("vertical spread requires exactly 2 legs, got %d", len(legs))
	}
	if !sameExpiration(legs) {
		return errors.New("vertical spread legs must share one expiration")
	}
	if legs[0].OptionType != legs[1].OptionType {
		return errors.New("vertical spread legs must be the same option type")
	}
	return nil
}

func checkPutCreditSpread(legs []model.Leg) error {
	if err := checkVertical(legs); err != nil {
		return err
	}
	if !legs[0].IsPut() || !legs[1].IsPut() {
		return errors.New("put credit spread requires two puts")
	}
	high, low := byStrike(legs)
	if high.Action != model.LegActionSellToOpen {
		return errors.New("put credit spread requires the higher strike to be Sell to Open")
	}
	if low.Action != model.LegActionBuyToOpen {
		return errors.New("put credit spread requires the lower strike to be Buy to Open")
	}
	return nil
}

func checkCallCreditSpread(legs []model.Leg) error {
	if err := checkVertical(legs); err != nil {
		return err
	}
	if !legs[0].IsCall() || !legs[1].IsCall() {
		return errors.New("call credit spread requires two calls")
	}
	high, low := byStrike(legs)
	if low.Action != model.LegActionSellToOpen {
		return errors.New("call credit spread requires the lower strike to be Sell to Open")
	}
	if high.Action != model.LegActionBuyToOpen {
		return errors.New("call credit spread requires the higher strike to be Buy to Open")
	}
	return nil
}

func checkIronCondor(legs []model.Leg) error {
	if len(legs) != 4 {
		return fmt.Errorf("iron condor requires exactly 4 legs, got %d", len(legs))
	}
	if !sameExpiration(legs) {
		return errors.New("iron condor legs must share one expiration")
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
		return errors.New("iron condor requires exactly 2 puts and 2 calls")
	}
	highPut, lowPut := byStrike(puts)
	if highPut.Action != model.LegActionSellToOpen || lowPut.Action != model.LegActionBuyToOpen {
		return errors.New("iron condor put side requires Sell to Open at the higher strike and Buy to Open at the lower")
	}
	highCall, lowCall := byStrike(calls)
	if lowCall.Action != model.LegActionSellToOpen || highCall.Action != model.LegActionBuyToOpen {
		return errors.New("iron condor call side requires Sell to Open at the lower strike and Buy to Open at the higher")
	}
	return nil
}

func checkStraddle(legs []model.Leg) error {
	if err := checkCallPutPair(legs, "straddle"); err != nil {
		return err
	}
	if legs[0].Strike != legs[1].Strike {
		return errors.New("straddle requires both legs at the same strike")
	}
	return checkOpeningDirection(legs, "straddle")
}

func checkStrangle(legs []model.Leg) error {
	if err := checkCallPutPair(legs, "strangle"); err != nil {
		return err
	}
	if legs[0].Strike == legs[1].Strike {
		return errors.New("strangle requires two different strikes")
	}
	return checkOpeningDirection(legs, "strangle")
}

func checkCalendar(legs []model.Leg) error {
	if len(legs) != 2 {
		return fmt.Errorf("calendar spread requires exactly 2 legs, got %d", len(legs))
	}
	if legs[0].Strike != legs[1].Strike {
		return errors.New("calendar spread requires both legs at the same strike")
	}
	if sameExpiration(legs) {
		return errors.New("calendar spread requires two distinct expirations")
	}
	return nil
}

func checkDiagonal(legs []model.Leg) error {
	if len(legs) != 2 {
		return fmt.Errorf("diagonal spread requires exactly 2 legs, got %d", len(legs))
	}
	if legs[0].Strike == legs[1].Strike {
		return errors.New("diagonal spread requires two different strikes")
	}
	if sameExpiration(legs) {
		return errors.New("diagonal spread requires two distinct expirations")
	}
	return nil
}

func checkCashSecuredPut(legs []model.Leg) error {
	if len(legs) != 1 {
		return fmt.Errorf("cash secured put requires exactly 1 leg, got %d", len(legs))
	}
	if !legs[0].IsPut() {
		return errors.New("cash secured put requires a put")
	}
	if legs[0].Action != model.LegActionSellToOpen {
		return errors.New("cash secured put requires a Sell to Open action")
	}
	return nil
}

func checkCoveredCall(legs []model.Leg) error {
	for _, l := range legs {
		if l.IsCall() && l.Action == model.LegActionSellToOpen {
			return nil
		}
	}
	return errors.New("covered call requires at least one Sell to Open call")
}

// checkButterfly validates leg count and expiration only. The
// equidistant strike/ratio pattern is intentionally left unenforced.
func checkButterfly(legs []model.Leg) error {
	if len(legs) != 3 && len(legs) != 4 {
		return fmt.Errorf("butterfly requires 3 or 4 legs, got %d", len(legs))
	}
	if !sameExpiration(legs) {
		return errors.New("butterfly legs must share one expiration")
	}
	return nil
}

// ---------------------------------------------------
// Shared helpers
// ---------------------------------------------------

func sameExpiration(legs []model.Leg) bool {
	first := legs[0].Expiration.Format("2006-01-02")
	for _, l := range legs[1:] {
		if l.Expiration.Format("2006-01-02") != first {
			return false
		}
	}
	return true
}

// byStrike returns the higher and lower strike leg of a pair. Equal
// strikes keep input order, callers guard against that where it matters.
func byStrike(pair []model.Leg) (high, low model.Leg) {
	if pair[0].Strike >= pair[1].Strike {
		return pair[0], pair[1]
	}
	return pair[1], pair[0]
}

func checkCallPutPair(legs []model.Leg, name string) error {
	if len(legs) != 2 {
		return fmt.Errorf("%s requires exactly 2 legs, got %d", name, len(legs))
	}
	var calls, puts int
	for _, l := range legs {
		if l.IsCall() {
			calls++
		}
		if l.IsPut() {
			puts++
		}
	}
	if calls != 1 || puts != 1 {
		return fmt.Errorf("%s requires one call and one put", name)
	}
	if legs[0].Expiration.Format("2006-01-02") != legs[1].Expiration.Format("2006-01-02") {
		return fmt.Errorf("%s requires both legs at the same expiration", name)
	}
	return nil
}

// checkOpeningDirection rejects mixed long/short opening legs.
func checkOpeningDirection(legs []model.Leg, name string) error {
	var buys, sells int
	for _, l := range legs {
		if !l.IsOpening() {
			continue
		}
		if l.IsBuy() {
			buys++
		} else {
			sells++
		}
	}
	if buys > 0 && sells > 0 {
		return fmt.Errorf("%s opening legs must be all long or all short", name)
	}
	return nil
}
