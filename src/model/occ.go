package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// OCCSymbol builds the standardized OCC option identifier for a contract:
// underlying (padded by convention but emitted unpadded here, brokers accept
// both), yymmdd expiration, C/P, strike in thousandths padded to 8 digits.
// Example: AAPL 195 call expiring 2024-01-19 -> AAPL240119C00195000.
func OCCSymbol(underlying string, expiration time.Time, optionType string, strike float64) string {
	cp := "C"
	if optionType == OptionTypePut {
		cp = "P"
	}
	milli := int64(math.Round(strike * 1000))
	return fmt.Sprintf("%s%s%s%08d",
		strings.ToUpper(strings.TrimSpace(underlying)),
		expiration.Format("060102"),
		cp,
		milli,
	)
}

// OCCSymbolForLeg builds the OCC identifier for one leg of a position.
func OCCSymbolForLeg(symbol string, leg Leg) string {
	return OCCSymbol(symbol, leg.Expiration, leg.OptionType, leg.Strike)
}
