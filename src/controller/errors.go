package controller

import "errors"

// Error taxonomy surfaced to the request layer. Every operation on a
// missing id fails with ErrNotFound; financial mutations are never
// silently retried, so everything else is surfaced as-is to the caller.
var (
	ErrNotFound            = errors.New("position not found")
	ErrNotOpen             = errors.New("position is not open")
	ErrInvalidPayload      = errors.New("invalid payload")
	ErrInvalidPremium      = errors.New("leg premium must be a positive finite number")
	ErrPremiumLooksLikeUSD = errors.New("leg premium above 50 looks like a total USD amount, expected per-share contract price")
	ErrValidationFailed    = errors.New("strategy validation failed")
	ErrLedgerWriteFailed   = errors.New("ledger write failed")
)
