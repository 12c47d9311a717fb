package connectors

// REST client for the options quote feed (Tradier-compatible API).
// Read path only: quotes are consumed for display and never feed the
// cash-flow ledger.

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

const defaultQuotesBaseURL = "https://api.tradier.com"

// Greeks carries the per-contract sensitivities the feed reports.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
	IV    float64 `json:"mid_iv"`
}

// OptionQuote is the live market snapshot for a single OCC symbol.
type OptionQuote struct {
	Symbol string  `json:"symbol"`
	Last   float64 `json:"last"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
	Greeks *Greeks `json:"greeks,omitempty"`
}

// QuoteGateway is the collaborator interface consumed by the live-quotes
// read path. A nil quote with nil error means the feed had no data for
// the symbol.
type QuoteGateway interface {
	GetQuote(ctx context.Context, occSymbol string) (*OptionQuote, error)
}

type quotesResponse struct {
	Quotes struct {
		Quote []OptionQuote `json:"quote"`
	} `json:"quotes"`
}

// TradierQuoteClient fetches option quotes over REST with internal retry.
type TradierQuoteClient struct {
	baseURL string
	token   string
	http    *resty.Client
}

// NewTradierQuoteClient builds a client from the connectors config.
func NewTradierQuoteClient(cfg Config) *TradierQuoteClient {
	baseURL := strings.TrimRight(cfg.QuotesBaseURL, "/")
	if baseURL == "" {
		baseURL = defaultQuotesBaseURL
		logger.Warnf("No quotes base URL provided, using default: %s", baseURL)
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(time.Duration(cfg.QuotesTimeout) * time.Second).
		SetRetryCount(cfg.QuotesRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(4 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})

	return &TradierQuoteClient{
		baseURL: baseURL,
		token:   cfg.QuotesAPIToken,
		http:    httpClient,
	}
}

// GetQuote fetches last/bid/ask plus greeks for one OCC option symbol.
func (c *TradierQuoteClient) GetQuote(ctx context.Context, occSymbol string) (*OptionQuote, error) {

	var parsed quotesResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetAuthToken(c.token).
		SetQueryParams(map[string]string{
			"symbols": occSymbol,
			"greeks":  "true",
		}).
		SetResult(&parsed).
		Get("/v1/markets/quotes")

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"connector": "TradierQuoteClient",
			"symbol":    occSymbol,
		}).WithError(err).Error("Quote request failed")
		return nil, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("quote feed returned status %d for %s", resp.StatusCode(), occSymbol)
	}

	if len(parsed.Quotes.Quote) == 0 {
		return nil, nil
	}

	quote := parsed.Quotes.Quote[0]
	return &quote, nil
}
