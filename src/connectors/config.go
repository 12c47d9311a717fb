package connectors

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	QuotesBaseURL  string `envconfig:"QUOTES_BASE_URL" default:"https://api.tradier.com"`
	QuotesAPIToken string `envconfig:"QUOTES_API_TOKEN" default:""`
	QuotesTimeout  int    `envconfig:"QUOTES_TIMEOUT_SECONDS" default:"10"`
	QuotesRetries  int    `envconfig:"QUOTES_RETRIES" default:"2"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
