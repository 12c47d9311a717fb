package controller

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// LedgerCascadeDelete controls whether deleting a position also
	// removes its ledger rows. Off by default: the ledger is an audit
	// trail and survives position deletion.
	LedgerCascadeDelete bool `envconfig:"LEDGER_CASCADE_DELETE" default:"false"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
