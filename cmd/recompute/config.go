package recompute

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// DryRun reports drift without writing corrections back.
	DryRun bool `envconfig:"RECOMPUTE_DRY_RUN" default:"true"`
	// DriftTolerance is the absolute cent tolerance before a stored
	// value counts as drifted.
	DriftTolerance float64 `envconfig:"RECOMPUTE_DRIFT_TOLERANCE" default:"0.005"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
