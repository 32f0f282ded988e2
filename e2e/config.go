package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// SIGNAL_ADDR targets a running server (host:port). Empty starts one in-process.
	SignalAddr string `envconfig:"SIGNAL_ADDR"`
	// E2E_DEBUG_JSON dumps every frame exchanged
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
