package config

import (
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
)

// SetupLogger installs the apex/log handler selected by LOG_FORMAT.
func SetupLogger(cfg *Config) {
	switch cfg.LogFormat {
	case "json":
		log.SetHandler(json.New(os.Stderr))
	default:
		log.SetHandler(text.New(os.Stderr))
	}
	if cfg.IsProduction() {
		log.SetLevel(log.InfoLevel)
	} else {
		log.SetLevel(log.DebugLevel)
	}
}
