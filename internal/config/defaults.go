package config

import (
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
)

// DefaultProgramID is the address used when none is configured
const DefaultProgramID = "SoLPay1111111111111111111111111111111111111"

// setDefaults sets all default values
func setDefaults(v *viper.Viper) {
	// Program defaults
	v.SetDefault("program.id", DefaultProgramID)
	v.SetDefault("program.token_program_id", solana.TokenProgramID.String())
	v.SetDefault("program.timeframe_scale_shift", 0)
	v.SetDefault("program.time_unit_seconds", 1)
	v.SetDefault("program.cycle_open_offset", 0)

	// Storage defaults
	v.SetDefault("storage.backend", "pebble")
	v.SetDefault("storage.path", "data")
	v.SetDefault("storage.cache_size", 1024)
	v.SetDefault("storage.compression", "lz4")

	// History defaults
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.driver", "sqlite")
	v.SetDefault("history.dsn", "data/history.db")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Metrics defaults
	v.SetDefault("metrics.textfile", "")
}
