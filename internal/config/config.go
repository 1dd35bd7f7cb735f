package config

import (
	"github.com/gagliardetto/solana-go"
)

// Config represents the complete sollpay configuration
type Config struct {
	Program ProgramConfig `toml:"program" mapstructure:"program"`
	Storage StorageConfig `toml:"storage" mapstructure:"storage"`
	History HistoryConfig `toml:"history" mapstructure:"history"`
	Log     LogConfig     `toml:"log" mapstructure:"log"`
	Metrics MetricsConfig `toml:"metrics" mapstructure:"metrics"`

	// Internal fields for configuration management
	configPath string `toml:"-" mapstructure:"-"`
}

// ProgramConfig represents the [program] section
type ProgramConfig struct {
	// ID is the address the program is deployed at
	ID string `toml:"id" mapstructure:"id" validate:"required"`

	// TokenProgramID is the only token program claims may transfer through
	TokenProgramID string `toml:"token_program_id" mapstructure:"token_program_id" validate:"required"`

	// TimeframeScaleShift is applied to plan terms before they are compared
	// with subscription terms. 0 requires an exact match.
	TimeframeScaleShift uint `toml:"timeframe_scale_shift" mapstructure:"timeframe_scale_shift" validate:"lte=63"`

	// TimeUnitSeconds is the number of clock seconds in one timeframe unit
	TimeUnitSeconds int64 `toml:"time_unit_seconds" mapstructure:"time_unit_seconds" validate:"gte=1"`

	// CycleOpenOffset back-dates the first cycle of new subscriptions, in seconds
	CycleOpenOffset int64 `toml:"cycle_open_offset" mapstructure:"cycle_open_offset" validate:"gte=0"`
}

// StorageConfig represents the [storage] section
type StorageConfig struct {
	Backend     string `toml:"backend" mapstructure:"backend" validate:"required,oneof=pebble leveldb bbolt memory"`
	Path        string `toml:"path" mapstructure:"path" validate:"required_unless=Backend memory"`
	CacheSize   int    `toml:"cache_size" mapstructure:"cache_size" validate:"gte=1"`
	Compression string `toml:"compression" mapstructure:"compression" validate:"oneof=none lz4"`
}

// HistoryConfig represents the [history] section
type HistoryConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Driver  string `toml:"driver" mapstructure:"driver" validate:"oneof=sqlite postgres"`
	DSN     string `toml:"dsn" mapstructure:"dsn" validate:"required_if=Enabled true"`
}

// LogConfig represents the [log] section
type LogConfig struct {
	Level  string `toml:"level" mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `toml:"format" mapstructure:"format" validate:"oneof=json console"`
}

// MetricsConfig represents the [metrics] section
type MetricsConfig struct {
	// Textfile is where metrics are written after each command, if set
	Textfile string `toml:"textfile" mapstructure:"textfile"`
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	return "sollpay.toml"
}

// GetConfigPath returns the path to the configuration file, empty when
// the configuration was built from defaults only
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// ProgramID returns the parsed program id
func (c *Config) ProgramID() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(c.Program.ID)
}

// TokenProgramID returns the parsed token program id
func (c *Config) TokenProgramID() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(c.Program.TokenProgramID)
}
