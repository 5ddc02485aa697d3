// Package config provides Viper-based configuration loading for the MUD server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings for the persistence
// sidecar. The sidecar is optional: when Enabled is false the engine runs
// without a database and nothing is persisted.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	// FlushInterval is how often the sidecar writes dirty entities through.
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// GatewayConfig holds WebSocket gateway settings.
type GatewayConfig struct {
	// Host is the bind address for the HTTP listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the HTTP listener.
	Port int `mapstructure:"port"`
	// OutboundQueueSize is the per-connection outbound event buffer.
	OutboundQueueSize int `mapstructure:"outbound_queue_size"`
	// WriteTimeout is the per-message write deadline.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
func (g GatewayConfig) Addr() string {
	return fmt.Sprintf("%s:%d", g.Host, g.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// EngineConfig holds engine loop settings.
type EngineConfig struct {
	// InboundQueueSize bounds the queue of (player, text) command pairs.
	InboundQueueSize int `mapstructure:"inbound_queue_size"`
}

// CombatConfig holds tunable combat math parameters.
type CombatConfig struct {
	// CritChance is the probability of a critical hit per swing.
	CritChance float64 `mapstructure:"crit_chance"`
	// CritMultiplier scales damage on a critical hit.
	CritMultiplier float64 `mapstructure:"crit_multiplier"`
	// RecoveryInterval is the pause between auto-attack swings.
	RecoveryInterval time.Duration `mapstructure:"recovery_interval"`
}

// RespawnConfig holds player respawn settings.
type RespawnConfig struct {
	// CountdownSeconds is the delay between death and respawn; one
	// respawn_countdown event is emitted per second.
	CountdownSeconds int `mapstructure:"countdown_seconds"`
}

// ContentConfig points at the YAML content directories consumed at boot.
type ContentConfig struct {
	// Dir is the root content directory containing areas/, npcs/, items/,
	// and triggers/ subdirectories.
	Dir string `mapstructure:"dir"`
	// ScriptDir holds Lua trigger scripts, one subdirectory per area.
	// Empty disables scripted triggers.
	ScriptDir string `mapstructure:"script_dir"`
	// ScriptInstructionLimit caps Lua opcodes per trigger script call.
	// 0 = package default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Combat   CombatConfig   `mapstructure:"combat"`
	Respawn  RespawnConfig  `mapstructure:"respawn"`
	Content  ContentConfig  `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGateway(c.Gateway); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEngine(c.Engine); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRespawn(c.Respawn); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	if !d.Enabled {
		return nil
	}
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if d.FlushInterval <= 0 {
		errs = append(errs, "database.flush_interval must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGateway(g GatewayConfig) error {
	var errs []string
	if g.Port < 1 || g.Port > 65535 {
		errs = append(errs, fmt.Sprintf("gateway.port must be 1-65535, got %d", g.Port))
	}
	if g.OutboundQueueSize < 1 {
		errs = append(errs, fmt.Sprintf("gateway.outbound_queue_size must be >= 1, got %d", g.OutboundQueueSize))
	}
	if g.WriteTimeout < 0 {
		errs = append(errs, "gateway.write_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateEngine(e EngineConfig) error {
	if e.InboundQueueSize < 1 {
		return fmt.Errorf("engine.inbound_queue_size must be >= 1, got %d", e.InboundQueueSize)
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	var errs []string
	if c.CritChance < 0 || c.CritChance > 1 {
		errs = append(errs, fmt.Sprintf("combat.crit_chance must be in [0, 1], got %f", c.CritChance))
	}
	if c.CritMultiplier < 1 {
		errs = append(errs, fmt.Sprintf("combat.crit_multiplier must be >= 1, got %f", c.CritMultiplier))
	}
	if c.RecoveryInterval < 0 {
		errs = append(errs, "combat.recovery_interval must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRespawn(r RespawnConfig) error {
	if r.CountdownSeconds < 1 {
		return fmt.Errorf("respawn.countdown_seconds must be >= 1, got %d", r.CountdownSeconds)
	}
	return nil
}

func validateContent(c ContentConfig) error {
	if c.Dir == "" {
		return errors.New("content.dir must not be empty")
	}
	if c.ScriptInstructionLimit < 0 {
		return fmt.Errorf("content.script_instruction_limit must be >= 0, got %d", c.ScriptInstructionLimit)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with MUD_ prefix
	v.SetEnvPrefix("MUD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "mud")
	v.SetDefault("database.password", "mud")
	v.SetDefault("database.name", "mud")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.flush_interval", "30s")

	v.SetDefault("gateway.host", "0.0.0.0")
	v.SetDefault("gateway.port", 4000)
	v.SetDefault("gateway.outbound_queue_size", 256)
	v.SetDefault("gateway.write_timeout", "30s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("engine.inbound_queue_size", 1024)

	v.SetDefault("combat.crit_chance", 0.10)
	v.SetDefault("combat.crit_multiplier", 1.5)
	v.SetDefault("combat.recovery_interval", "1s")

	v.SetDefault("respawn.countdown_seconds", 10)

	v.SetDefault("content.dir", "content")
	v.SetDefault("content.script_dir", "")
	v.SetDefault("content.script_instruction_limit", 0)
}
