package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/jward/boxify/internal/catalog"
	"github.com/jward/boxify/internal/extract"
	"github.com/jward/boxify/internal/resolve"
)

const (
	// AppName is the application name.
	AppName = "boxify"
	// ConfigFileName is the default config file looked up in the working directory.
	ConfigFileName = "boxify.toml"
	// EnvPrefix prefixes every environment override (BOXIFY_CATALOG, ...).
	EnvPrefix = "BOXIFY"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Operator maps a non-standard infix operator to its package.
type Operator struct {
	Token   string `mapstructure:"token" toml:"token" json:"token"`
	Package string `mapstructure:"package" toml:"package" json:"package"`
}

// Config is the effective boxify configuration.
type Config struct {
	// Catalog is the catalog location: a CSV path or URL, or a SQLite snapshot.
	Catalog string `mapstructure:"catalog" toml:"catalog" json:"catalog"`
	// FallbackTail is ranked after every package a script loads.
	FallbackTail []string `mapstructure:"fallback_tail" toml:"fallback_tail" json:"fallback_tail"`
	// LoadFunctions are the functions whose calls are load directives.
	LoadFunctions []string `mapstructure:"load_functions" toml:"load_functions" json:"load_functions"`
	// Operators is the non-standard operator table.
	Operators []Operator `mapstructure:"operators" toml:"operators" json:"operators"`
	// Hook is an optional Risor script run after resolution.
	Hook string `mapstructure:"hook" toml:"hook" json:"hook"`
	// LocalLibDir is reserved; it is accepted and ignored.
	LocalLibDir string `mapstructure:"local_lib_dir" toml:"local_lib_dir" json:"local_lib_dir"`
	// Parallel bounds batch workers; 0 means one per CPU.
	Parallel int `mapstructure:"parallel" toml:"parallel" json:"parallel"`
	// Quiet suppresses diagnostics.
	Quiet bool `mapstructure:"quiet" toml:"quiet" json:"quiet"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	var ops []Operator
	for _, op := range extract.DefaultOperators() {
		ops = append(ops, Operator{Token: op.Token, Package: op.Package})
	}
	return &Config{
		Catalog:       catalog.DefaultLocation,
		FallbackTail:  resolve.DefaultFallbackTail(),
		LoadFunctions: extract.DefaultLoadFunctions(),
		Operators:     ops,
	}
}

// LoadOptions selects where configuration is read from.
type LoadOptions struct {
	// ConfigFilePath, when set, must exist and is used exclusively.
	ConfigFilePath string
	// Dir is searched for boxify.toml when ConfigFilePath is empty.
	// Defaults to the working directory.
	Dir string
}

// Load reads the configuration. It returns the config and the path of the
// file it came from, empty when only defaults and environment applied.
func Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("config: load canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("catalog", defaults.Catalog)
	v.SetDefault("fallback_tail", defaults.FallbackTail)
	v.SetDefault("load_functions", defaults.LoadFunctions)
	v.SetDefault("operators", defaults.operatorMaps())
	v.SetDefault("hook", defaults.Hook)
	v.SetDefault("local_lib_dir", defaults.LocalLibDir)
	v.SetDefault("parallel", defaults.Parallel)
	v.SetDefault("quiet", defaults.Quiet)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := opts.ConfigFilePath
	if resolvedPath != "" {
		if !fileExists(resolvedPath) {
			return nil, "", fmt.Errorf("config: file not found: %s", resolvedPath)
		}
	} else if local := filepath.Join(opts.Dir, ConfigFileName); fileExists(local) {
		resolvedPath = local
	}

	if resolvedPath != "" {
		v.SetConfigFile(resolvedPath)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("config: read %s: %w", resolvedPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, resolvedPath, nil
}

// Validate checks values viper cannot.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Catalog) == "" {
		return fmt.Errorf("config: %w: catalog must not be empty", ErrInvalidConfig)
	}
	if c.Parallel < 0 {
		return fmt.Errorf("config: %w: parallel must not be negative, got %d", ErrInvalidConfig, c.Parallel)
	}
	for i, op := range c.Operators {
		if op.Token == "" || op.Package == "" {
			return fmt.Errorf("config: %w: operators[%d] needs both token and package", ErrInvalidConfig, i)
		}
	}
	return nil
}

// ExtractOperators converts the operator table for the extractor.
func (c *Config) ExtractOperators() []extract.Operator {
	ops := make([]extract.Operator, len(c.Operators))
	for i, op := range c.Operators {
		ops[i] = extract.Operator{Token: op.Token, Package: op.Package}
	}
	return ops
}

// TOML renders the config as a TOML document.
func (c *Config) TOML() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("config: render toml: %w", err)
	}
	return data, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the
// process environment without overriding existing variables. Missing files
// are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var present []string
	for _, p := range paths {
		if fileExists(p) {
			present = append(present, p)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("config: load env: %w", err)
	}
	return nil
}

func (c *Config) operatorMaps() []map[string]any {
	out := make([]map[string]any, len(c.Operators))
	for i, op := range c.Operators {
		out[i] = map[string]any{"token": op.Token, "package": op.Package}
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
