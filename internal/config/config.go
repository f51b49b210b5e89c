// Package config loads the layered tool configuration: flags override
// environment variables, which override an optional config file, which
// overrides built-in defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Model    ModelConfig  `mapstructure:"model"`
	Cache    CacheConfig  `mapstructure:"cache"`
	Output   OutputConfig `mapstructure:"output"`
	LogLevel string       `mapstructure:"log_level"`
}

type ModelConfig struct {
	// Name is the tokenizer model or base encoding identifier.
	Name string `mapstructure:"name"`
	// FallbackEncoding, when set, is used for unrecognized model names
	// instead of failing. Empty keeps unknown models an error.
	FallbackEncoding string `mapstructure:"fallback_encoding"`
}

type CacheConfig struct {
	// Dir overrides the vocabulary cache directory. Empty selects the
	// per-user cache dir.
	Dir string `mapstructure:"dir"`
	// Offline forbids vocabulary fetches; only cached tables are used.
	Offline bool `mapstructure:"offline"`
	// FetchTimeout bounds a single vocabulary table fetch.
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

type OutputConfig struct {
	Color  string `mapstructure:"color"`
	Format string `mapstructure:"format"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Model: ModelConfig{
			Name:             "gpt-4o",
			FallbackEncoding: "",
		},
		Cache: CacheConfig{
			Dir:          "",
			Offline:      false,
			FetchTimeout: 30 * time.Second,
		},
		Output: OutputConfig{
			Color:  ColorAuto,
			Format: FormatText,
		},
		LogLevel: "warn",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("model", defaults.Model.Name, "Tokenizer model or encoding name")
	fs.String("fallback-encoding", defaults.Model.FallbackEncoding,
		"Base encoding to use when the model name is unrecognized (off by default)")
	fs.String("cache-dir", defaults.Cache.Dir, "Vocabulary cache directory")
	fs.Bool("offline", defaults.Cache.Offline, "Never fetch vocabulary tables; use the cache only")
	fs.Duration("fetch-timeout", defaults.Cache.FetchTimeout, "Timeout for a vocabulary table fetch")
	fs.String("color", defaults.Output.Color, "Color output: auto|always|never")
	fs.String("format", defaults.Output.Format, "Output format: text|json")
	fs.String("log-level", defaults.LogLevel, "Log level: debug|info|warn|error")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("QUICKTOKEN")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("quicktoken")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if _, err := NormalizeColorMode(cfg.Output.Color); err != nil {
		return Config{}, err
	}
	if _, err := NormalizeFormat(cfg.Output.Format); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("model.name", c.Model.Name)
	v.SetDefault("model.fallback_encoding", c.Model.FallbackEncoding)
	v.SetDefault("cache.dir", c.Cache.Dir)
	v.SetDefault("cache.offline", c.Cache.Offline)
	v.SetDefault("cache.fetch_timeout", c.Cache.FetchTimeout)
	v.SetDefault("output.color", c.Output.Color)
	v.SetDefault("output.format", c.Output.Format)
	v.SetDefault("log_level", c.LogLevel)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("model.name", "model")
	v.RegisterAlias("model.fallback_encoding", "fallback-encoding")
	v.RegisterAlias("cache.dir", "cache-dir")
	v.RegisterAlias("cache.offline", "offline")
	v.RegisterAlias("cache.fetch_timeout", "fetch-timeout")
	v.RegisterAlias("output.color", "color")
	v.RegisterAlias("output.format", "format")
	v.RegisterAlias("log_level", "log-level")
}
