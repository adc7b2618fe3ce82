package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/byte4ever/tcframework/views"
)

const (
	envPrefix     = "TCRENDER"
	envConfigFile = envPrefix + "_CONFIG_FILE"
	defaultConfig = ".tcrender"

	keyLogLevel       = "log_level"
	keyStampInfoFiles = "stamp_info_files"
	keyLocalsFiles    = "locals_files"
	keyViewsDir       = "views_dir"
	keyDebounce       = "debounce"
)

type config struct {
	LogLevel       string        `mapstructure:"log_level"`
	StampInfoFiles []string      `mapstructure:"stamp_info_files"`
	LocalsFiles    []string      `mapstructure:"locals_files"`
	ViewsDir       string        `mapstructure:"views_dir"`
	Debounce       time.Duration `mapstructure:"debounce"`
}

// loadConfig reads configuration with this precedence:
//  1. command-line flags
//  2. TCRENDER_* environment variables
//  3. the file named by --config, else TCRENDER_CONFIG_FILE,
//     else .tcrender.yaml in the working directory
//  4. defaults
func loadConfig(v *viper.Viper, cfgFile string) (config, error) {
	const errCtx = "loading config"

	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyViewsDir, views.DefaultDir)
	v.SetDefault(keyDebounce, views.DefaultDebounce)

	explicit := true

	switch {
	case cfgFile != "":
		v.SetConfigFile(cfgFile)
	case os.Getenv(envConfigFile) != "":
		v.SetConfigFile(os.Getenv(envConfigFile))
	default:
		explicit = false

		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(defaultConfig)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return config{}, fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	return cfg, nil
}

// newLogger builds a text logger writing to w at the named
// level (debug, info, warn or error).
func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	return slog.New(
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}),
	), nil
}
