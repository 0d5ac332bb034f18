// Package options contains flags and helpers shared by CLI commands.
package options

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/quanta-labs/quanta-go/pkg/config"
)

// Config is the flag pointing at the configuration file.
var Config = cli.StringFlag{
	Name:  "config-path, c",
	Usage: "path to the configuration file",
	Value: "./config/config.yml",
}

// Debug is the flag forcing debug-level logging.
var Debug = cli.BoolFlag{
	Name:  "debug, d",
	Usage: "enable debug logging",
}

// GetConfigFromContext reads the configuration named by the config flag.
func GetConfigFromContext(ctx *cli.Context) (config.Config, error) {
	return config.Load(ctx.String("config-path"))
}

// HandleLoggingParams builds a logger from the configuration. If the user
// selected debug mode it overrides the configured level. When LogPath is
// set, log output goes to that file and the directory is created as
// needed.
func HandleLoggingParams(debug bool, cfg config.ApplicationConfiguration) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if len(cfg.LogLevel) > 0 {
		var err error
		level, err = zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("log setting: %w", err)
		}
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = "console"
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil

	if logPath := cfg.LogPath; logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return nil, fmt.Errorf("log setting: %w", err)
		}
		cc.OutputPaths = []string{logPath}
	}

	return cc.Build()
}
