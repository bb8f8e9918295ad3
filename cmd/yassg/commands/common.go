package commands

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"git.home.luguber.info/inful/yassg/internal/config"
	"git.home.luguber.info/inful/yassg/internal/errors"
	"git.home.luguber.info/inful/yassg/internal/logfields"
)

// LogLevelEnv overrides the log level (debug, info, warn, error).
const LogLevelEnv = "YASSG_LOG_LEVEL"

// Global is passed to every command's Run method.
type Global struct {
	Ctx    context.Context
	Logger *slog.Logger
	Out    io.Writer
}

func (g *Global) runContext() context.Context {
	if g.Ctx == nil {
		return context.Background()
	}
	return g.Ctx
}

func (g *Global) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

func (g *Global) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config  string `short:"C" name:"config" help:"Configuration file (TOML, or YAML by extension)" default:"yassg.toml" env:"YASSG_CONFIG"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build   BuildCmd   `cmd:"" help:"Render the content directory into the build directory"`
	Tree    TreeCmd    `cmd:"" help:"Print the page tree"`
	Check   CheckCmd   `cmd:"" help:"Check links of a rendered site"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration and content directory"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel honors -v first, then YASSG_LOG_LEVEL.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(LogLevelEnv))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadConfig loads path. A missing default configuration file falls back
// to the built-in defaults relative to the working directory.
func loadConfig(path string, logger *slog.Logger) (*config.Config, error) {
	cfg, err := config.Load(path)
	switch {
	case err == nil:
		return cfg, nil
	case stderrors.Is(err, config.ErrNotFound) && path == config.DefaultFile:
		logger.Debug("No configuration file, using defaults", logfields.Path(path))
		if err := config.LoadEnv("."); err != nil {
			return nil, errors.ConfigInvalid(".env", err)
		}
		return config.Defaults(), nil
	case stderrors.Is(err, config.ErrNotFound):
		return nil, errors.ConfigNotFound(path)
	default:
		return nil, errors.ConfigInvalid(path, err)
	}
}
