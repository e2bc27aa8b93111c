package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/kode4food/courier/internal/commands"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	if err := setupLogger("info", "", nil); err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		flags        = &commands.Flags{}
		deferredLogs *commands.DeferredWriter
	)

	app := &cli.Command{
		Name:      "pingpong",
		Usage:     "Exchange pings and pongs over in-process courier topics",
		UsageText: "pingpong [global options] command [command options]",
		Description: `pingpong runs the example applications of the courier library.

'run' pairs a wait set driven pinger with a ponger. 'daemon' pings on a
timer and receives pongs through a listener. 'monitor' shows the responder's
view of the exchange in a terminal UI.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("PINGPONG_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (optional)",
				Sources:     cli.EnvVars("PINGPONG_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("PINGPONG_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.BoolFlag{
				Name:        "unique-senders",
				Usage:       "suffix every sender id with a unique id",
				Sources:     cli.EnvVars("PINGPONG_UNIQUE_SENDERS"),
				Destination: &flags.UniqueSenders,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// The monitor owns the terminal, so its logs are buffered until it exits
			var deferred io.Writer
			if c.Args().First() == "monitor" {
				deferredLogs = &commands.DeferredWriter{}
				deferred = deferredLogs
			}

			if err := setupLogger(flags.LogLevel, flags.LogFile, deferred); err != nil {
				return ctx, err
			}

			return ctx, flags.LoadConfig()
		},
	}

	app = commands.NewRunCmd(flags).Register(app)
	app = commands.NewDaemonCmd(flags).Register(app)
	app = commands.NewMonitorCmd(flags).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("command failed")
		exitCode = 1
	}

	// Flush deferred logs to console after the monitor exits
	if deferredLogs != nil {
		if err := deferredLogs.Flush(zerolog.ConsoleWriter{Out: os.Stderr}); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
		}
	}

	stop()
	os.Exit(exitCode)
}

func setupLogger(level string, logFile string, deferred io.Writer) error {
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	var output io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}

	if logFile != "" {
		logDir := filepath.Dir(logFile)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}

		if deferred != nil {
			output = io.MultiWriter(file, deferred)
		} else {
			output = io.MultiWriter(
				zerolog.ConsoleWriter{Out: os.Stderr},
				file,
			)
		}
	} else if deferred != nil {
		output = deferred
	}

	log.Logger = log.Output(output).Level(parsedLevel)

	// The courier library logs its own diagnostics through slog. Its records
	// are encoded with zerolog's field names so both share one output
	slog.SetDefault(slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level:       slogLevel(parsedLevel),
		ReplaceAttr: zerologAttr,
	})))

	return nil
}

func zerologAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) != 0 {
		return a
	}
	switch a.Key {
	case slog.MessageKey:
		a.Key = zerolog.MessageFieldName
	case slog.TimeKey:
		a.Key = zerolog.TimestampFieldName
	case slog.LevelKey:
		a.Key = zerolog.LevelFieldName
		a.Value = slog.StringValue(strings.ToLower(a.Value.String()))
	}
	return a
}

func slogLevel(l zerolog.Level) slog.Level {
	switch {
	case l <= zerolog.DebugLevel:
		return slog.LevelDebug
	case l == zerolog.InfoLevel:
		return slog.LevelInfo
	case l == zerolog.WarnLevel:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
