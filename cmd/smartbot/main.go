package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/smartbot-tech/smartbot/pkg/history"
)

var (
	configPath string
	logLevel   string
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to the JSON config file",
			Value:       "./config.json",
			Destination: &configPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error); overrides the config file",
			Destination: &logLevel,
		},
	}
}

func main() {
	app := &cli.Command{
		Name:  "smartbot",
		Usage: "n-gram text continuation console and API",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			replCmd(),
			serveCmd(),
			versionCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the config, builds the logger, opens the database, and wires
// a Session. The returned cleanup closes the store and database.
func setup() (*Session, *Config, *slog.Logger, func(), error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := config.Server.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(level)}))

	if err = os.MkdirAll(config.Server.DataDir, 0o755); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	db, err := initDB(config.Server.DatabasePath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = history.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, nil, nil, fmt.Errorf("failed to set up history schema: %w", err)
	}

	store, err := history.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, nil, nil, fmt.Errorf("failed to create history store: %w", err)
	}
	store.SetLogger(logger)

	session := NewSession(config, store, logger)
	cleanup := func() {
		store.Close()
		closeDB(db, logger)
	}
	return session, config, logger, cleanup, nil
}

func closeDB(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("Failed to close database", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
