package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	app "github.com/rocketscienceinc/tictactoe-client/internal"
	"github.com/rocketscienceinc/tictactoe-client/internal/config"
)

// main - is the entry point of the application. It parses flags, initializes the configuration and logger, and runs the client.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	cmd := &cli.Command{
		Name:  "tictactoe",
		Usage: "play tic-tac-toe against another player through a relay",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yml",
				Usage:   "path to the yml config; the environment is used when it does not exist",
			},
			&cli.StringFlag{
				Name:    "endpoint",
				Aliases: []string{"e"},
				Usage:   "relay websocket url, overrides the configured one",
			},
			&cli.StringFlag{
				Name:    "profile",
				Aliases: []string{"p"},
				Usage:   "identity profile to play as",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

func run(_ context.Context, cmd *cli.Command) error {
	conf, err := loadConfig(cmd.String("config"), cmd.IsSet("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if profile := cmd.String("profile"); profile != "" {
		conf.Profile = profile
	}

	logger := initLogger(conf)
	endpoint := config.ResolveEndpoint(cmd.String("endpoint"), conf)

	return app.RunApp(logger, conf, endpoint)
}

// loadConfig requires a file the user named explicitly; the default path may be absent.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	if explicit {
		return config.MustLoad(path), nil
	}

	return config.Load(path)
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
