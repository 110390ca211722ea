package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/bravo68web/shipyard/internal/config"
	"github.com/bravo68web/shipyard/internal/infrastructure/otel"
	"github.com/bravo68web/shipyard/internal/server"
	"github.com/bravo68web/shipyard/pkg/logger"
)

type CommandRegistry struct {
}

func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{}
}

func (*CommandRegistry) RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:                  "shipyard",
		Usage:                 "Deploy GitHub repositories and track their status",
		Version:               server.Version,
		Suggest:               true,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
		},
		Action: RootCommand(),
		Commands: []*cli.Command{
			ServeCommand(),
			MigrateCommand(),
			RoutesCommand(),
		},
	}
}

func RootCommand() cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cmd.Writer.Write([]byte("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"))
		cmd.Writer.Write([]byte("Welcome to Shipyard!\n"))
		cmd.Writer.Write([]byte("Use 'shipyard --help' to see available commands.\n"))
		cmd.Writer.Write([]byte("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"))
		return nil
	}
}

// bootstrap loads the configuration and installs the global logger.
// The returned func flushes and closes the logger.
func bootstrap(ctx context.Context, cmd *cli.Command) (*config.Config, func(), error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, err
	}

	log, err := otel.NewLogger(ctx, cfg, server.Version)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetGlobal(log)

	return cfg, func() {
		if err := log.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close logger: %v\n", err)
		}
	}, nil
}
