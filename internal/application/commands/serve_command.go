package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/bravo68web/shipyard/internal/infrastructure/database"
	"github.com/bravo68web/shipyard/internal/injectable"
	"github.com/bravo68web/shipyard/internal/server"
	"github.com/bravo68web/shipyard/internal/transport/http/router"
	"github.com/bravo68web/shipyard/pkg/logger"
)

func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "migrate",
				Usage: "apply pending migrations before serving",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, closeLogger, err := bootstrap(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeLogger()

			log := logger.Get().WithFields(logger.Component("serve"))

			db, err := database.NewDatabase(&cfg.Database)
			if err != nil {
				return err
			}

			if cmd.Bool("migrate") {
				if err := database.NewMigrator(db).ApplyMigrations(ctx); err != nil {
					db.Close()
					return err
				}
			}

			deps, err := injectable.LoadDependencies(ctx, cfg, db)
			if err != nil {
				db.Close()
				return err
			}

			s := server.New(cfg, db)
			router.NewRouter(s, deps).RegisterRoutes()

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := deps.Reaper.Start(ctx); err != nil {
				db.Close()
				return err
			}

			// in-flight deployments finish before the database closes
			s.OnShutdown(func(ctx context.Context) error {
				if err := deps.Reaper.Stop(ctx); err != nil {
					return fmt.Errorf("stop deployment reaper: %w", err)
				}
				if err := deps.Runner.Shutdown(ctx); err != nil {
					return fmt.Errorf("drain background tasks: %w", err)
				}
				return nil
			})

			if err := s.Run(ctx); err != nil {
				log.Error("Server exited with error", logger.Error(err))
				return err
			}
			return nil
		},
	}
}
