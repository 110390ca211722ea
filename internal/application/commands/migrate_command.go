package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/bravo68web/shipyard/internal/infrastructure/database"
)

func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply the versioned database migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "print pending statements without executing them",
			},
			&cli.BoolFlag{
				Name:  "status",
				Usage: "show the migration status and exit",
			},
			&cli.StringFlag{
				Name:  "baseline",
				Usage: "version to baseline an existing schema at",
			},
			&cli.BoolFlag{
				Name:  "auto",
				Usage: "create the schema straight from the models (development only)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, closeLogger, err := bootstrap(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeLogger()

			db, err := database.NewDatabase(&cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if cmd.Bool("auto") {
				if cfg.IsProduction() {
					return fmt.Errorf("auto-migration is disabled in production")
				}
				return db.AutoMigrate(ctx)
			}

			migrator := database.NewMigrator(db).
				WithDryRun(cmd.Bool("dry-run")).
				WithBaseline(cmd.String("baseline"))

			if cmd.Bool("status") {
				status, err := migrator.Status(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.Writer, "status:  %s\ncurrent: %s\nnext:    %s\npending: %d\n",
					status.Status, status.Current, status.Next, len(status.Pending))
				return nil
			}

			return migrator.ApplyMigrations(ctx)
		},
	}
}
