package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/bravo68web/shipyard/internal/config"
	"github.com/bravo68web/shipyard/internal/injectable"
	"github.com/bravo68web/shipyard/internal/server"
	"github.com/bravo68web/shipyard/internal/transport/http/router"
)

func RoutesCommand() *cli.Command {
	return &cli.Command{
		Name:  "routes",
		Usage: "Write the OpenAPI document for every registered route",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "destination file, .json or .yaml",
				Value:   "openapi.yaml",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "port advertised in the servers section",
				Value: 5000,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			// Routes do not touch the database or any remote client
			cfg := &config.Config{
				Server: config.ServerConfig{Mode: "release", Port: int(cmd.Int("port"))},
			}
			s := server.New(cfg, nil)
			router.NewRouter(s, &injectable.Dependencies{}).RegisterRoutes()

			output := cmd.String("output")
			if err := s.OpenAPIGenerator.Generate().SaveToFile(output); err != nil {
				return err
			}

			fmt.Fprintf(cmd.Writer, "wrote %d routes to %s\n", len(s.Routes()), output)
			return nil
		},
	}
}
