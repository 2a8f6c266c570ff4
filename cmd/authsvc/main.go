// @title                       User Management Service
// @version                     1.0
// @description                 User registration, password login and bearer-token authentication.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/99minutos/auth-service/internal/app"
	"github.com/99minutos/auth-service/internal/infrastructure/config"
	"github.com/99minutos/auth-service/pkg/logger"
)

func main() {
	cliApp := &cli.App{
		Name:  "authsvc",
		Usage: "User registration and token authentication service",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Dotenv file(s) loaded before reading the environment",
				Value: cli.NewStringSlice(".env"),
			},
		},
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("Application failed")
		cancel()
		os.Exit(1)
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Apply migrations and run the HTTP server",
		Action: func(c *cli.Context) error {
			cfg, lg, err := bootstrap(c)
			if err != nil {
				return err
			}
			a, err := app.New(c.Context, cfg, lg)
			if err != nil {
				return err
			}
			return a.Run(c.Context)
		},
	}
}

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending schema migrations and exit",
		Action: func(c *cli.Context) error {
			cfg, lg, err := bootstrap(c)
			if err != nil {
				return err
			}
			if err := app.Migrate(c.Context, cfg, lg); err != nil {
				return err
			}
			lg.Info().Str("driver", cfg.DB.Driver).Msg("migrations complete")
			return nil
		},
	}
}

func bootstrap(c *cli.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(c.Context, c.StringSlice("env-file")...)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	lg := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "authsvc",
	})
	return cfg, lg, nil
}
