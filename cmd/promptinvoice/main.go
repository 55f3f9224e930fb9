package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authservice "github.com/smallbiznis/promptinvoice/internal/auth/service"
	"github.com/smallbiznis/promptinvoice/internal/clock"
	"github.com/smallbiznis/promptinvoice/internal/config"
	"github.com/smallbiznis/promptinvoice/internal/migration"
	"github.com/smallbiznis/promptinvoice/internal/observability"
	"github.com/smallbiznis/promptinvoice/internal/server"
	"github.com/smallbiznis/promptinvoice/pkg/db"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
)

func main() {
	app := &cli.App{
		Name:  "promptinvoice",
		Usage: "prompt-driven GST invoice service",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "apply migrations and run the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations and exit",
				Action: migrate,
			},
			{
				Name:  "token",
				Usage: "issue a development bearer token signed with AUTH_JWT_SECRET",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Usage: "user id for the sub claim", Required: true},
					&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour, Usage: "token lifetime"},
				},
				Action: token,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(*cli.Context) error {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,
		server.Module,
	)
	if err := app.Err(); err != nil {
		return err
	}
	app.Run()
	return nil
}

func migrate(c *cli.Context) error {
	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		migration.Module,
		fx.NopLogger,
	)
	if err := app.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, time.Minute)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		return err
	}
	return app.Stop(ctx)
}

func token(c *cli.Context) error {
	cfg := config.Load()
	if cfg.IsProduction() {
		return errors.New("refusing to issue tokens in production")
	}
	secret := strings.TrimSpace(cfg.AuthJWTSecret)
	if secret == "" {
		return errors.New("AUTH_JWT_SECRET is not set")
	}

	signed, err := authservice.Sign(secret, c.String("user"), c.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, signed)
	return nil
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
