package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/promptinvoice/internal/clock"
	"github.com/smallbiznis/promptinvoice/internal/config"
	"github.com/smallbiznis/promptinvoice/internal/observability"
	"github.com/smallbiznis/promptinvoice/internal/server"
	"github.com/smallbiznis/promptinvoice/pkg/db"
	"go.uber.org/fx"
)

// API only. Schema migrations are applied by `promptinvoice migrate`.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
