package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentflow/internal/clock"
	"github.com/smallbiznis/rentflow/internal/config"
	"github.com/smallbiznis/rentflow/internal/migration"
	"github.com/smallbiznis/rentflow/internal/scheduler"
	"github.com/smallbiznis/rentflow/internal/server"
	"github.com/smallbiznis/rentflow/pkg/db"
	"github.com/smallbiznis/rentflow/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
		scheduler.Module,
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
