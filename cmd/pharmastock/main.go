package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/johnwalle/pharma-stock-api/internal/clock"
	"github.com/johnwalle/pharma-stock-api/internal/config"
	"github.com/johnwalle/pharma-stock-api/internal/logger"
	"github.com/johnwalle/pharma-stock-api/internal/migration"
	"github.com/johnwalle/pharma-stock-api/internal/scheduler"
	"github.com/johnwalle/pharma-stock-api/internal/server"
	"github.com/johnwalle/pharma-stock-api/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		server.Module,
		scheduler.Module,
		migration.Module,
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
