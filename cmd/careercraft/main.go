package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/careercraft/careercraft/internal/clock"
	"github.com/careercraft/careercraft/internal/config"
	"github.com/careercraft/careercraft/internal/logger"
	"github.com/careercraft/careercraft/internal/migration"
	"github.com/careercraft/careercraft/internal/observability"
	"github.com/careercraft/careercraft/internal/server"
	"github.com/careercraft/careercraft/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
