package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/emitia/nfse-backoffice/internal/observability"
	"github.com/emitia/nfse-backoffice/internal/server"
	"github.com/emitia/nfse-backoffice/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
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
