package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/coworklabs/perks/internal/clock"
	"github.com/coworklabs/perks/internal/config"
	"github.com/coworklabs/perks/internal/logger"
	"github.com/coworklabs/perks/internal/metrics"
	"github.com/coworklabs/perks/internal/migration"
	"github.com/coworklabs/perks/internal/providers/banktransfer"
	"github.com/coworklabs/perks/internal/providers/directory"
	"github.com/coworklabs/perks/internal/referral"
	"github.com/coworklabs/perks/internal/referralcode"
	"github.com/coworklabs/perks/internal/reward"
	"github.com/coworklabs/perks/internal/scheduler"
	"github.com/coworklabs/perks/internal/server"
	"github.com/coworklabs/perks/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		metrics.Module,
		migration.Module,

		// External collaborators
		directory.Module,
		banktransfer.Module,

		// Referral program domains
		referralcode.Module,
		referral.Module,
		reward.Module,

		// Surfaces
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
