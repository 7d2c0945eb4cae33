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
	"github.com/coworklabs/perks/pkg/db"
	"go.uber.org/fx"
)

// Settlement-only process. No HTTP server; the scheduler loop is the sole
// driver.
func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		metrics.Module,
		migration.Module,

		directory.Module,
		banktransfer.Module,

		referralcode.Module,
		referral.Module,
		reward.Module,

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
