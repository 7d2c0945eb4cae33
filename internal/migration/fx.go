package migration

import (
	"github.com/coworklabs/perks/internal/config"
	referraldomain "github.com/coworklabs/perks/internal/referral/domain"
	codedomain "github.com/coworklabs/perks/internal/referralcode/domain"
	rewarddomain "github.com/coworklabs/perks/internal/reward/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		// sqlite development databases are migrated in place.
		return conn.AutoMigrate(
			&codedomain.ReferralCode{},
			&codedomain.ReferredUser{},
			&referraldomain.Referral{},
			&rewarddomain.Reward{},
		)
	}),
)
