package referral

import (
	"github.com/coworklabs/perks/internal/referral/repository"
	"github.com/coworklabs/perks/internal/referral/service"
	"go.uber.org/fx"
)

var Module = fx.Module("referral.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
