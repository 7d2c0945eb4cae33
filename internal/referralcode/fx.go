package referralcode

import (
	"github.com/coworklabs/perks/internal/referralcode/repository"
	"github.com/coworklabs/perks/internal/referralcode/service"
	"go.uber.org/fx"
)

var Module = fx.Module("referralcode.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
