package banktransfer

import (
	"github.com/coworklabs/perks/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the bank transfer client. Without a configured base URL
// the noop client is used.
var Module = fx.Module("providers.banktransfer",
	fx.Provide(func(cfg config.Config, log *zap.Logger) Provider {
		if cfg.BankTransfer.BaseURL == "" {
			log.Warn("bank transfer base url not set, using noop transfer client")
			return &NoOpProvider{}
		}
		return NewREST(cfg.BankTransfer, log)
	}),
)
