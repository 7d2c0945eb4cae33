package directory

import (
	"github.com/coworklabs/perks/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the member directory client. Without a configured base
// URL the noop client is used.
var Module = fx.Module("providers.directory",
	fx.Provide(func(cfg config.Config, log *zap.Logger) Provider {
		if cfg.Directory.BaseURL == "" {
			log.Warn("directory base url not set, using noop directory client")
			return &NoOpProvider{}
		}
		return NewREST(cfg.Directory, log)
	}),
)
