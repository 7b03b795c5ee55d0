package telegramimpl

import (
	"github.com/orgball2608/insta-media-pipeline/internal/notifier"
	"github.com/orgball2608/insta-media-pipeline/pkg/config"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"go.uber.org/fx"
)

// Module provides the telegram notifier when a bot token is configured and
// a silent no-op otherwise, so the batch controller never has to care.
var Module = fx.Module("notifier",
	fx.Provide(
		fx.Annotate(
			func(cfg *config.Config, log logger.Logger) (notifier.Client, error) {
				if cfg.Telegram.Token == "" {
					return NewNoop(log), nil
				}
				return New(Opts{Config: cfg, Logger: log})
			},
		),
	),
)
