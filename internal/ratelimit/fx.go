package ratelimit

import (
	"github.com/orgball2608/insta-media-pipeline/pkg/config"
	"go.uber.org/fx"
)

var Module = fx.Module("ratelimit",
	fx.Provide(
		fx.Annotate(
			func(cfg *config.Config) *ProviderPacer {
				return NewProviderPacer(cfg.GraphAPI.PageDelay)
			},
			fx.As(new(Pacer)),
		),
	),
)
