package replicateimpl

import (
	"github.com/orgball2608/insta-media-pipeline/internal/upscale"
	"go.uber.org/fx"
)

var Module = fx.Module("upscaler",
	fx.Provide(
		fx.Annotate(
			New,
			fx.As(new(upscale.Upscaler)),
		),
	),
)
