package finderimpl

import (
	"github.com/orgball2608/insta-media-pipeline/internal/finder"
	"go.uber.org/fx"
)

var Module = fx.Module("finder",
	fx.Provide(
		fx.Annotate(
			New,
			fx.As(new(finder.Client)),
		),
	),
)
