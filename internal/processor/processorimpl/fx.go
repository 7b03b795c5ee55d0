package processorimpl

import (
	"github.com/orgball2608/insta-media-pipeline/internal/processor"
	"go.uber.org/fx"
)

var Module = fx.Module("processor",
	fx.Provide(
		fx.Annotate(
			New,
			fx.As(new(processor.Client)),
		),
	),
)
