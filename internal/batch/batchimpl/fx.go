package batchimpl

import (
	"github.com/orgball2608/insta-media-pipeline/internal/batch"
	"go.uber.org/fx"
)

var Module = fx.Module("batch",
	fx.Provide(
		fx.Annotate(
			New,
			fx.As(new(batch.Client)),
		),
	),
)
