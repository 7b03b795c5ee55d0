package s3impl

import (
	"github.com/orgball2608/insta-media-pipeline/internal/storage"
	"go.uber.org/fx"
)

var Module = fx.Module("s3_storage",
	fx.Provide(
		fx.Annotate(
			New,
			fx.As(new(storage.Uploader)),
		),
	),
)
