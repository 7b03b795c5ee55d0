package nodescraper

import (
	"go.uber.org/fx"
)

var Module = fx.Module("nodescraper",
	fx.Provide(New),
)
