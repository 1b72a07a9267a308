package stockmovement

import (
	"go.uber.org/fx"

	"github.com/benalexplus/mrpbridge/internal/stockmovement/repository"
)

// Module wires the stock movement repository.
var Module = fx.Module("stockmovement",
	fx.Provide(repository.Provide),
)
