package counterpart

import (
	"go.uber.org/fx"

	"github.com/benalexplus/mrpbridge/internal/counterpart/repository"
	"github.com/benalexplus/mrpbridge/internal/counterpart/service"
)

// Module wires the counterpart repository and service.
var Module = fx.Module("counterpart",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
