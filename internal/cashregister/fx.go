package cashregister

import (
	"go.uber.org/fx"

	"github.com/benalexplus/mrpbridge/internal/cashregister/repository"
	"github.com/benalexplus/mrpbridge/internal/cashregister/service"
)

// Module wires the cash register repository and service.
var Module = fx.Module("cashregister",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
