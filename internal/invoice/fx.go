package invoice

import (
	"go.uber.org/fx"

	"github.com/benalexplus/mrpbridge/internal/invoice/repository"
	"github.com/benalexplus/mrpbridge/internal/invoice/service"
)

// Module wires the invoice repository and service.
var Module = fx.Module("invoice",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
