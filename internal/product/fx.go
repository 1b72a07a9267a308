package product

import (
	"go.uber.org/fx"

	"github.com/benalexplus/mrpbridge/internal/product/repository"
	"github.com/benalexplus/mrpbridge/internal/product/service"
)

// Module wires the product repository and service.
var Module = fx.Module("product",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
