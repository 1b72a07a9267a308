package category

import (
	"go.uber.org/fx"

	"github.com/benalexplus/mrpbridge/internal/category/repository"
	"github.com/benalexplus/mrpbridge/internal/category/service"
)

// Module wires the category repository and service.
var Module = fx.Module("category",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
