package entitlement

import (
	"github.com/careercraft/careercraft/internal/entitlement/repository"
	"github.com/careercraft/careercraft/internal/entitlement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("entitlement.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
