package application

import (
	"github.com/careercraft/careercraft/internal/application/repository"
	"github.com/careercraft/careercraft/internal/application/service"
	"go.uber.org/fx"
)

var Module = fx.Module("application.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
