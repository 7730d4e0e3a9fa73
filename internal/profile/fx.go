package profile

import (
	"github.com/careercraft/careercraft/internal/profile/repository"
	"github.com/careercraft/careercraft/internal/profile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("profile.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
