package user

import (
	"github.com/careercraft/careercraft/internal/user/repository"
	"github.com/careercraft/careercraft/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
