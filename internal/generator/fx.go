package generator

import (
	"github.com/careercraft/careercraft/internal/generator/domain"
	"github.com/careercraft/careercraft/internal/generator/local"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provide(log *zap.Logger) domain.Generator {
	return local.NewComposer(log)
}

var Module = fx.Module("generator",
	fx.Provide(provide),
)
