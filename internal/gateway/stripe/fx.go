package stripe

import (
	"github.com/careercraft/careercraft/internal/config"
	"github.com/careercraft/careercraft/internal/entitlement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provide(cfg config.Config, log *zap.Logger) domain.Gateway {
	return New(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.GatewayTimeout, log)
}

var Module = fx.Module("gateway.stripe",
	fx.Provide(provide),
)
