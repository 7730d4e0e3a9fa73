package server

import (
	"context"
	"net/http"
	"time"

	"github.com/careercraft/careercraft/internal/application"
	applicationdomain "github.com/careercraft/careercraft/internal/application/domain"
	"github.com/careercraft/careercraft/internal/config"
	"github.com/careercraft/careercraft/internal/entitlement"
	entitlementdomain "github.com/careercraft/careercraft/internal/entitlement/domain"
	stripegateway "github.com/careercraft/careercraft/internal/gateway/stripe"
	"github.com/careercraft/careercraft/internal/generator"
	obslogger "github.com/careercraft/careercraft/internal/observability/logger"
	obsmetrics "github.com/careercraft/careercraft/internal/observability/metrics"
	obstracing "github.com/careercraft/careercraft/internal/observability/tracing"
	"github.com/careercraft/careercraft/internal/profile"
	profiledomain "github.com/careercraft/careercraft/internal/profile/domain"
	"github.com/careercraft/careercraft/internal/ratelimit"
	"github.com/careercraft/careercraft/internal/user"
	userdomain "github.com/careercraft/careercraft/internal/user/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	ratelimit.Module,
	stripegateway.Module,
	generator.Module,
	entitlement.Module,
	user.Module,
	profile.Module,
	application.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	db             *gorm.DB
	log            *zap.Logger
	userSvc        userdomain.Service
	entitlementSvc entitlementdomain.Service
	profileSvc     profiledomain.Service
	applicationSvc applicationdomain.Service
	gateway        entitlementdomain.Gateway
	metrics        *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	DB             *gorm.DB
	Log            *zap.Logger
	UserSvc        userdomain.Service
	EntitlementSvc entitlementdomain.Service
	ProfileSvc     profiledomain.Service
	ApplicationSvc applicationdomain.Service
	Gateway        entitlementdomain.Gateway
	Metrics        *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		log:            p.Log.Named("http.server"),
		userSvc:        p.UserSvc,
		entitlementSvc: p.EntitlementSvc,
		profileSvc:     p.ProfileSvc,
		applicationSvc: p.ApplicationSvc,
		gateway:        p.Gateway,
		metrics:        p.Metrics,
	}

	svc.registerAPIRoutes()
	svc.registerWebhookRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.UserRequired())

	api.GET("/entitlement", s.GetSubscription)
	api.POST("/subscriptions", s.ChangeTier)
	api.POST("/subscriptions/cancel", s.CancelSubscription)
	api.POST("/subscriptions/confirm", s.ConfirmPayment)

	api.POST("/applications/generate", s.GenerateApplication)
	api.GET("/applications", s.ListApplications)
	api.PATCH("/applications/:id/status", s.UpdateApplicationStatus)
	api.POST("/applications/:id/interview-prep", s.InterviewPrep)

	api.GET("/profile", s.GetProfile)
	api.PUT("/profile", s.SaveProfile)
	api.POST("/profile/experience", s.AddExperience)
	api.PUT("/profile/experience/:id", s.UpdateExperience)
	api.DELETE("/profile/experience/:id", s.RemoveExperience)
	api.POST("/profile/education", s.AddEducation)
	api.PUT("/profile/education/:id", s.UpdateEducation)
	api.DELETE("/profile/education/:id", s.RemoveEducation)
}

func (s *Server) registerWebhookRoutes() {
	s.engine.POST("/webhooks/payment", s.StripeWebhook)
}
