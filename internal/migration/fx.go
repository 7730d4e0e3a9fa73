package migration

import (
	applicationdomain "github.com/careercraft/careercraft/internal/application/domain"
	"github.com/careercraft/careercraft/internal/config"
	entitlementdomain "github.com/careercraft/careercraft/internal/entitlement/domain"
	profiledomain "github.com/careercraft/careercraft/internal/profile/domain"
	userdomain "github.com/careercraft/careercraft/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// sqlite dev/test databases are created in place.
			return conn.AutoMigrate(
				&userdomain.User{},
				&entitlementdomain.Entitlement{},
				&profiledomain.UserProfile{},
				&profiledomain.WorkExperience{},
				&profiledomain.Education{},
				&applicationdomain.JobApplication{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
