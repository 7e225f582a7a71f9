package app

import (
	"go.uber.org/fx"

	"github.com/zipwire/moderation-service/config"
	"github.com/zipwire/moderation-service/internal/domain"
	"github.com/zipwire/moderation-service/internal/infrastructure/database"
	"github.com/zipwire/moderation-service/internal/infrastructure/kafka"
	"github.com/zipwire/moderation-service/internal/infrastructure/logger"
)

// CreateApp creates the fx application with all dependencies
func CreateApp() fx.Option {
	return fx.Options(
		fx.Provide(config.Out),
		fx.Provide(logger.NewLogger),
		fx.Provide(database.NewPostgresDB),
		kafka.Module,
		domain.Module,
	)
}
