package moderation

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	appconfig "github.com/zipwire/moderation-service/config"
	"github.com/zipwire/moderation-service/internal/domain/moderation/delivery/kafka"
	"github.com/zipwire/moderation-service/internal/domain/moderation/deps"
	"github.com/zipwire/moderation-service/internal/domain/moderation/reconcile"
	"github.com/zipwire/moderation-service/internal/domain/moderation/repository/http_clients/remote"
	"github.com/zipwire/moderation-service/internal/domain/moderation/repository/postgres"
	"github.com/zipwire/moderation-service/internal/domain/moderation/usecase/business"
)

// Module provides moderation domain dependencies. The local flag store is the
// one deps.StateStore in the graph; the remote store travels as *remote.Client
// so the two backends stay distinguishable.
var Module = fx.Module(
	"moderation",
	fx.Provide(
		postgres.NewFlagStore,
		postgres.NewArticleRepository,
		postgres.NewConfigRepository,
		postgres.NewSettingsRepository,
		postgres.NewKeywordStatsRepository,
		newRemoteClient,
		newConfirmer,
		newController,
		newReconciler,
		kafka.NewHandlers,
	),
)

func newRemoteClient(cfg *appconfig.RemoteStoreConfig, local deps.StateStore, logger zerolog.Logger) *remote.Client {
	return remote.NewClient(cfg, local, logger.With().Str("component", "moderation-api-client").Logger())
}

func newConfirmer() deps.Confirmer {
	return business.AlwaysConfirm{}
}

func newController(
	client *remote.Client,
	local deps.StateStore,
	articles deps.ArticleRepository,
	configs deps.ConfigRepository,
	settings deps.SettingsRepository,
	keywords deps.KeywordStatsRepository,
	producer deps.EventProducer,
	confirmer deps.Confirmer,
	logger zerolog.Logger,
) *business.Controller {
	return business.NewController(
		client, local, articles, configs, settings, keywords,
		client, producer, confirmer,
		logger.With().Str("component", "moderation-controller").Logger(),
	)
}

func newReconciler(
	articles deps.ArticleRepository,
	client *remote.Client,
	logger zerolog.Logger,
) *reconcile.Reconciler {
	return reconcile.New(articles, client,
		logger.With().Str("component", "state-reconciler").Logger())
}
