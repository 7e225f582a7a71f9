package domain

import (
	"go.uber.org/fx"

	"github.com/zipwire/moderation-service/internal/domain/moderation"
)

// Module aggregates all domain modules
var Module = fx.Module(
	"domain",
	moderation.Module,
)
