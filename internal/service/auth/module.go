package auth

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	repo "github.com/restoapp/pos/internal/repository/user"
)

// Module provides the auth service to Fx.
var Module = fx.Provide(func(r *repo.Repository, logger *zap.Logger) *Service {
	return NewService(r, logger)
})
