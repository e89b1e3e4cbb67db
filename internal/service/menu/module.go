package menu

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/restoapp/pos/internal/cache"
	"github.com/restoapp/pos/internal/config"
	repo "github.com/restoapp/pos/internal/repository/menu"
)

// Params defines dependencies for constructing the menu Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
}

// Module provides the menu service to Fx.
var Module = fx.Provide(func(p Params) *Service {
	return NewService(p.Repository, p.Cache, p.Config.Cache.DefaultTTL, p.Logger)
})
