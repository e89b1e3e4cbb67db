package register

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/restoapp/pos/internal/config"
	salerepo "github.com/restoapp/pos/internal/repository/sale"
)

// Params defines dependencies for constructing the register Service.
type Params struct {
	fx.In

	Sales  *salerepo.Repository
	Config config.Config
	Logger *zap.Logger
}

// Module provides the register service to Fx.
var Module = fx.Provide(func(p Params) *Service {
	return NewService(p.Sales, p.Config.Location(), p.Logger)
})
