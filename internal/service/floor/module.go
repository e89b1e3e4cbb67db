package floor

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/restoapp/pos/internal/config"
	"github.com/restoapp/pos/internal/relay"
	menurepo "github.com/restoapp/pos/internal/repository/menu"
	orderrepo "github.com/restoapp/pos/internal/repository/order"
	salerepo "github.com/restoapp/pos/internal/repository/sale"
	tablerepo "github.com/restoapp/pos/internal/repository/table"
)

// Params defines dependencies for constructing the Coordinator.
type Params struct {
	fx.In

	Tables *tablerepo.Repository
	Orders *orderrepo.Repository
	Menu   *menurepo.Repository
	Sales  *salerepo.Repository
	Relay  relay.Client
	Config config.Config
	Logger *zap.Logger
}

// Module provides the floor coordinator to Fx.
var Module = fx.Provide(func(p Params) *Coordinator {
	return NewCoordinator(p.Tables, p.Orders, p.Menu, p.Sales, p.Relay, p.Config, p.Logger)
})
