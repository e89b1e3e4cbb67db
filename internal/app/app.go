package app

import (
	"go.uber.org/fx"

	"github.com/restoapp/pos/internal/cache"
	"github.com/restoapp/pos/internal/config"
	"github.com/restoapp/pos/internal/database"
	"github.com/restoapp/pos/internal/logger"
	"github.com/restoapp/pos/internal/observability"
	"github.com/restoapp/pos/internal/relay"
	repositorymenu "github.com/restoapp/pos/internal/repository/menu"
	repositoryorder "github.com/restoapp/pos/internal/repository/order"
	repositorysale "github.com/restoapp/pos/internal/repository/sale"
	repositorytable "github.com/restoapp/pos/internal/repository/table"
	repositoryuser "github.com/restoapp/pos/internal/repository/user"
	httpserver "github.com/restoapp/pos/internal/server/http"
	serviceauth "github.com/restoapp/pos/internal/service/auth"
	servicefloor "github.com/restoapp/pos/internal/service/floor"
	servicemenu "github.com/restoapp/pos/internal/service/menu"
	serviceregister "github.com/restoapp/pos/internal/service/register"
	transporthttp "github.com/restoapp/pos/internal/transport/http"
	"github.com/restoapp/pos/internal/worker"
	workerfloor "github.com/restoapp/pos/internal/worker/floor"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	relay.Module,
	observability.Module,
	repositorytable.Module,
	repositoryorder.Module,
	repositorymenu.Module,
	repositorysale.Module,
	repositoryuser.Module,
	servicefloor.Module,
	serviceregister.Module,
	servicemenu.Module,
	serviceauth.Module,
)

// HTTP wires the HTTP transport on top of the core modules. The worker engine
// rides along so a single api process both serves requests and follows peer
// changes from the relay.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
	worker.Module,
	workerfloor.Module,
)

// Worker exposes background relay consumption without the HTTP surface.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerfloor.Module,
)

// Module is the default application wiring.
var Module = HTTP
