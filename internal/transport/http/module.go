package http

import (
	"go.uber.org/fx"

	floortransport "github.com/restoapp/pos/internal/transport/http/floor"
	menutransport "github.com/restoapp/pos/internal/transport/http/menu"
	registertransport "github.com/restoapp/pos/internal/transport/http/register"
	usertransport "github.com/restoapp/pos/internal/transport/http/user"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	floortransport.Module,
	registertransport.Module,
	menutransport.Module,
	usertransport.Module,
)
