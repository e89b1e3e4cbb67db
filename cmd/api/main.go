package main

import (
	"go.uber.org/fx"

	"github.com/restoapp/pos/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
