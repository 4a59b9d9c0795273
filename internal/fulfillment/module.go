package fulfillment

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/tripmart/fulfillment/internal/adapter/vendorapi"
	"github.com/tripmart/fulfillment/internal/config"
)

// Module provides the coordinator runtime to the fx container.
var Module = fx.Provide(
	newTimeoutProvider,
	newDispatcher,
	newRegistry,
)

type timeoutParams struct {
	fx.In

	Config *config.Config
}

func newTimeoutProvider(p timeoutParams) TimeoutProvider {
	return NewStaticTimeoutProvider(p.Config.CategoryMaxWaits())
}

type dispatcherParams struct {
	fx.In

	Client vendorapi.Client
	Logger *slog.Logger
}

func newDispatcher(p dispatcherParams) Dispatcher {
	return NewVendorDispatcher(p.Client, p.Logger)
}

type registryParams struct {
	fx.In

	Ctx        context.Context
	Timeouts   TimeoutProvider
	Dispatcher Dispatcher
	Logger     *slog.Logger
}

func newRegistry(p registryParams) *Registry {
	return NewRegistry(p.Ctx, p.Timeouts, p.Dispatcher, p.Logger)
}
