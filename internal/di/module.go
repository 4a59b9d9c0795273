package di

import (
	"go.uber.org/fx"

	"github.com/tripmart/fulfillment/internal/adapter/vendorapi"
	"github.com/tripmart/fulfillment/internal/app"
	"github.com/tripmart/fulfillment/internal/config"
	"github.com/tripmart/fulfillment/internal/fulfillment"
	"github.com/tripmart/fulfillment/internal/logger"
	"github.com/tripmart/fulfillment/internal/server/http/handlers"
	"github.com/tripmart/fulfillment/internal/server/http/router"
	"github.com/tripmart/fulfillment/internal/storage/postgres"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		postgres.Module,
		vendorapi.Module,
		fulfillment.Module,
		fx.Provide(func(f *app.FulfillmentFacade) handlers.FulfillmentFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
