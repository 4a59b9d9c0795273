package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/tripmart/fulfillment/internal/server/http/handlers"
	"github.com/tripmart/fulfillment/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.FulfillmentFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	orderHandler := handlers.NewOrderHandler(facade)
	fulfillmentHandler := handlers.NewFulfillmentHandler(facade)

	api := engine.Group("/api")
	orders := api.Group("/orders")
	orders.PUT("/:id", orderHandler.Submit)
	orders.GET("/:id", orderHandler.State)

	api.PUT("/fulfillments/:id", fulfillmentHandler.Complete)

	return engine
}
