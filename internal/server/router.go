package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/logger"
)

// SetupRoutes builds the HTTP API.
func SetupRoutes(orderHandler *OrderHandler, log logger.Logger, tenantID string) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestLogger(log, tenantID))
	r.Use(ErrorHandler())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "painel",
		})
	})

	v1 := r.Group("/api/v1")
	{
		orders := v1.Group("/orders")
		{
			orders.GET("", orderHandler.List)
			orders.GET("/pending", orderHandler.Pending)
			orders.GET("/picked", orderHandler.Picked)
			orders.GET("/completed", orderHandler.Completed)
			orders.GET("/:id", orderHandler.Get)
			orders.POST("/:id/status", orderHandler.Transition)
			orders.PUT("/:id/items", orderHandler.EditItems)
		}

		v1.GET("/stats", orderHandler.Stats)
	}

	return r
}
