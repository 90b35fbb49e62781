package petshopserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	userports "github.com/Apurer/petshop-orders-api/internal/domains/users/ports"
)

// ApiHandleFunctions groups the handlers the router mounts.
type ApiHandleFunctions struct {
	OrderAPI OrderAPI
	AuthAPI  AuthAPI
	// Authenticator resolves bearer tokens for the protected routes.
	Authenticator userports.Service
}

// RouterOptions tunes the engine built by NewRouter.
type RouterOptions struct {
	ServiceName    string
	AllowedOrigins []string
}

// NewRouter builds a gin engine with recovery, tracing, CORS, and every route mounted.
func NewRouter(handleFunctions ApiHandleFunctions, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if opts.ServiceName != "" {
		router.Use(otelgin.Middleware(opts.ServiceName))
	}
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	return NewRouterWithGinEngine(router, handleFunctions)
}

// NewRouterWithGinEngine mounts the routes onto an existing engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	orders := &handleFunctions.OrderAPI
	auth := &handleFunctions.AuthAPI
	requireUser := RequireUser(handleFunctions.Authenticator)
	requireAdmin := RequireAdmin()

	api := router.Group("/api")
	api.POST("/auth/login", auth.Login)
	api.GET("/auth/me", requireUser, auth.Me)

	api.POST("/orders", orders.CreateOrder)
	api.GET("/orders/my", requireUser, orders.MyOrders)

	admin := api.Group("/orders", requireUser, requireAdmin)
	{
		admin.GET("", orders.ListOrders)
		admin.GET("/revenue", orders.Revenue)
		admin.GET("/stats", orders.Stats)
		admin.GET("/:id", orders.GetOrder)
		admin.PUT("/:id/status", orders.UpdateStatus)
		admin.PUT("/:id/payment", orders.UpdatePayment)
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", IdempotencyKeyHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
