package controller

import (
	"catalog-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	Products      *ProductController
	Sessions      *SessionController
	Health        *HealthController
	Auth          middleware.TokenValidator
	SessionSecret string
	Log           zerolog.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(cfg.Log))
	r.MaxMultipartMemory = 8 << 20

	r.GET("/healthz", cfg.Health.Health)

	api := r.Group("/api")
	api.Use(middleware.Sessions(cfg.SessionSecret), middleware.BearerSession(cfg.Auth, cfg.Log))

	// Rutas públicas
	api.GET("/product/all", cfg.Products.ListProducts)
	api.GET("/product/image/:name", cfg.Products.GetImage)
	api.GET("/product/:productId", cfg.Products.GetProduct)
	api.DELETE("/session", cfg.Sessions.Logout)

	// Rutas que requieren sesión
	auth := api.Group("/")
	auth.Use(middleware.RequireSession())

	auth.POST("/session", cfg.Sessions.Login)
	auth.POST("/product", cfg.Products.UpdateQuantities)
	auth.POST("/product/admin", cfg.Products.CreateProduct)
	auth.PATCH("/product/admin", cfg.Products.UpdateProduct)
	auth.DELETE("/product/admin/:productId", cfg.Products.DeleteProduct)
	auth.POST("/product/review/:productId", cfg.Products.PostReview)

	return r
}
