package router

import (
	"github.com/freshcart/internal/cache"
	"github.com/freshcart/internal/config"
	publichandlers "github.com/freshcart/internal/http/handlers/public"
	"github.com/freshcart/internal/http/response"
	"github.com/freshcart/internal/logger"
	"github.com/freshcart/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	checkoutRule := RateLimitRule{
		Prefix:        cache.BuildKey("rate:checkout"),
		WindowSeconds: cfg.Security.CheckoutRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CheckoutRateLimit.MaxRequests,
		Message:       "too many orders, please retry in %d seconds",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(CartSessionMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 商品目录
		public := apiV1.Group("/public")
		{
			public.GET("/config", publicHandler.GetConfig)
			public.GET("/categories", publicHandler.GetCategories)
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:id", publicHandler.GetProduct)
		}

		// 购物车（按会话隔离）
		cart := apiV1.Group("/cart")
		{
			cart.GET("", publicHandler.GetCart)
			cart.DELETE("", publicHandler.ClearCart)
			cart.POST("/items", publicHandler.AddCartItem)
			cart.PUT("/items/:product_id", publicHandler.UpdateCartItem)
			cart.DELETE("/items/:product_id", publicHandler.RemoveCartItem)
		}

		// 下单
		checkout := apiV1.Group("/checkout")
		{
			checkout.POST("/validate", publicHandler.ValidateCheckout)
			checkout.POST("", RateLimitMiddleware(cache.Client(), checkoutRule, KeyByIPAndJSONField("phone")), publicHandler.SubmitCheckout)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
