package router

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"logikalmart.ca/storefront/api/pkg/models"
)

var Router *gin.Engine

func InitEngine() {
	Router = gin.Default()
	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	Router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173", "https://shop.logikalmart.ca"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Actor-Role"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id", "X-Cache"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	Router.Use(RequestIDMiddleware())
}

func InitializeRoutes(api *API) {
	root := Router.Group("/api")
	{
		root.GET("/health", api.HealthCheck)

		products := root.Group("/products")
		{
			products.GET("/", api.GetAllProducts)
			products.GET("/:id", api.GetProductByID)
			products.POST("/", RequireRole(models.RoleSeller, models.RoleManager), api.CreateNewProducts)
		}

		users := root.Group("/users")
		{
			users.POST("/register", api.RegisterUser)
			users.POST("/login", api.LoginUser)
		}

		cart := root.Group("/cart")
		{
			cart.GET("/:user", api.GetCart)
			cart.POST("/:user/items", api.AddToCart)
			cart.PATCH("/:user/items/:productId", api.AdjustCartItem)
			cart.DELETE("/:user", api.ClearCart)
			cart.POST("/:user/restore", api.RestoreCart)
			cart.POST("/:user/claim", api.ClaimCart)
		}

		orders := root.Group("/orders")
		{
			orders.POST("/", api.PlaceOrder)
			orders.GET("/user/:username", api.GetUserOrders)
			orders.GET("/", RequireRole(models.RoleManager, models.RoleDelivery), api.GetAllOrders)
			orders.PATCH("/:id/status", RequireRole(models.RoleManager), api.OverrideOrderStatus)
		}

		delivery := root.Group("/delivery")
		delivery.Use(RequireRole(models.RoleDelivery))
		{
			delivery.GET("/orders", api.GetAllOrders)
			delivery.PATCH("/orders/:id/accept", api.AcceptOrder)
			delivery.PATCH("/orders/:id/deliver", api.DeliverOrder)
		}

		analytics := root.Group("/analytics")
		{
			aiAnalytics := analytics.Group("/ai")
			aiAnalytics.Use(RequireRole(models.RoleManager))
			{
				aiAnalytics.GET("/sales-report", api.GenerateAISalesReport)
			}
		}
	}
}
