package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"logikalmart.ca/storefront/api/internal/cart"
	"logikalmart.ca/storefront/api/internal/orders"
	"logikalmart.ca/storefront/api/internal/router"
	"logikalmart.ca/storefront/api/pkg/ai"
	"logikalmart.ca/storefront/api/pkg/global"
	"logikalmart.ca/storefront/api/pkg/mongo"
	"logikalmart.ca/storefront/api/pkg/redis"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	mongo.InitMongoDB()
	mongo.EnsureIndexesOnStartup()
	ai.InitializeAIService()

	products := mongo.NewProductStore()
	users := mongo.NewUserStore()

	api := &router.API{
		Products: products,
		Users:    users,
		Orders:   orders.NewService(users, mongo.NewOrderStore(), global.GetDeliveryPIN()),
		Cart:     cart.NewService(products, redis.NewCartStore()),
		Ping: func(ctx context.Context) error {
			return mongo.GetClient().Ping(ctx, nil)
		},
	}

	router.InitEngine()
	router.InitializeRoutes(api)

	port := global.GetEnvOrDefault("PORT", "8000")
	log.Printf("Server is running on port %s", port)

	if err := router.Router.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
