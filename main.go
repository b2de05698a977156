package main

import (
	"net/http"

	"food-marketplace/accounts"
	"food-marketplace/bidding"
	"food-marketplace/config"
	"food-marketplace/handlers"
	"food-marketplace/ledger"
	"food-marketplace/orders"
	"food-marketplace/payments"
	"food-marketplace/pricing"
	"food-marketplace/ratings"
	"food-marketplace/reputation"
	"food-marketplace/routes"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	config.InitLogger(cfg)
	gin.SetMode(cfg.GinMode)

	db, err := config.OpenDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	rules := pricing.DefaultRules()
	rules.DeliveryFee = cfg.Pricing.DeliveryFee
	rules.DriverFee = cfg.Pricing.DriverFee

	if cfg.Stripe.SecretKey == "" {
		log.Warn().Msg("STRIPE_SECRET_KEY is not set; deposits will fail")
	}

	h := &handlers.Handler{
		DB:         db,
		Accounts:   accounts.NewService(db),
		Ledger:     ledger.NewService(db),
		Orders:     orders.NewService(db, pricing.NewEngine(rules)),
		Bidding:    bidding.NewService(db),
		Reputation: reputation.NewService(db),
		Ratings:    ratings.NewService(db),
		Payments:   payments.NewService(db, payments.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.APIBase)),
	}

	// Create Gin router with default middleware (logger + recovery)
	r := gin.Default()

	// CORS middleware for frontend integration
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Food Marketplace API",
			"version": "1.0.0",
		})
	})

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the Food Marketplace API",
			"docs":    "/api/state-machine",
			"health":  "/health",
			"roles":   []string{"customer", "chef", "delivery", "manager"},
		})
	})

	routes.SetupRoutes(r, h)

	log.Info().Str("port", cfg.Port).Str("db_driver", cfg.DB.Driver).Msg("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
