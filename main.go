package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"fastpai/middleware"
	"fastpai/pkg/config"
	"fastpai/pkg/logger"
	"fastpai/pkg/scheduler"
	"fastpai/routes"
)

// Dev scheduler backend: a local stand-in for the conversational service the
// widget talks to. Run the widget itself with cmd/chatcli.
func main() {
	log := logger.S()

	middleware.SetRateLimitConfig(
		time.Duration(config.RateLimitWindowSeconds)*time.Second,
		config.RateLimitCapacity,
	)

	if config.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173", "http://127.0.0.1:5173"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, scheduler.New())

	log.Infow("dev scheduler backend listening", "port", config.Port)
	if err := r.Run(":" + config.Port); err != nil {
		log.Fatalw("server stopped", "err", err)
	}
}
