package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fastpai/pkg/scheduler"

	websocketRoutes "fastpai/routes/websocket"
)

func RegisterRoutes(r *gin.Engine, bot *scheduler.Scheduler) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "FastPAI dev scheduler backend running"})
	})

	websocketRoutes.Register(r, bot)
}
