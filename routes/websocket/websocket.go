package websocket

import (
	"github.com/gin-gonic/gin"

	"fastpai/controllers"
	"fastpai/middleware"
	"fastpai/pkg/scheduler"
)

func Register(r *gin.Engine, bot *scheduler.Scheduler) {
	r.GET("/ws", middleware.RateLimit(), controllers.ChatWS(bot))
}
