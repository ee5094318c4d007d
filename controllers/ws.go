package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"fastpai/models"
	"fastpai/pkg/cache"
	"fastpai/pkg/config"
	"fastpai/pkg/logger"
	"fastpai/pkg/scheduler"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

func checkOrigin(r *http.Request) bool {
	if len(config.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		// allow non-browser clients
		return true
	}
	for _, o := range config.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	return false
}

// ChatWS serves the widget's realtime channel for local development. Each
// connection is one session: the loop reads a user frame (bare text or
// {message, city}), asks the scheduler bot for a reply and writes the frame
// back. Repeated questions are served from the reply cache.
func ChatWS(bot *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.S().Warnw("websocket upgrade failed", "err", err)
			return
		}
		defer conn.Close()

		sessionID := c.Query("session_id")
		if sessionID == "" {
			sessionID = uuid.New().String()
		}
		log := logger.S().With("session", sessionID)
		log.Infow("session connected", "remote", c.Request.RemoteAddr)
		defer log.Infow("session closed")

		conn.SetReadLimit(1 << 20) // 1MB

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warnw("websocket closed unexpectedly", "err", err)
				}
				return
			}

			out := models.ParseOutbound(data)
			text := strings.TrimSpace(out.Message)
			if text == "" {
				continue
			}

			ck := cache.Key("reply", strings.ToLower(out.City), strings.ToLower(text))
			frame, ok := cache.Default().Get(ck)
			if !ok {
				frame = bot.Reply(text, out.City)
				cache.Default().Set(ck, frame, time.Duration(config.ReplyCacheTTLSeconds)*time.Second)
			}

			if err := conn.WriteJSON(frame); err != nil {
				log.Warnw("websocket write failed", "err", err)
				return
			}
		}
	}
}
