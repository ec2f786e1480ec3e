package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/nosmoke-app/backend/internal/notify"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// origin policy is enforced by the CORS layer for the REST surface;
		// progress payloads carry no sensitive data
		return true
	},
}

// WebSocketRoutes sets up the upload progress channel
func WebSocketRoutes(router *gin.Engine, hub *notify.Hub) {
	router.GET("/ws/upload/:session_id", handleUploadProgress(hub))
}

func handleUploadProgress(hub *notify.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("session_id")

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("websocket upgrade failed")
			return
		}

		conn := hub.Register(sessionID, ws)
		defer func() {
			hub.Unregister(conn)
			ws.Close()
		}()

		// any inbound message is answered with a heartbeat; the content is
		// logged and otherwise ignored
		for {
			_, message, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("session_id", sessionID).Msg("websocket read error")
				}
				return
			}

			log.Info().Str("session_id", sessionID).Bytes("message", message).Msg("websocket message received")

			if err := hub.Heartbeat(conn); err != nil {
				log.Warn().Err(err).Str("session_id", sessionID).Msg("heartbeat send failed")
				return
			}
		}
	}
}
