package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slidecast/presentation-service/internal/handler"
	"github.com/slidecast/presentation-service/pkg/constants"
)

// New builds the HTTP router.
func New(
	talkHandler *handler.TalkHandler,
	ws *handler.WSHandler,
	health *handler.HealthHandler,
) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET(constants.PathHealth, health.Health)
	r.GET(constants.PathReady, health.Ready)

	// Read-only snapshots plus command-over-HTTP
	r.GET(constants.PathTalk, talkHandler.GetTalk)
	r.GET(constants.PathSlides, talkHandler.GetSlides)
	r.GET(constants.PathState, talkHandler.GetState)
	r.GET(constants.PathClients, talkHandler.GetClients)
	r.POST(constants.PathCommand, talkHandler.PostCommand)

	// Real-time Command/Notification channel
	r.GET(constants.PathWS, ws.ServeWS)

	return r
}
