package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/http/response"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/ctxutil"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/realtime"
)

type RealtimeHandler struct {
	Log *logger.Logger
	Hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{Log: log.With("handler", "RealtimeHandler"), Hub: hub}
}

// GET /api/sse/stream
// Every open tab gets its own client on the subject's channel.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	userID := ctxutil.SubjectID(c.Request.Context())
	if userID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	client := h.Hub.NewSSEClient(userID)
	h.Log.Debug("SSEStream open", "user_id", userID, "client_id", client.ID)

	h.Hub.AddChannel(client, userID.String())
	h.Hub.ServeHTTP(c.Writer, c.Request, client)

	h.Hub.CloseClient(client)
	h.Log.Debug("SSEStream closed", "user_id", userID, "client_id", client.ID)
}
