package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/http/response"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/services"
)

type MeHandler struct {
	prefs       services.UserPreferencesService
	entitlement services.EntitlementService
}

func NewMeHandler(prefs services.UserPreferencesService, entitlement services.EntitlementService) *MeHandler {
	return &MeHandler{prefs: prefs, entitlement: entitlement}
}

// GET /api/me/preferences
func (h *MeHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.prefs.Get(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": prefs})
}

// PATCH /api/me/preferences
// body: { "guide_dismissed": true, "onboarding_completed": null }
func (h *MeHandler) PatchPreferences(c *gin.Context) {
	var req services.UserPreferencesPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	prefs, err := h.prefs.Update(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": prefs})
}

// GET /api/me/entitlement
func (h *MeHandler) GetEntitlement(c *gin.Context) {
	st, err := h.entitlement.Get(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"entitlement": st})
}
