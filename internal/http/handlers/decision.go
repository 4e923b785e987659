package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/http/response"
	types "github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/domain"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/logger"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/services"
)

type DecisionHandlerDeps struct {
	Log         *logger.Logger
	Workflow    services.DecisionWorkflowService
	Reflections services.DecisionReflectionService
}

type DecisionHandler struct {
	log         *logger.Logger
	workflow    services.DecisionWorkflowService
	reflections services.DecisionReflectionService
}

func NewDecisionHandlerWithDeps(deps DecisionHandlerDeps) *DecisionHandler {
	h := &DecisionHandler{workflow: deps.Workflow, reflections: deps.Reflections}
	if deps.Log != nil {
		h.log = deps.Log.With("handler", "DecisionHandler")
	}
	return h
}

func decisionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_decision_id", err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *DecisionHandler) failed(c *gin.Context, op string, err error) {
	if h.log != nil {
		h.log.Debug("decision request failed", "op", op, "error", err)
	}
	respondServiceError(c, err)
}

// POST /api/decisions
func (h *DecisionHandler) Create(c *gin.Context) {
	var req services.CreateDecisionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	state, err := h.workflow.Create(c.Request.Context(), req)
	if err != nil {
		h.failed(c, "create", err)
		return
	}
	response.RespondCreated(c, state)
}

// GET /api/decisions?limit=
func (h *DecisionHandler) List(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return
		}
		limit = n
	}
	rows, err := h.workflow.List(c.Request.Context(), limit)
	if err != nil {
		h.failed(c, "list", err)
		return
	}
	response.RespondOK(c, gin.H{"decisions": rows})
}

// GET /api/decisions/:id
func (h *DecisionHandler) Get(c *gin.Context) {
	id, ok := decisionID(c)
	if !ok {
		return
	}
	state, err := h.workflow.Get(c.Request.Context(), id)
	if err != nil {
		h.failed(c, "get", err)
		return
	}
	response.RespondOK(c, state)
}

// PATCH /api/decisions/:id/fields
// body: { "stage": "deconstruct", "fields": { "time_horizon": "...", "stakeholders": null } }
func (h *DecisionHandler) UpdateFields(c *gin.Context) {
	id, ok := decisionID(c)
	if !ok {
		return
	}
	var req services.DecisionFieldsPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	state, err := h.workflow.UpdateFields(c.Request.Context(), id, req)
	if err != nil {
		h.failed(c, "update_fields", err)
		return
	}
	response.RespondOK(c, state)
}

// POST /api/decisions/:id/advance
func (h *DecisionHandler) Advance(c *gin.Context) {
	id, ok := decisionID(c)
	if !ok {
		return
	}
	state, err := h.workflow.Advance(c.Request.Context(), id)
	if err != nil {
		h.failed(c, "advance", err)
		return
	}
	response.RespondOK(c, state)
}

// POST /api/decisions/:id/analyze/:stage
func (h *DecisionHandler) Analyze(c *gin.Context) {
	id, ok := decisionID(c)
	if !ok {
		return
	}
	stage, err := types.ParseStage(c.Param("stage"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_stage", err)
		return
	}
	res, err := h.workflow.Analyze(c.Request.Context(), id, stage)
	if err != nil {
		h.failed(c, "analyze", err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/decisions/:id/lock
func (h *DecisionHandler) Lock(c *gin.Context) {
	id, ok := decisionID(c)
	if !ok {
		return
	}
	var req services.LockDecisionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	state, err := h.workflow.Lock(c.Request.Context(), id, req)
	if err != nil {
		h.failed(c, "lock", err)
		return
	}
	response.RespondOK(c, state)
}

// GET /api/decisions/:id/score
func (h *DecisionHandler) Score(c *gin.Context) {
	id, ok := decisionID(c)
	if !ok {
		return
	}
	score, err := h.workflow.Score(c.Request.Context(), id)
	if err != nil {
		h.failed(c, "score", err)
		return
	}
	response.RespondOK(c, gin.H{"score": score})
}

// GET /api/decisions/:id/reflections
func (h *DecisionHandler) ListReflections(c *gin.Context) {
	id, ok := decisionID(c)
	if !ok {
		return
	}
	rows, err := h.reflections.List(c.Request.Context(), id)
	if err != nil {
		h.failed(c, "list_reflections", err)
		return
	}
	response.RespondOK(c, gin.H{"reflections": rows})
}

// POST /api/decisions/:id/reflections
func (h *DecisionHandler) CreateReflection(c *gin.Context) {
	id, ok := decisionID(c)
	if !ok {
		return
	}
	var req services.CreateReflectionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	row, err := h.reflections.Create(c.Request.Context(), id, req)
	if err != nil {
		h.failed(c, "create_reflection", err)
		return
	}
	response.RespondCreated(c, gin.H{"reflection": row})
}
