package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/http/response"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/modules/decision/analysis"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/modules/decision/workflow"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/platform/apierr"
	"github.com/shravanbharathiv-jpg/decisionclarity-ai-sub000/internal/services"
)

// toAPIError maps a service failure onto its transport status and code.
// Anything unrecognized is a 500.
func toAPIError(err error) *apierr.Error {
	if ae, ok := apierr.As(err); ok {
		return ae
	}
	var ve *workflow.ValidationError
	var pe *workflow.PersistenceError
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		return apierr.New(http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, workflow.ErrNotFound):
		return apierr.New(http.StatusNotFound, "decision_not_found", err)
	case errors.As(err, &ve):
		e := apierr.New(http.StatusUnprocessableEntity, "validation_failed", err)
		if len(ve.Fields) > 0 {
			e.WithDetail("fields", ve.Fields)
		}
		return e
	case errors.Is(err, workflow.ErrEntitlementRequired):
		return apierr.New(http.StatusPaymentRequired, "entitlement_required", err)
	case errors.Is(err, workflow.ErrLocked):
		return apierr.New(http.StatusConflict, "decision_locked", err)
	case errors.Is(err, workflow.ErrStageConflict):
		return apierr.New(http.StatusConflict, "stage_conflict", err)
	case errors.As(err, &pe):
		return apierr.New(http.StatusServiceUnavailable, "persistence_error", err)
	}
	if kind, ok := analysis.KindOf(err); ok {
		switch kind {
		case analysis.KindRateLimited:
			return apierr.New(http.StatusTooManyRequests, "analysis_rate_limited", err)
		case analysis.KindQuotaExceeded:
			return apierr.New(http.StatusPaymentRequired, "analysis_quota_exceeded", err)
		case analysis.KindMalformed:
			return apierr.New(http.StatusBadGateway, "analysis_malformed", err)
		default:
			return apierr.New(http.StatusServiceUnavailable, "analysis_unavailable", err)
		}
	}
	return apierr.New(http.StatusInternalServerError, "internal_error", err)
}

func respondServiceError(c *gin.Context, err error) {
	e := toAPIError(err)
	if e.Status >= http.StatusInternalServerError {
		// Provider and driver messages are not for clients.
		e = &apierr.Error{Status: e.Status, Code: e.Code, Err: errors.New(http.StatusText(e.Status)), Details: e.Details}
	}
	response.RespondAPIError(c, e)
}
