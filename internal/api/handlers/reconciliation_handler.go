package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/procure-match/reconciliation-service/internal/application"
	"github.com/procure-match/reconciliation-service/pkg/errors"
	"github.com/procure-match/reconciliation-service/pkg/logging"
	"github.com/procure-match/reconciliation-service/pkg/middleware"
)

// ReconciliationHandler handles HTTP requests for reconciliation and
// review decisions. Response bodies are unwrapped (a bare array for the
// result set, a bare ack object for decisions); the consuming UI
// depends on that shape.
type ReconciliationHandler struct {
	service *application.ReconciliationService
	logger  *logging.Logger
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(service *application.ReconciliationService, logger *logging.Logger) *ReconciliationHandler {
	return &ReconciliationHandler{
		service: service,
		logger:  logger,
	}
}

// GetReconciliation handles GET /api/reconciliation
func (h *ReconciliationHandler) GetReconciliation(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	results, err := h.service.Reconcile(c.Request.Context())
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	middleware.AddSpanAttributes(c, map[string]interface{}{
		"reconciliation.results": len(results),
	})

	c.JSON(http.StatusOK, results)
}

// RecordDecision handles POST /api/reconciliation/decision
func (h *ReconciliationHandler) RecordDecision(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var cmd application.RecordDecisionCommand
	if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	middleware.AddSpanAttributes(c, map[string]interface{}{
		"po.number": cmd.PONumber,
		"decision":  cmd.Decision,
	})

	ack, err := h.service.RecordDecision(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, ack)
}
