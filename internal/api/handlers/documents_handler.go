package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/procure-match/reconciliation-service/internal/application"
	"github.com/procure-match/reconciliation-service/pkg/errors"
	"github.com/procure-match/reconciliation-service/pkg/logging"
	"github.com/procure-match/reconciliation-service/pkg/middleware"
)

// DocumentsHandler serves the raw record listings backing the review UI
type DocumentsHandler struct {
	service *application.ReconciliationService
	logger  *logging.Logger
}

// NewDocumentsHandler creates a new DocumentsHandler
func NewDocumentsHandler(service *application.ReconciliationService, logger *logging.Logger) *DocumentsHandler {
	return &DocumentsHandler{
		service: service,
		logger:  logger,
	}
}

// ListPurchaseOrders handles GET /api/purchase_orders
func (h *DocumentsHandler) ListPurchaseOrders(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	records, err := h.service.ListPurchaseOrders(c.Request.Context())
	if err != nil {
		h.respond(responder, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// ListInvoices handles GET /api/invoices
func (h *DocumentsHandler) ListInvoices(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	records, err := h.service.ListInvoices(c.Request.Context())
	if err != nil {
		h.respond(responder, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// ListGoodsReceipts handles GET /api/goods_receipts
func (h *DocumentsHandler) ListGoodsReceipts(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	records, err := h.service.ListGoodsReceipts(c.Request.Context())
	if err != nil {
		h.respond(responder, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *DocumentsHandler) respond(responder *middleware.ErrorResponder, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		responder.RespondWithAppError(appErr)
		return
	}
	responder.RespondInternalError(err)
}
