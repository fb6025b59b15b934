package application

import (
	"context"

	"github.com/procure-match/reconciliation-service/internal/domain"
	"github.com/procure-match/reconciliation-service/pkg/errors"
)

// ListPurchaseOrders returns every purchase order, ascending by po_number
func (s *ReconciliationService) ListPurchaseOrders(ctx context.Context) ([]domain.PurchaseOrderRecord, error) {
	records, err := s.poRepo.FindAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list purchase orders")
		return nil, errors.ErrServiceUnavailable("purchase order store").Wrap(err)
	}
	return records, nil
}

// ListInvoices returns every invoice, ascending by invoice_number
func (s *ReconciliationService) ListInvoices(ctx context.Context) ([]domain.InvoiceRecord, error) {
	records, err := s.invoiceRepo.FindAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list invoices")
		return nil, errors.ErrServiceUnavailable("invoice store").Wrap(err)
	}
	return records, nil
}

// ListGoodsReceipts returns every goods receipt, ascending by grn_number
func (s *ReconciliationService) ListGoodsReceipts(ctx context.Context) ([]domain.GoodsReceiptRecord, error) {
	records, err := s.grnRepo.FindAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list goods receipts")
		return nil, errors.ErrServiceUnavailable("goods receipt store").Wrap(err)
	}
	return records, nil
}
