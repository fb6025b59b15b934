package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/procure-match/reconciliation-service/internal/domain"
	"github.com/procure-match/reconciliation-service/pkg/errors"
	"github.com/procure-match/reconciliation-service/pkg/logging"
	"github.com/procure-match/reconciliation-service/pkg/metrics"
)

// ReconciliationService reconciles the three record stores into one
// audited view per purchase order and records review decisions. It is
// stateless: every reconciliation is recomputed from the stores, so a
// decision written concurrently is visible on the next read.
type ReconciliationService struct {
	poRepo       domain.PurchaseOrderRepository
	invoiceRepo  domain.InvoiceRepository
	grnRepo      domain.GoodsReceiptRepository
	decisionRepo domain.DecisionRepository
	publisher    DecisionEventPublisher
	metrics      *metrics.Metrics
	logger       *logging.Logger
	decisionUser string
}

// NewReconciliationService creates a new ReconciliationService. The
// publisher and metrics may be nil; both are side channels and never
// affect the result set.
func NewReconciliationService(
	poRepo domain.PurchaseOrderRepository,
	invoiceRepo domain.InvoiceRepository,
	grnRepo domain.GoodsReceiptRepository,
	decisionRepo domain.DecisionRepository,
	publisher DecisionEventPublisher,
	m *metrics.Metrics,
	logger *logging.Logger,
	decisionUser string,
) *ReconciliationService {
	return &ReconciliationService{
		poRepo:       poRepo,
		invoiceRepo:  invoiceRepo,
		grnRepo:      grnRepo,
		decisionRepo: decisionRepo,
		publisher:    publisher,
		metrics:      m,
		logger:       logger,
		decisionUser: decisionUser,
	}
}

// Reconcile classifies every purchase order against its matched
// invoices and goods receipts, then scans for ghost and orphaned
// documents. Any store failure aborts the whole request; no partial
// result set is returned. Records missing their identity field are the
// one exception: they are skipped with a warning instead of failing
// the run.
func (s *ReconciliationService) Reconcile(ctx context.Context) ([]domain.ReconciliationResult, error) {
	start := time.Now()

	purchaseOrders, err := s.poRepo.FindAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to read purchase orders")
		return nil, errors.ErrServiceUnavailable("purchase order store").Wrap(err)
	}

	results := make([]domain.ReconciliationResult, 0, len(purchaseOrders))
	known := make(map[string]bool, len(purchaseOrders))

	for i := range purchaseOrders {
		po := purchaseOrders[i]
		if po.Malformed() {
			s.logger.WithContext(ctx).Warn("Skipping purchase order without po_number",
				"source", po.SourceDocumentPath)
			s.recordMalformed("purchase_order")
			continue
		}
		known[po.PONumber] = true

		invoices, err := s.invoiceRepo.FindByReference(ctx, po.PONumber)
		if err != nil {
			s.logger.WithError(err).Error("Failed to read invoices", "poNumber", po.PONumber)
			return nil, errors.ErrServiceUnavailable("invoice store").Wrap(err)
		}
		receipts, err := s.grnRepo.FindByReference(ctx, po.PONumber)
		if err != nil {
			s.logger.WithError(err).Error("Failed to read goods receipts", "poNumber", po.PONumber)
			return nil, errors.ErrServiceUnavailable("goods receipt store").Wrap(err)
		}
		invoices = s.wellFormedInvoices(ctx, invoices)
		receipts = s.wellFormedReceipts(ctx, receipts)

		status, issues := domain.Classify(&po, invoices, receipts)

		decision, err := s.decisionRepo.Get(ctx, po.PONumber)
		if err != nil {
			s.logger.WithError(err).Error("Failed to read decision", "poNumber", po.PONumber)
			return nil, errors.ErrServiceUnavailable("decision store").Wrap(err)
		}

		results = append(results, domain.ReconciliationResult{
			PurchaseOrder: &po,
			Invoices:      invoices,
			GoodsReceipts: receipts,
			Status:        status,
			Issues:        issues,
			Decision:      decision,
		})
	}

	allInvoices, err := s.invoiceRepo.FindAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to scan invoices")
		return nil, errors.ErrServiceUnavailable("invoice store").Wrap(err)
	}
	allReceipts, err := s.grnRepo.FindAll(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to scan goods receipts")
		return nil, errors.ErrServiceUnavailable("goods receipt store").Wrap(err)
	}

	extras := domain.ScanOrphans(
		s.wellFormedInvoices(ctx, allInvoices),
		s.wellFormedReceipts(ctx, allReceipts),
		known,
	)
	results = append(results, extras...)

	duration := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordReconciliationRun(len(results), duration)
		for _, r := range results {
			s.metrics.RecordReconciliationResult(string(r.Status))
		}
	}
	s.logger.WithContext(ctx).Info("Reconciliation complete",
		"purchaseOrders", len(known),
		"results", len(results),
		"anomalies", len(extras),
		"durationMs", duration.Milliseconds(),
	)

	return results, nil
}

// RecordDecision validates and upserts a review decision. A decision
// for a PO number with no purchase order on file is accepted; review
// may precede reconciliation visibility. The whole prior record is
// replaced on every write.
func (s *ReconciliationService) RecordDecision(ctx context.Context, cmd RecordDecisionCommand) (*DecisionAck, error) {
	decision := domain.Decision(cmd.Decision)
	if !decision.IsValid() {
		return nil, errors.ErrValidation(domain.ErrInvalidDecision.Error()).
			WithDetail("decision", cmd.Decision)
	}

	record := domain.DecisionRecord{
		PONumber:  cmd.PONumber,
		Decision:  decision,
		Comment:   cmd.Comment,
		Timestamp: time.Now().UTC(),
		User:      s.decisionUser,
	}

	result, err := s.decisionRepo.Upsert(ctx, record)
	if err != nil {
		s.logger.WithError(err).Error("Failed to upsert decision", "poNumber", cmd.PONumber)
		return nil, errors.ErrServiceUnavailable("decision store").Wrap(err)
	}

	if s.metrics != nil {
		s.metrics.RecordDecision(string(decision))
	}
	s.logger.Audit(ctx, "decision_recorded", "purchase_order", cmd.PONumber, s.decisionUser, map[string]any{
		"decision": cmd.Decision,
		"matched":  result.Matched,
		"modified": result.Modified,
	})

	s.publishDecisionRecorded(ctx, record)

	ack := &DecisionAck{
		Success:  true,
		PONumber: cmd.PONumber,
		Decision: string(decision),
		Matched:  result.Matched,
		Modified: result.Modified,
	}
	if result.UpsertedID != "" {
		ack.UpsertedID = &result.UpsertedID
	}
	return ack, nil
}

// publishDecisionRecorded emits the audit event. The upsert is already
// durable; a publish failure is logged and swallowed so a down broker
// cannot fail decision writes.
func (s *ReconciliationService) publishDecisionRecorded(ctx context.Context, record domain.DecisionRecord) {
	if s.publisher == nil {
		return
	}

	event := DecisionRecordedEvent{
		EventID:   uuid.New().String(),
		PONumber:  record.PONumber,
		Decision:  string(record.Decision),
		Comment:   record.Comment,
		User:      record.User,
		Timestamp: record.Timestamp,
	}

	if err := s.publisher.PublishDecisionRecorded(ctx, event); err != nil {
		s.logger.WithError(err).Warn("Failed to publish decision event",
			"poNumber", record.PONumber)
	}
}

func (s *ReconciliationService) wellFormedInvoices(ctx context.Context, records []domain.InvoiceRecord) []domain.InvoiceRecord {
	kept := records[:0]
	for _, r := range records {
		if r.Malformed() {
			s.logger.WithContext(ctx).Warn("Skipping invoice without invoice_number",
				"source", r.SourceDocumentPath)
			s.recordMalformed("invoice")
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

func (s *ReconciliationService) wellFormedReceipts(ctx context.Context, records []domain.GoodsReceiptRecord) []domain.GoodsReceiptRecord {
	kept := records[:0]
	for _, r := range records {
		if r.Malformed() {
			s.logger.WithContext(ctx).Warn("Skipping goods receipt without grn_number",
				"source", r.SourceDocumentPath)
			s.recordMalformed("goods_receipt")
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

func (s *ReconciliationService) recordMalformed(recordType string) {
	if s.metrics != nil {
		s.metrics.RecordMalformedRecord(recordType)
	}
}
