package domain

import "context"

// PurchaseOrderRepository defines the read interface over the
// purchase-order store
type PurchaseOrderRepository interface {
	// FindAll retrieves every purchase order, ascending by po_number
	FindAll(ctx context.Context) ([]PurchaseOrderRecord, error)

	// FindByNumber retrieves one purchase order, nil when absent
	FindByNumber(ctx context.Context, poNumber string) (*PurchaseOrderRecord, error)
}

// InvoiceRepository defines the read interface over the invoice store
type InvoiceRepository interface {
	// FindAll retrieves every invoice, ascending by invoice_number
	FindAll(ctx context.Context) ([]InvoiceRecord, error)

	// FindByReference retrieves invoices whose reference_po equals the
	// canonical PO number exactly
	FindByReference(ctx context.Context, poNumber string) ([]InvoiceRecord, error)
}

// GoodsReceiptRepository defines the read interface over the
// goods-receipt store
type GoodsReceiptRepository interface {
	// FindAll retrieves every goods receipt, ascending by grn_number
	FindAll(ctx context.Context) ([]GoodsReceiptRecord, error)

	// FindByReference retrieves goods receipts whose reference_po equals
	// the canonical PO number exactly
	FindByReference(ctx context.Context, poNumber string) ([]GoodsReceiptRecord, error)
}

// UpsertResult reports the store's acknowledgement of a decision write
type UpsertResult struct {
	Matched    int64
	Modified   int64
	UpsertedID string
}

// DecisionRepository defines the interface for decision persistence.
// One record per PO number; writes replace the whole prior record.
type DecisionRepository interface {
	// Get retrieves the decision for a PO number, nil when absent
	Get(ctx context.Context, poNumber string) (*DecisionRecord, error)

	// Upsert writes the decision, inserting or fully replacing
	Upsert(ctx context.Context, record DecisionRecord) (*UpsertResult, error)
}
