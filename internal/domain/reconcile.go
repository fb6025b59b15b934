package domain

import "fmt"

// AmountTolerance is the absolute tolerance, in currency units, for
// comparing an invoice grand total against its purchase order. No
// currency conversion is performed.
const AmountTolerance = 0.01

// ReconciliationResult is the derived view for one purchase-order
// entry: a real purchase order, a ghost stub for a dangling reference,
// or a placeholder for an orphaned document. It is rebuilt on every
// query and never persisted.
type ReconciliationResult struct {
	PurchaseOrder *PurchaseOrderRecord `json:"purchase_order"`
	Invoices      []InvoiceRecord      `json:"invoices"`
	GoodsReceipts []GoodsReceiptRecord `json:"goods_receipts"`
	Status        Status               `json:"status"`
	Issues        []string             `json:"issues"`
	Decision      *DecisionRecord      `json:"decision"`
}

// Classify derives the reconciliation status and issue list for one
// purchase order and its matched documents. Issues accumulate
// regardless of which status wins the severity merge; a consumer must
// read both.
func Classify(po *PurchaseOrderRecord, invoices []InvoiceRecord, receipts []GoodsReceiptRecord) (Status, []string) {
	status := StatusMatched
	issues := []string{}

	if len(invoices) == 0 {
		status = status.merge(StatusMissingInvoice)
		issues = append(issues, "No invoice found for this PO")
	}
	if len(receipts) == 0 {
		status = status.merge(StatusMissingGoodsReceipt)
		issues = append(issues, "No goods receipt found for this PO")
	}

	if po.GrandTotal != nil {
		for _, inv := range invoices {
			if inv.GrandTotal == nil {
				continue
			}
			if diff := *inv.GrandTotal - *po.GrandTotal; diff > AmountTolerance || diff < -AmountTolerance {
				status = status.merge(StatusAmountMismatch)
				issues = append(issues, fmt.Sprintf(
					"Invoice grand_total %v does not match PO grand_total %v",
					*inv.GrandTotal, *po.GrandTotal))
			}
		}
	}

	return status, issues
}

// GhostStub builds the placeholder purchase order reported for a
// reference that does not exist in the purchase-order store.
func GhostStub(referencePO string) *PurchaseOrderRecord {
	return &PurchaseOrderRecord{
		PONumber: referencePO,
		Vendor:   Party{Name: "Unknown"},
	}
}

// orphanStub builds the placeholder purchase order for a document with
// no reference at all, keyed by the document's own number.
func orphanStub(documentNumber, vendorName string) *PurchaseOrderRecord {
	if documentNumber == "" {
		documentNumber = "Unknown"
	}
	if vendorName == "" {
		vendorName = "Unknown"
	}
	return &PurchaseOrderRecord{
		PONumber: documentNumber,
		Vendor:   Party{Name: vendorName},
	}
}

// ScanOrphans finds the invoices and goods receipts left over after
// every real purchase order has been classified: documents referencing
// a purchase order that does not exist (ghost) and documents with no
// reference at all (orphaned). knownPONumbers is the set of purchase
// orders already processed; it is not mutated. Scan order is invoices
// first, then goods receipts — the first document referencing a given
// missing number claims the ghost entry, which then absorbs every other
// document sharing that reference.
func ScanOrphans(invoices []InvoiceRecord, receipts []GoodsReceiptRecord, knownPONumbers map[string]bool) []ReconciliationResult {
	seen := make(map[string]bool, len(knownPONumbers))
	for po := range knownPONumbers {
		seen[po] = true
	}

	var results []ReconciliationResult

	for _, inv := range invoices {
		switch {
		case inv.ReferencePO != "" && !seen[inv.ReferencePO]:
			results = append(results, ReconciliationResult{
				PurchaseOrder: GhostStub(inv.ReferencePO),
				Invoices:      invoicesReferencing(invoices, inv.ReferencePO),
				GoodsReceipts: receiptsReferencing(receipts, inv.ReferencePO),
				Status:        StatusGhostPO,
				Issues:        []string{fmt.Sprintf("Invoice references non-existent PO: %s", inv.ReferencePO)},
			})
			seen[inv.ReferencePO] = true
		case inv.ReferencePO == "":
			results = append(results, ReconciliationResult{
				PurchaseOrder: orphanStub(inv.InvoiceNumber, inv.Vendor.Name),
				Invoices:      []InvoiceRecord{inv},
				GoodsReceipts: []GoodsReceiptRecord{},
				Status:        StatusOrphanedInvoice,
				Issues:        []string{"Invoice has no PO reference"},
			})
		}
	}

	for _, grn := range receipts {
		switch {
		case grn.ReferencePO != "" && !seen[grn.ReferencePO]:
			results = append(results, ReconciliationResult{
				PurchaseOrder: GhostStub(grn.ReferencePO),
				Invoices:      []InvoiceRecord{},
				GoodsReceipts: receiptsReferencing(receipts, grn.ReferencePO),
				Status:        StatusGhostPO,
				Issues:        []string{fmt.Sprintf("GRN references non-existent PO: %s", grn.ReferencePO)},
			})
			seen[grn.ReferencePO] = true
		case grn.ReferencePO == "":
			results = append(results, ReconciliationResult{
				PurchaseOrder: orphanStub(grn.GRNNumber, grn.Vendor.Name),
				Invoices:      []InvoiceRecord{},
				GoodsReceipts: []GoodsReceiptRecord{grn},
				Status:        StatusOrphanedGRN,
				Issues:        []string{"GRN has no PO reference"},
			})
		}
	}

	return results
}

func invoicesReferencing(invoices []InvoiceRecord, referencePO string) []InvoiceRecord {
	matched := []InvoiceRecord{}
	for _, inv := range invoices {
		if inv.ReferencePO == referencePO {
			matched = append(matched, inv)
		}
	}
	return matched
}

func receiptsReferencing(receipts []GoodsReceiptRecord, referencePO string) []GoodsReceiptRecord {
	matched := []GoodsReceiptRecord{}
	for _, grn := range receipts {
		if grn.ReferencePO == referencePO {
			matched = append(matched, grn)
		}
	}
	return matched
}
