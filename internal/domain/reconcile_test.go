package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func po(number string, grandTotal *float64) *PurchaseOrderRecord {
	return &PurchaseOrderRecord{
		PONumber:   number,
		Vendor:     Party{Name: "Acme Industrial"},
		GrandTotal: grandTotal,
	}
}

func inv(number, referencePO string, grandTotal *float64) InvoiceRecord {
	return InvoiceRecord{
		InvoiceNumber: number,
		ReferencePO:   referencePO,
		Vendor:        Party{Name: "Acme Industrial"},
		GrandTotal:    grandTotal,
	}
}

func grn(number, referencePO string) GoodsReceiptRecord {
	return GoodsReceiptRecord{
		GRNNumber:   number,
		ReferencePO: referencePO,
		Vendor:      Party{Name: "Acme Industrial"},
	}
}

func TestClassifyMatched(t *testing.T) {
	status, issues := Classify(
		po("PO-10001", f(1000.00)),
		[]InvoiceRecord{inv("INV-1", "PO-10001", f(1000.00))},
		[]GoodsReceiptRecord{grn("GRN-1", "PO-10001")},
	)

	assert.Equal(t, StatusMatched, status)
	assert.Empty(t, issues)
}

func TestClassifyWithinTolerance(t *testing.T) {
	// 0.005 off on a 1000.00 order is inside the 0.01 tolerance
	status, issues := Classify(
		po("PO-10001", f(1000.00)),
		[]InvoiceRecord{inv("INV-1", "PO-10001", f(1000.005))},
		[]GoodsReceiptRecord{grn("GRN-1", "PO-10001")},
	)

	assert.Equal(t, StatusMatched, status)
	assert.Empty(t, issues)
}

func TestClassifyMissingInvoice(t *testing.T) {
	status, issues := Classify(
		po("PO-10002", f(500.00)),
		nil,
		[]GoodsReceiptRecord{grn("GRN-2", "PO-10002")},
	)

	assert.Equal(t, StatusMissingInvoice, status)
	assert.Equal(t, []string{"No invoice found for this PO"}, issues)
}

func TestClassifyMissingInvoiceTakesPrecedence(t *testing.T) {
	status, issues := Classify(po("PO-10003", f(500.00)), nil, nil)

	assert.Equal(t, StatusMissingInvoice, status)
	assert.Equal(t, []string{
		"No invoice found for this PO",
		"No goods receipt found for this PO",
	}, issues)
}

func TestClassifyMissingGoodsReceipt(t *testing.T) {
	status, issues := Classify(
		po("PO-10004", f(500.00)),
		[]InvoiceRecord{inv("INV-4", "PO-10004", f(500.00))},
		nil,
	)

	assert.Equal(t, StatusMissingGoodsReceipt, status)
	assert.Equal(t, []string{"No goods receipt found for this PO"}, issues)
}

func TestClassifyAmountMismatch(t *testing.T) {
	status, issues := Classify(
		po("PO-10005", f(1000.00)),
		[]InvoiceRecord{inv("INV-5", "PO-10005", f(1200.50))},
		[]GoodsReceiptRecord{grn("GRN-5", "PO-10005")},
	)

	assert.Equal(t, StatusAmountMismatch, status)
	require.Len(t, issues, 1)
	assert.Equal(t, "Invoice grand_total 1200.5 does not match PO grand_total 1000", issues[0])
}

func TestClassifyNegativeDifferenceExceedsTolerance(t *testing.T) {
	status, _ := Classify(
		po("PO-10005", f(1000.00)),
		[]InvoiceRecord{inv("INV-5", "PO-10005", f(999.985))},
		[]GoodsReceiptRecord{grn("GRN-5", "PO-10005")},
	)

	assert.Equal(t, StatusAmountMismatch, status)
}

func TestClassifyStatusStickyUnderMismatch(t *testing.T) {
	// Missing goods receipt outranks amount mismatch; the mismatch still
	// contributes an issue but does not change the status.
	status, issues := Classify(
		po("PO-10006", f(1000.00)),
		[]InvoiceRecord{inv("INV-6", "PO-10006", f(750.00))},
		nil,
	)

	assert.Equal(t, StatusMissingGoodsReceipt, status)
	assert.Equal(t, []string{
		"No goods receipt found for this PO",
		"Invoice grand_total 750 does not match PO grand_total 1000",
	}, issues)
}

func TestClassifyEveryMismatchedInvoiceReported(t *testing.T) {
	status, issues := Classify(
		po("PO-10007", f(1000.00)),
		[]InvoiceRecord{
			inv("INV-7A", "PO-10007", f(900.00)),
			inv("INV-7B", "PO-10007", f(1000.00)),
			inv("INV-7C", "PO-10007", f(1100.00)),
		},
		[]GoodsReceiptRecord{grn("GRN-7", "PO-10007")},
	)

	assert.Equal(t, StatusAmountMismatch, status)
	assert.Len(t, issues, 2)
}

func TestClassifySkipsNilTotals(t *testing.T) {
	status, issues := Classify(
		po("PO-10008", f(1000.00)),
		[]InvoiceRecord{inv("INV-8", "PO-10008", nil)},
		[]GoodsReceiptRecord{grn("GRN-8", "PO-10008")},
	)

	assert.Equal(t, StatusMatched, status)
	assert.Empty(t, issues)

	status, issues = Classify(
		po("PO-10009", nil),
		[]InvoiceRecord{inv("INV-9", "PO-10009", f(1234.00))},
		[]GoodsReceiptRecord{grn("GRN-9", "PO-10009")},
	)

	assert.Equal(t, StatusMatched, status)
	assert.Empty(t, issues)
}

func TestStatusMergeIsSticky(t *testing.T) {
	assert.Equal(t, StatusMissingInvoice, StatusMissingInvoice.merge(StatusMissingGoodsReceipt))
	assert.Equal(t, StatusMissingInvoice, StatusMissingGoodsReceipt.merge(StatusMissingInvoice))
	assert.Equal(t, StatusMissingGoodsReceipt, StatusMissingGoodsReceipt.merge(StatusAmountMismatch))
	assert.Equal(t, StatusAmountMismatch, StatusMatched.merge(StatusAmountMismatch))
	assert.Equal(t, StatusMatched, StatusMatched.merge(StatusMatched))
}

func TestScanOrphansGhostClaimedByInvoice(t *testing.T) {
	known := map[string]bool{"PO-10001": true}
	invoices := []InvoiceRecord{
		inv("INV-1", "PO-10001", f(100)),
		inv("INV-2", "PO-99999", f(200)),
	}
	receipts := []GoodsReceiptRecord{
		grn("GRN-1", "PO-10001"),
		grn("GRN-2", "PO-99999"),
	}

	results := ScanOrphans(invoices, receipts, known)

	require.Len(t, results, 1)
	ghost := results[0]
	assert.Equal(t, StatusGhostPO, ghost.Status)
	assert.Equal(t, "PO-99999", ghost.PurchaseOrder.PONumber)
	assert.Equal(t, "Unknown", ghost.PurchaseOrder.Vendor.Name)
	require.Len(t, ghost.Invoices, 1)
	require.Len(t, ghost.GoodsReceipts, 1)
	assert.Equal(t, "GRN-2", ghost.GoodsReceipts[0].GRNNumber)
	assert.Equal(t, []string{"Invoice references non-existent PO: PO-99999"}, ghost.Issues)
}

func TestScanOrphansGhostDeduplicated(t *testing.T) {
	// Two invoices and a GRN share the same missing reference: exactly
	// one ghost entry, containing all three documents.
	invoices := []InvoiceRecord{
		inv("INV-1", "PO-40404", f(100)),
		inv("INV-2", "PO-40404", f(150)),
	}
	receipts := []GoodsReceiptRecord{grn("GRN-1", "PO-40404")}

	results := ScanOrphans(invoices, receipts, map[string]bool{})

	require.Len(t, results, 1)
	assert.Equal(t, StatusGhostPO, results[0].Status)
	assert.Len(t, results[0].Invoices, 2)
	assert.Len(t, results[0].GoodsReceipts, 1)
}

func TestScanOrphansGhostClaimedByGRN(t *testing.T) {
	receipts := []GoodsReceiptRecord{
		grn("GRN-1", "PO-55555"),
		grn("GRN-2", "PO-55555"),
	}

	results := ScanOrphans(nil, receipts, map[string]bool{})

	require.Len(t, results, 1)
	ghost := results[0]
	assert.Equal(t, StatusGhostPO, ghost.Status)
	assert.Empty(t, ghost.Invoices)
	assert.Len(t, ghost.GoodsReceipts, 2)
	assert.Equal(t, []string{"GRN references non-existent PO: PO-55555"}, ghost.Issues)
}

func TestScanOrphansNoReference(t *testing.T) {
	invoices := []InvoiceRecord{inv("INV-1", "", f(100))}
	receipts := []GoodsReceiptRecord{grn("GRN-1", "")}

	results := ScanOrphans(invoices, receipts, map[string]bool{})

	require.Len(t, results, 2)

	orphanInv := results[0]
	assert.Equal(t, StatusOrphanedInvoice, orphanInv.Status)
	assert.Equal(t, "INV-1", orphanInv.PurchaseOrder.PONumber)
	assert.Equal(t, "Acme Industrial", orphanInv.PurchaseOrder.Vendor.Name)
	assert.Equal(t, []string{"Invoice has no PO reference"}, orphanInv.Issues)
	assert.Empty(t, orphanInv.GoodsReceipts)

	orphanGRN := results[1]
	assert.Equal(t, StatusOrphanedGRN, orphanGRN.Status)
	assert.Equal(t, "GRN-1", orphanGRN.PurchaseOrder.PONumber)
	assert.Equal(t, []string{"GRN has no PO reference"}, orphanGRN.Issues)
	assert.Empty(t, orphanGRN.Invoices)
}

func TestScanOrphansDoesNotMutateKnownSet(t *testing.T) {
	known := map[string]bool{"PO-10001": true}
	invoices := []InvoiceRecord{inv("INV-1", "PO-77777", f(10))}

	ScanOrphans(invoices, nil, known)

	assert.Equal(t, map[string]bool{"PO-10001": true}, known)
}

func TestScanOrphansMatchedDocumentsNotRevisited(t *testing.T) {
	known := map[string]bool{"PO-10001": true, "PO-10002": true}
	invoices := []InvoiceRecord{
		inv("INV-1", "PO-10001", f(100)),
		inv("INV-2", "PO-10002", f(200)),
	}
	receipts := []GoodsReceiptRecord{grn("GRN-1", "PO-10001")}

	assert.Empty(t, ScanOrphans(invoices, receipts, known))
}

func TestDecisionIsValid(t *testing.T) {
	assert.True(t, DecisionApproved.IsValid())
	assert.True(t, DecisionRejected.IsValid())
	assert.False(t, Decision("maybe").IsValid())
	assert.False(t, Decision("").IsValid())
	assert.False(t, Decision("Approved").IsValid())
}

func TestMalformedRecords(t *testing.T) {
	assert.True(t, PurchaseOrderRecord{}.Malformed())
	assert.False(t, PurchaseOrderRecord{PONumber: "PO-1"}.Malformed())
	assert.True(t, InvoiceRecord{}.Malformed())
	assert.False(t, InvoiceRecord{InvoiceNumber: "INV-1"}.Malformed())
	assert.True(t, GoodsReceiptRecord{}.Malformed())
	assert.False(t, GoodsReceiptRecord{GRNNumber: "GRN-1"}.Malformed())
}
