package domain

import (
	"errors"
	"time"
)

// Errors for the reconciliation domain
var (
	ErrInvalidDecision = errors.New("decision must be 'approved' or 'rejected'")
)

// Decision is a human review verdict for one purchase order
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// IsValid checks if the decision value is valid
func (d Decision) IsValid() bool {
	switch d {
	case DecisionApproved, DecisionRejected:
		return true
	}
	return false
}

// Party identifies a vendor or buyer on a procurement document
type Party struct {
	Name    string `bson:"name" json:"name"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
	Address string `bson:"address,omitempty" json:"address,omitempty"`
}

// OrderedLineItem is a line on a purchase order or invoice
type OrderedLineItem struct {
	SKU         string  `bson:"sku" json:"sku"`
	Description string  `bson:"description" json:"description"`
	Quantity    float64 `bson:"quantity" json:"quantity"`
	UnitPrice   float64 `bson:"unit_price" json:"unit_price"`
	LineTotal   float64 `bson:"line_total" json:"line_total"`
}

// ReceivedLineItem is a line on a goods receipt note
type ReceivedLineItem struct {
	SKU              string  `bson:"sku" json:"sku"`
	Description      string  `bson:"description" json:"description"`
	QuantityReceived float64 `bson:"quantity_received" json:"quantity_received"`
	InspectionStatus string  `bson:"inspection_status" json:"inspection_status"`
}

// PurchaseOrderRecord is a structured purchase order as written by the
// extraction pipeline. The field names are a wire contract with the
// review UI; renaming any of them breaks the consumer.
type PurchaseOrderRecord struct {
	PONumber           string            `bson:"po_number" json:"po_number"`
	Vendor             Party             `bson:"vendor" json:"vendor"`
	Buyer              Party             `bson:"buyer" json:"buyer"`
	LineItems          []OrderedLineItem `bson:"line_items" json:"line_items"`
	Subtotal           float64           `bson:"subtotal" json:"subtotal"`
	Tax                float64           `bson:"tax" json:"tax"`
	GrandTotal         *float64          `bson:"grand_total" json:"grand_total"`
	Currency           string            `bson:"currency" json:"currency"`
	Date               string            `bson:"date" json:"date"`
	SourceDocumentPath string            `bson:"source_document_path" json:"source_document_path"`
}

// Malformed reports whether the record is missing its identity field.
// Such records are skipped during reconciliation rather than aborting it.
func (r PurchaseOrderRecord) Malformed() bool {
	return r.PONumber == ""
}

// InvoiceRecord is a structured invoice. ReferencePO is the sole link
// back to a purchase order; it is best-effort normalized at ingestion
// time and may be empty or reference a purchase order that does not
// exist.
type InvoiceRecord struct {
	InvoiceNumber      string            `bson:"invoice_number" json:"invoice_number"`
	ReferencePO        string            `bson:"reference_po,omitempty" json:"reference_po,omitempty"`
	Vendor             Party             `bson:"vendor" json:"vendor"`
	Buyer              Party             `bson:"buyer" json:"buyer"`
	BuyerCountry       string            `bson:"buyer_country,omitempty" json:"buyer_country,omitempty"`
	BuyerCurrency      string            `bson:"buyer_currency,omitempty" json:"buyer_currency,omitempty"`
	BuyerTotal         *float64          `bson:"buyer_total,omitempty" json:"buyer_total,omitempty"`
	LineItems          []OrderedLineItem `bson:"line_items" json:"line_items"`
	Subtotal           float64           `bson:"subtotal" json:"subtotal"`
	Tax                float64           `bson:"tax" json:"tax"`
	GrandTotal         *float64          `bson:"grand_total" json:"grand_total"`
	Currency           string            `bson:"currency" json:"currency"`
	Date               string            `bson:"date" json:"date"`
	Note               string            `bson:"note,omitempty" json:"note,omitempty"`
	SourceDocumentPath string            `bson:"source_document_path" json:"source_document_path"`
}

// Malformed reports whether the record is missing its identity field
func (r InvoiceRecord) Malformed() bool {
	return r.InvoiceNumber == ""
}

// GoodsReceiptRecord is a structured goods receipt note. ReferencePO
// carries the same normalization and unreliability as on invoices.
type GoodsReceiptRecord struct {
	GRNNumber          string             `bson:"grn_number" json:"grn_number"`
	ReferencePO        string             `bson:"reference_po,omitempty" json:"reference_po,omitempty"`
	Vendor             Party              `bson:"vendor" json:"vendor"`
	Buyer              Party              `bson:"buyer" json:"buyer"`
	LineItems          []ReceivedLineItem `bson:"line_items" json:"line_items"`
	Date               string             `bson:"date" json:"date"`
	SourceDocumentPath string             `bson:"source_document_path" json:"source_document_path"`
}

// Malformed reports whether the record is missing its identity field
func (r GoodsReceiptRecord) Malformed() bool {
	return r.GRNNumber == ""
}

// DecisionRecord is the durable human verdict for one purchase-order
// number. One record per PO number, last write wins; decisions are
// accepted for PO numbers that do not (yet) exist in the purchase-order
// store, since review may precede full reconciliation visibility.
type DecisionRecord struct {
	PONumber  string    `bson:"po_number" json:"po_number"`
	Decision  Decision  `bson:"decision" json:"decision"`
	Comment   string    `bson:"comment" json:"comment"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	User      string    `bson:"user" json:"user"`
}
