package domain

// Status is the reconciliation verdict for one purchase-order entry
type Status string

const (
	StatusMatched             Status = "matched"
	StatusAmountMismatch      Status = "amount_mismatch"
	StatusMissingGoodsReceipt Status = "missing_goods_receipt"
	StatusMissingInvoice      Status = "missing_invoice"
	StatusGhostPO             Status = "ghost_po"
	StatusOrphanedInvoice     Status = "orphaned_invoice"
	StatusOrphanedGRN         Status = "orphaned_grn"
)

// statusRank orders the classifier statuses by severity. Classification
// merges statuses through this ranking instead of reassigning in check
// order, so a lower-severity finding can never overwrite a
// higher-severity one no matter which check runs first.
var statusRank = map[Status]int{
	StatusMatched:             0,
	StatusAmountMismatch:      1,
	StatusMissingGoodsReceipt: 2,
	StatusMissingInvoice:      3,
}

// merge returns the higher-severity of the two statuses. The first
// status to reach a given severity sticks; later findings of lower
// severity only contribute issue strings.
func (s Status) merge(other Status) Status {
	if statusRank[other] > statusRank[s] {
		return other
	}
	return s
}
