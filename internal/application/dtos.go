package application

// RecordDecisionCommand represents a request to record a review
// decision for a purchase order. Decision values are validated by the
// service so an invalid verdict is rejected before any write.
type RecordDecisionCommand struct {
	PONumber string `json:"po_number" binding:"required"`
	Decision string `json:"decision" binding:"required"`
	Comment  string `json:"comment"`
}

// DecisionAck acknowledges a recorded decision. Matched, Modified and
// UpsertedID mirror the store's upsert result so a caller can tell an
// insert from an overwrite.
type DecisionAck struct {
	Success    bool    `json:"success"`
	PONumber   string  `json:"po_number"`
	Decision   string  `json:"decision"`
	Matched    int64   `json:"matched"`
	Modified   int64   `json:"modified"`
	UpsertedID *string `json:"upserted_id"`
}
