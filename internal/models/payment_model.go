package models

import "time"

// Payment record statuses.
const (
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// PaymentRecord is one invoice outcome, stored under
// partners/{partnerId}/payments as a billing history side table.
type PaymentRecord struct {
	ID         string    `json:"id" firestore:"-"`
	InvoiceID  string    `json:"invoiceId" firestore:"invoiceId"`
	Amount     int64     `json:"amount" firestore:"amount"` // grosze
	Currency   string    `json:"currency" firestore:"currency"`
	Status     string    `json:"status" firestore:"status"`
	OccurredAt time.Time `json:"occurredAt" firestore:"occurredAt"`
}
