package models

import "time"

// PaymentStatus is the lifecycle marker of a submitted payment.
type PaymentStatus string

const (
	StatusPending  PaymentStatus = "pending"
	StatusApproved PaymentStatus = "approved"
	StatusDenied   PaymentStatus = "denied"
)

// Valid reports whether s is one of the three known statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied:
		return true
	}
	return false
}

// Payment is a manual (off-system) payment awaiting admin review.
type Payment struct {
	ID              string        `json:"id"`
	UserID          string        `json:"userId"`
	UserEmail       string        `json:"userEmail"`
	ReferenceNumber string        `json:"referenceNumber"`
	Amount          int64         `json:"amount"`
	Status          PaymentStatus `json:"status"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// StatusChange is one audited review transition of a payment.
type StatusChange struct {
	ID        int64         `json:"id"`
	PaymentID string        `json:"paymentId"`
	From      PaymentStatus `json:"from"`
	To        PaymentStatus `json:"to"`
	ActorID   string        `json:"actorId"`
	CreatedAt time.Time     `json:"createdAt"`
}
