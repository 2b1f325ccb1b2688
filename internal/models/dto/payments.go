package dto

import "github.com/hongminglow/levelup-be/internal/models"

type SubmitPaymentRequest struct {
	ReferenceNumber string `json:"referenceNumber"`
}

type CheckoutResponse struct {
	DisplayReference string `json:"displayReference"`
	Amount           int64  `json:"amount"`
}

type MyPaymentsResponse struct {
	State    string           `json:"state"`
	Payments []models.Payment `json:"payments"`
}

type SetStatusRequest struct {
	Status models.PaymentStatus `json:"status"`
}
