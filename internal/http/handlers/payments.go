package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/levelup-be/internal/http/respond"
	"github.com/hongminglow/levelup-be/internal/models/dto"
	"github.com/hongminglow/levelup-be/internal/payments"
	"github.com/hongminglow/levelup-be/internal/session"
)

// PaymentsHandler serves the user-facing payment dialog.
type PaymentsHandler struct {
	svc         *payments.Service
	downloadURL string
}

// NewPaymentsHandler constructs the handler.
func NewPaymentsHandler(svc *payments.Service, downloadURL string) *PaymentsHandler {
	return &PaymentsHandler{svc: svc, downloadURL: downloadURL}
}

// Register attaches payment routes. They expect an authenticated session.
func (h *PaymentsHandler) Register(r chi.Router) {
	r.Post("/payments/start", h.handleStart)
	r.Post("/payments", h.handleSubmit)
	r.Get("/payments/mine", h.handleMine)
	r.Get("/payments/mine/watch", h.handleWatch)
}

func (h *PaymentsHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	checkout, err := h.svc.StartPayment(session.HolderFrom(r.Context()))
	if err != nil {
		writePaymentError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "payment required", dto.CheckoutResponse{
		DisplayReference: checkout.DisplayReference,
		Amount:           checkout.Amount,
	})
}

func (h *PaymentsHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitPaymentRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	p, err := h.svc.SubmitReference(r.Context(), session.HolderFrom(r.Context()), req.ReferenceNumber)
	if err != nil {
		writePaymentError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "payment is pending, please wait for admin approval", p)
}

func (h *PaymentsHandler) handleMine(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IdentityFrom(r.Context())
	if !ok {
		writePaymentError(w, payments.ErrNotAuthenticated)
		return
	}
	mine, err := h.svc.ListMine(r.Context(), id.UID)
	if err != nil {
		log.Printf("list payments of %s: %v", id.UID, err)
		respond.Error(w, http.StatusInternalServerError, "failed to load payments")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.MyPaymentsResponse{State: string(payments.Decide(mine)), Payments: mine})
}

// handleWatch streams flow states as server-sent events. Approval sends a
// download event and ends the stream.
func (h *PaymentsHandler) handleWatch(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respond.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	holder := session.HolderFrom(r.Context())
	if _, ok := holder.Current(); !ok {
		writePaymentError(w, payments.ErrNotAuthenticated)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	stream := &eventStream{w: w, flusher: flusher}
	flow := payments.NewFlow(h.svc, holder, h.downloadURL, payments.DownloaderFunc(func(_ context.Context, url string) error {
		return stream.send("download", map[string]string{"url": url})
	}))
	err := flow.Run(r.Context(), func(s payments.State) {
		if err := stream.send("state", map[string]string{"state": string(s)}); err != nil {
			log.Printf("payment watch: %v", err)
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("payment watch ended: %v", err)
		_ = stream.send("error", map[string]string{"error": err.Error()})
	}
}

type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (s *eventStream) send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return fmt.Errorf("write %s event: %w", event, err)
	}
	s.flusher.Flush()
	return nil
}

func writePaymentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, payments.ErrNotAuthenticated):
		respond.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, payments.ErrEmptyReference):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, payments.ErrSubmissionClosed):
		respond.Error(w, http.StatusConflict, err.Error())
	default:
		log.Printf("payment upload failed: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to send payment, try again")
	}
}
