package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/levelup-be/internal/admin"
	"github.com/hongminglow/levelup-be/internal/http/respond"
	"github.com/hongminglow/levelup-be/internal/models/dto"
	"github.com/hongminglow/levelup-be/internal/report"
	"github.com/hongminglow/levelup-be/internal/session"
	"github.com/hongminglow/levelup-be/internal/storage"
)

// AdminHandler serves the admin console.
type AdminHandler struct {
	svc *admin.Service
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(svc *admin.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// Register attaches admin routes. They expect the admin guard in front.
func (h *AdminHandler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/payments", h.handleListPayments)
		r.Patch("/payments/{id}", h.handleSetStatus)
		r.Get("/payments/{id}/history", h.handleHistory)
		r.Get("/users", h.handleListUsers)
		r.Post("/users/{uid}/toggle-role", h.handleToggleRole)
		r.Get("/metrics", h.handleMetrics)
		r.Get("/reports/full", h.handleFullReport)
		r.Get("/reports/revenue", h.handleRevenueReport)
	})
}

func (h *AdminHandler) handleListPayments(w http.ResponseWriter, r *http.Request) {
	filter, err := admin.ParseFilter(r.URL.Query().Get("status"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := h.svc.ListPayments(r.Context(), filter)
	if err != nil {
		writeAdminError(w, "list payments", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", list)
}

func (h *AdminHandler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.SetStatusRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	actor, _ := session.IdentityFrom(r.Context())
	p, err := h.svc.SetStatus(r.Context(), actor.UID, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeAdminError(w, "set status", err)
		return
	}
	respond.JSON(w, http.StatusOK, "payment updated", p)
}

func (h *AdminHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.svc.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAdminError(w, "payment history", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", history)
}

func (h *AdminHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.SearchUsers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeAdminError(w, "list users", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", users)
}

func (h *AdminHandler) handleToggleRole(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.ToggleRole(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		writeAdminError(w, "toggle role", err)
		return
	}
	respond.JSON(w, http.StatusOK, "role updated", u)
}

func (h *AdminHandler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Dashboard(r.Context())
	if err != nil {
		writeAdminError(w, "metrics", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", m)
}

func (h *AdminHandler) handleFullReport(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.FullReport(r.Context())
	if err != nil {
		writeAdminError(w, "full report", err)
		return
	}
	respond.Attachment(w, f.Name, f.ContentType, f.Content)
}

func (h *AdminHandler) handleRevenueReport(w http.ResponseWriter, r *http.Request) {
	period, err := report.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	f, err := h.svc.RevenueReport(r.Context(), period)
	if err != nil {
		writeAdminError(w, "revenue report", err)
		return
	}
	respond.Attachment(w, f.Name, f.ContentType, f.Content)
}

func writeAdminError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, admin.ErrInvalidStatus), errors.Is(err, admin.ErrInvalidFilter):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "record not found")
	case errors.Is(err, report.ErrEmpty):
		respond.Error(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("admin %s: %v", op, err)
		respond.Error(w, http.StatusInternalServerError, "something went wrong, try again")
	}
}
