package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"parking-garage/internal/logging"
	"parking-garage/internal/parking"
)

// EventProcessor consumes webhook events. Both the plain and the
// instrumented event service satisfy it.
type EventProcessor interface {
	ProcessEvent(ctx context.Context, event parking.WebhookEvent) error
}

type Handler struct {
	events  EventProcessor
	queries *parking.QueryService
	service string
}

func NewHandler(events EventProcessor, queries *parking.QueryService, serviceName string) *Handler {
	return &Handler{events: events, queries: queries, service: serviceName}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.service,
		Meta:    extractMeta(r.Context()),
	})
}

// Webhook receives ENTRY/PARKED/EXIT events from the garage simulator.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var event parking.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.events.ProcessEvent(ctx, event); err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, WebhookAckResponse{Message: "event processed"})
}

func (h *Handler) PlateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PlateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.LicensePlate == "" {
		WriteError(w, r, http.StatusBadRequest, "license_plate is required")
		return
	}

	status, err := h.queries.PlateStatus(ctx, req.LicensePlate)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, PlateStatusResponse{
		LicensePlate:  status.LicensePlate,
		PriceUntilNow: status.PriceUntilNow.InexactFloat64(),
		EntryTime:     status.EntryTime.Format(time.RFC3339),
		TimeParked:    formatISODuration(status.TimeParked),
		Lat:           status.Lat,
		Lng:           status.Lng,
	})
}

func (h *Handler) SpotStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SpotStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Lat == nil || req.Lng == nil {
		WriteError(w, r, http.StatusBadRequest, "lat and lng are required")
		return
	}

	status, err := h.queries.SpotStatus(ctx, *req.Lat, *req.Lng)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	resp := SpotStatusResponse{
		Occupied:      status.Occupied,
		Inconsistent:  status.Inconsistent,
		LicensePlate:  status.LicensePlate,
		PriceUntilNow: status.PriceUntilNow.InexactFloat64(),
	}
	if status.EntryTime != nil {
		resp.EntryTime = status.EntryTime.Format(time.RFC3339)
		resp.TimeParked = formatISODuration(status.TimeParked)
	}

	WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sectorName := r.URL.Query().Get("sector")
	if sectorName == "" {
		WriteError(w, r, http.StatusBadRequest, "sector query parameter is required")
		return
	}

	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "date query parameter must be formatted as YYYY-MM-DD")
		return
	}

	revenue, err := h.queries.SectorRevenue(ctx, sectorName, date)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, RevenueResponse{
		Amount:    revenue.Amount.InexactFloat64(),
		Currency:  revenue.Currency,
		Timestamp: revenue.Timestamp,
	})
}

// writeDomainError maps the core error taxonomy onto HTTP statuses:
// not-found conditions to 404, occupancy conflicts to 409, validation
// failures to 400 and everything else to 500.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case parking.IsNotFound(err):
		WriteError(w, r, http.StatusNotFound, err.Error())
	case parking.IsConflict(err):
		WriteError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, parking.ErrValidation):
		WriteError(w, r, http.StatusBadRequest, err.Error())
	default:
		logging.Error(r.Context()).Err(err).Msg("unexpected error handling request")
		WriteError(w, r, http.StatusInternalServerError, "unexpected internal error")
	}
}
