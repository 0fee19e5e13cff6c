package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Meta    *Meta  `json:"meta,omitempty"`
}

// ErrorResponse is the error payload of the public API: the moment of
// failure, the HTTP status, its reason phrase, a human-readable message and
// the request path.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

type WebhookAckResponse struct {
	Message string `json:"message"`
}

type PlateStatusRequest struct {
	LicensePlate string `json:"license_plate"`
}

type PlateStatusResponse struct {
	LicensePlate  string  `json:"license_plate"`
	PriceUntilNow float64 `json:"price_until_now"`
	EntryTime     string  `json:"entry_time"`
	TimeParked    string  `json:"time_parked"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
}

type SpotStatusRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type SpotStatusResponse struct {
	Occupied      bool    `json:"occupied"`
	Inconsistent  bool    `json:"inconsistent,omitempty"`
	LicensePlate  string  `json:"license_plate,omitempty"`
	PriceUntilNow float64 `json:"price_until_now"`
	EntryTime     string  `json:"entry_time,omitempty"`
	TimeParked    string  `json:"time_parked,omitempty"`
}

type RevenueResponse struct {
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSON(w, status, ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      r.URL.Path,
	})
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

// formatISODuration renders an elapsed duration as an ISO 8601 duration
// string, e.g. "PT2H30M15S".
func formatISODuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)

	hours := int64(d / time.Hour)
	minutes := int64(d/time.Minute) % 60
	seconds := int64(d/time.Second) % 60

	out := "PT"
	if hours > 0 {
		out += fmt.Sprintf("%dH", hours)
	}
	if minutes > 0 {
		out += fmt.Sprintf("%dM", minutes)
	}
	if seconds > 0 || out == "PT" {
		out += fmt.Sprintf("%dS", seconds)
	}
	return out
}
