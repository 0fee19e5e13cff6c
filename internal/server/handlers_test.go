package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"parking-garage/internal/parking"
	"parking-garage/internal/server"
	"parking-garage/internal/store"
)

var testEntryTime = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	store  *store.MemoryStore
	router http.Handler
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	ctx := context.Background()

	s := store.NewMemoryStore()
	sector := &parking.Sector{
		Name:        "A",
		BasePrice:   decimal.RequireFromString("10.00"),
		MaxCapacity: 100,
		OpenHour:    "08:00",
		CloseHour:   "22:00",
	}
	require.NoError(t, s.SaveSector(ctx, sector))
	require.NoError(t, s.SaveSpot(ctx, &parking.Spot{SectorID: sector.ID, Lat: -23.56, Lng: -46.65}))

	clock := parking.FixedClock(now)
	events := parking.NewEventService(s, clock)
	queries := parking.NewQueryService(s, clock)

	return &testEnv{
		store:  s,
		router: server.NewRouter(events, queries, "parking-garage-test"),
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) parkVehicle(t *testing.T, plate string) {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/webhook", parking.WebhookEvent{
		EventType:    parking.EventEntry,
		LicensePlate: plate,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	lat, lng := -23.56, -46.65
	rec = e.do(t, http.MethodPost, "/webhook", parking.WebhookEvent{
		EventType:    parking.EventParked,
		LicensePlate: plate,
		Lat:          &lat,
		Lng:          &lng,
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookLifecycle(t *testing.T) {
	env := newTestEnv(t, testEntryTime)
	env.parkVehicle(t, "BRA2E19")

	rec := env.do(t, http.MethodPost, "/webhook", parking.WebhookEvent{
		EventType:    parking.EventExit,
		LicensePlate: "BRA2E19",
		ExitTime:     "2025-01-01T12:00:00Z",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var ack server.WebhookAckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	require.Equal(t, "event processed", ack.Message)
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	env := newTestEnv(t, testEntryTime)

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp server.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	require.Equal(t, http.StatusBadRequest, errResp.Status)
	require.Equal(t, "/webhook", errResp.Path)
}

func TestWebhookOccupiedSpotReturnsConflict(t *testing.T) {
	env := newTestEnv(t, testEntryTime)
	env.parkVehicle(t, "BRA2E19")

	rec := env.do(t, http.MethodPost, "/webhook", parking.WebhookEvent{
		EventType:    parking.EventEntry,
		LicensePlate: "XYZ9A88",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	lat, lng := -23.56, -46.65
	rec = env.do(t, http.MethodPost, "/webhook", parking.WebhookEvent{
		EventType:    parking.EventParked,
		LicensePlate: "XYZ9A88",
		Lat:          &lat,
		Lng:          &lng,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestWebhookExitWithoutStayReturnsNotFound(t *testing.T) {
	env := newTestEnv(t, testEntryTime)

	rec := env.do(t, http.MethodPost, "/webhook", parking.WebhookEvent{
		EventType:    parking.EventExit,
		LicensePlate: "GHOST99",
		ExitTime:     "2025-01-01T12:00:00Z",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlateStatusEndpoint(t *testing.T) {
	env := newTestEnv(t, testEntryTime)
	env.parkVehicle(t, "BRA2E19")

	rec := env.do(t, http.MethodPost, "/api/v1/plate-status", server.PlateStatusRequest{
		LicensePlate: "BRA2E19",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp server.PlateStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "BRA2E19", resp.LicensePlate)
	require.Equal(t, testEntryTime.Format(time.RFC3339), resp.EntryTime)
	// Fixed clock: no time has passed since entry.
	require.Zero(t, resp.PriceUntilNow)
	require.Equal(t, "PT0S", resp.TimeParked)
	require.Equal(t, -23.56, resp.Lat)
	require.Equal(t, -46.65, resp.Lng)
}

func TestPlateStatusRequiresPlate(t *testing.T) {
	env := newTestEnv(t, testEntryTime)

	rec := env.do(t, http.MethodPost, "/api/v1/plate-status", server.PlateStatusRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlateStatusUnknownPlateReturnsNotFound(t *testing.T) {
	env := newTestEnv(t, testEntryTime)

	rec := env.do(t, http.MethodPost, "/api/v1/plate-status", server.PlateStatusRequest{
		LicensePlate: "GHOST99",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSpotStatusEndpoint(t *testing.T) {
	env := newTestEnv(t, testEntryTime)
	env.parkVehicle(t, "BRA2E19")

	lat, lng := -23.56, -46.65
	rec := env.do(t, http.MethodPost, "/api/v1/spot-status", server.SpotStatusRequest{Lat: &lat, Lng: &lng})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp server.SpotStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Occupied)
	require.Equal(t, "BRA2E19", resp.LicensePlate)
}

func TestSpotStatusRequiresCoordinates(t *testing.T) {
	env := newTestEnv(t, testEntryTime)

	rec := env.do(t, http.MethodPost, "/api/v1/spot-status", map[string]any{"lat": -23.56})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRevenueEndpoint(t *testing.T) {
	env := newTestEnv(t, testEntryTime)
	env.parkVehicle(t, "BRA2E19")

	rec := env.do(t, http.MethodPost, "/webhook", parking.WebhookEvent{
		EventType:    parking.EventExit,
		LicensePlate: "BRA2E19",
		ExitTime:     "2025-01-01T12:00:00Z",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/revenue?sector=A&date=2025-01-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp server.RevenueResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "BRL", resp.Currency)
	// Two hours at the empty-sector rate of 9.00/h.
	require.InDelta(t, 18.00, resp.Amount, 0.001)
}

func TestRevenueValidatesParameters(t *testing.T) {
	env := newTestEnv(t, testEntryTime)

	for _, path := range []string{
		"/api/v1/revenue?date=2025-01-01",
		"/api/v1/revenue?sector=A",
		"/api/v1/revenue?sector=A&date=01-01-2025",
	} {
		rec := env.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, fmt.Sprintf("path %s", path))
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, testEntryTime)

	rec := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp server.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "healthy", resp.Status)
	require.Equal(t, "parking-garage-test", resp.Service)
}
