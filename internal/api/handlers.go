// Package api serves gear recommendations over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gear-backend/internal/collector"
	"gear-backend/internal/database"
	"gear-backend/internal/gearbox"
	"gear-backend/internal/models"
)

// RecommendationStore reads stored recommendations
type RecommendationStore interface {
	LatestRecommendation(ctx context.Context, deviceID string) (*models.GearRecommendation, error)
}

// ConnectionChecker reports broker connectivity
type ConnectionChecker interface {
	IsConnected() bool
}

// Handler ties HTTP routes to the gear selector
type Handler struct {
	selector *gearbox.Selector
	store    RecommendationStore
	broker   ConnectionChecker
	now      func() time.Time
}

// NewHandler creates a new Handler. store and broker may be nil.
func NewHandler(selector *gearbox.Selector, store RecommendationStore, broker ConnectionChecker) *Handler {
	return &Handler{
		selector: selector,
		store:    store,
		broker:   broker,
		now:      time.Now,
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type healthResponse struct {
	Status        string `json:"status"`
	MQTTConnected bool   `json:"mqtt_connected"`
}

// Recommend decides the gear for a posted reading
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req models.VehicleTelemetry
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	reading, err := collector.FromTelemetry(&req)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	if req.Timestamp.IsZero() {
		req.Timestamp = h.now()
	}

	decision := h.selector.Decide(reading)
	h.respondJSON(w, http.StatusOK, models.NewGearRecommendation(req.DeviceID, req.Timestamp, reading, decision))
}

// LatestRecommendation returns the last stored decision for a device
func (h *Handler) LatestRecommendation(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.respondError(w, http.StatusServiceUnavailable, errors.New("storage disabled"))
		return
	}

	deviceID := chi.URLParam(r, "deviceID")
	rec, err := h.store.LatestRecommendation(r.Context(), deviceID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		h.respondError(w, http.StatusNotFound, err)
		return
	case err != nil:
		h.respondError(w, http.StatusInternalServerError, err)
		return
	}

	h.respondJSON(w, http.StatusOK, rec)
}

// Health reports liveness and broker connectivity
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	connected := h.broker != nil && h.broker.IsConnected()
	h.respondJSON(w, http.StatusOK, healthResponse{Status: "ok", MQTTConnected: connected})
}

func (h *Handler) respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) respondError(w http.ResponseWriter, code int, err error) {
	h.respondJSON(w, code, errorResponse{Error: err.Error(), Field: collector.FieldOf(err)})
}
