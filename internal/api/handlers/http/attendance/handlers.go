package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"fieldcheck/internal/domain"
	"fieldcheck/internal/middleware"
	"fieldcheck/internal/service"
	"fieldcheck/pkg/e"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type AttendanceService interface {
	UpdatePosition(actorID string, sample domain.PositionSample) bool
	SetPermission(actorID string, p domain.Permission)
	Scan(ctx context.Context, actorID, payload string) (*service.ScanOutcome, error)
	Refresh(ctx context.Context, actorID string)
	Register(ctx context.Context, actorID string, eventType domain.EventType) (*domain.AttendanceEvent, error)
	State(actorID string) domain.SessionView
	End(ctx context.Context, actorID string)
	Hint(ctx context.Context, actorID string) (*domain.SessionHint, error)
}

type Handler struct {
	logger  *slog.Logger
	service AttendanceService
	now     func() time.Time
}

func NewHandler(logger *slog.Logger, svc AttendanceService) *Handler {
	return &Handler{
		logger:  logger,
		service: svc,
		now:     time.Now,
	}
}

func (h *Handler) PostPosition(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actorID(w, r)
	if !ok {
		return
	}

	var req domain.PositionRequest
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	sample := domain.PositionSample{
		Coordinates:    domain.Coordinate{Lat: req.Lat, Lng: req.Lng},
		Timestamp:      h.now().UTC(),
		AccuracyMeters: req.AccuracyMeters,
	}
	if req.Timestamp != nil {
		sample.Timestamp = req.Timestamp.UTC()
	}

	accepted := h.service.UpdatePosition(actorID, sample)
	h.writeJSON(w, http.StatusAccepted, map[string]bool{"accepted": accepted})
}

func (h *Handler) PutPermission(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actorID(w, r)
	if !ok {
		return
	}

	var req domain.PermissionRequest
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	p, _ := domain.ParsePermission(req.State)
	h.service.SetPermission(actorID, p)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PostScan(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actorID(w, r)
	if !ok {
		return
	}

	var req domain.ScanRequest
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	out, err := h.service.Scan(r.Context(), actorID, req.Payload)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, domain.ScanResponse{
		State:          out.State,
		Target:         out.Target,
		DistanceMeters: out.DistanceMeters,
	})
}

func (h *Handler) PostRefresh(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actorID(w, r)
	if !ok {
		return
	}

	h.service.Refresh(r.Context(), actorID)
	h.writeJSON(w, http.StatusOK, h.service.State(actorID))
}

func (h *Handler) PostRegister(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actorID(w, r)
	if !ok {
		return
	}

	var req domain.RegisterRequest
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	ev, err := h.service.Register(r.Context(), actorID, req.EventType)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.log(r).Info("attendance registered",
		slog.String("actor_id", actorID),
		slog.String("event_id", ev.ID.String()),
		slog.String("event_type", string(ev.EventType)))

	h.writeJSON(w, http.StatusCreated, domain.RegisterResponse{
		State: domain.SessionEmpty,
		Event: *ev,
	})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actorID(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.State(actorID))
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actorID(w, r)
	if !ok {
		return
	}
	h.service.End(r.Context(), actorID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetHint(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actorID(w, r)
	if !ok {
		return
	}

	hint, err := h.service.Hint(r.Context(), actorID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, hint)
}

func (h *Handler) actorID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "actorID"))
	if id == "" || len(id) > 128 {
		h.handleError(w, r, fmt.Errorf("actor id: %w", e.ErrInvalidInput))
		return "", false
	}
	return id, true
}
