package attendance

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	chimw "github.com/go-chi/chi/v5/middleware"

	"fieldcheck/internal/domain"
	"fieldcheck/pkg/e"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, e.ErrMalformedPayload), errors.Is(err, e.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, e.ErrTargetNotFound), errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, e.ErrInvalidCoordinates), errors.Is(err, e.ErrPositionUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, e.ErrOutOfRange):
		return http.StatusForbidden
	case errors.Is(err, e.ErrTooSoon):
		return http.StatusTooManyRequests
	case errors.Is(err, e.ErrBusy), errors.Is(err, e.ErrNoValidatedTarget), errors.Is(err, e.ErrSessionReset):
		return http.StatusConflict
	case errors.Is(err, e.ErrDirectoryFailure):
		return http.StatusBadGateway
	case errors.Is(err, e.ErrStoreFailure):
		return http.StatusServiceUnavailable
	case errors.Is(err, e.ErrDeadline):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func toErrorResponse(err error) domain.ErrorResponse {
	resp := domain.ErrorResponse{
		Error:   e.Reason(err),
		Message: err.Error(),
	}

	var oor *e.OutOfRangeError
	if errors.As(err, &oor) {
		d, m := oor.DistanceMeters, oor.MaxMeters
		resp.Checkpoint = oor.Checkpoint
		resp.DistanceMeters = &d
		resp.MaxMeters = &m
	}

	var soon *e.TooSoonError
	if errors.As(err, &soon) {
		mins := soon.MinutesRemaining()
		resp.MinutesRemaining = &mins
	}

	return resp
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := toErrorResponse(err)

	if status >= http.StatusInternalServerError {
		h.log(r).Error("request failed", slog.String("reason", resp.Error), slog.Any("error", err))
		resp.Message = http.StatusText(status)
	}

	var soon *e.TooSoonError
	if errors.As(err, &soon) {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(soon.Remaining.Seconds()))))
	}

	h.writeJSON(w, status, resp)
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("json encode failed", slog.Any("error", err))
	}
}
