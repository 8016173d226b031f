package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"fxledger-service/internal/domain"
	"fxledger-service/internal/infrastructure/logx"

	"go.uber.org/zap"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, msg)
}

func internalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// writeDomainError is the single place application errors become HTTP statuses.
func writeDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		perr *domain.ProviderError
		serr *domain.StorageError
	)
	switch {
	case errors.Is(err, domain.ErrInvalidPair),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrInvalidAmount):
		badRequest(w, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &perr):
		logx.WithFields(ctx).Warn("upstream_failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "rate provider unavailable")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusGatewayTimeout, "request timed out")
	case errors.As(err, &serr):
		logx.WithFields(ctx).Error("storage_failed", zap.String("op", serr.Op), zap.Error(err))
		internalError(w)
	default:
		logx.WithFields(ctx).Error("unhandled_error", zap.Error(err))
		internalError(w)
	}
}
