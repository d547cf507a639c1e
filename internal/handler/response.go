package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/attendance-ledger/internal/domain"
	"github.com/attendance-ledger/internal/dto"
	"github.com/go-playground/validator/v10"
)

// base - общие зависимости и ответы JSON для хендлеров
type base struct {
	validator *validator.Validate
	logger    *slog.Logger
}

func newBase(logger *slog.Logger) base {
	return base{
		validator: validator.New(),
		logger:    logger,
	}
}

// decodeAndValidate читает тело запроса и проверяет теги validate.
// При ошибке ответ уже записан.
func (b *base) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		b.respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	if err := b.validator.Struct(dst); err != nil {
		b.respondError(w, http.StatusBadRequest, "validation error", err.Error())
		return false
	}
	return true
}

func (b *base) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		b.respondError(w, http.StatusBadRequest, "validation error", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		b.respondError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, domain.ErrNoOpenSession):
		b.respondError(w, http.StatusConflict, "no open session", err.Error())
	case errors.Is(err, domain.ErrConflict):
		b.respondError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrInvalidTime):
		b.respondError(w, http.StatusUnprocessableEntity, "invalid time", err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		b.logger.Warn("store unavailable",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		b.respondError(w, http.StatusServiceUnavailable, "store unavailable", "")
	default:
		b.logger.Error("internal error",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		b.respondError(w, http.StatusInternalServerError, "internal server error", "")
	}
}

func (b *base) respondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		b.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func (b *base) respondError(w http.ResponseWriter, status int, errMsg, details string) {
	w.WriteHeader(status)
	resp := dto.ErrorResponse{Error: errMsg}
	if details != "" {
		resp.Message = details
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		b.logger.Error("failed to encode error response", slog.Any("error", err))
	}
}

// extractID достаёт идентификатор, следующий за prefix в пути
func extractID(path, prefix string) (int64, error) {
	path = strings.TrimPrefix(path, prefix)
	path = strings.Trim(path, "/")

	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		return 0, errors.New("id is required")
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("id must be positive")
	}
	return id, nil
}
