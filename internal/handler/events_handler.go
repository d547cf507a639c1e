package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/attendance-ledger/internal/service"
)

// EventsHandler транслирует события Notifier как Server-Sent Events
type EventsHandler struct {
	notifier  *service.Notifier
	logger    *slog.Logger
	keepAlive time.Duration
}

func NewEventsHandler(notifier *service.Notifier, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		notifier:  notifier,
		logger:    logger,
		keepAlive: 30 * time.Second,
	}
}

func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// поток живёт дольше WriteTimeout сервера
	_ = rc.SetWriteDeadline(time.Time{})

	events, cancel := h.notifier.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.Error("streaming unsupported", slog.Any("error", err))
		return
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.logger.Error("failed to encode event", slog.Any("error", err))
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
