package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/attendance-ledger/internal/middleware"
)

// HealthChecker проверяет доступность хранилища
type HealthChecker func(ctx context.Context) error

// Router настраивает маршруты API
type Router struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	empHandler    *EmployeeHandler
	ledgerHandler *LedgerHandler
	eventsHandler *EventsHandler
	health        HealthChecker
}

// NewRouter создаёт новый роутер
func NewRouter(
	empHandler *EmployeeHandler,
	ledgerHandler *LedgerHandler,
	eventsHandler *EventsHandler,
	health HealthChecker,
	logger *slog.Logger,
) *Router {
	return &Router{
		mux:           http.NewServeMux(),
		logger:        logger,
		empHandler:    empHandler,
		ledgerHandler: ledgerHandler,
		eventsHandler: eventsHandler,
		health:        health,
	}
}

// Setup настраивает все маршруты
func (r *Router) Setup() http.Handler {
	// Справочник сотрудников
	r.mux.HandleFunc("/employees", r.employeesRouter)
	r.mux.HandleFunc("/employees/", r.employeesRouter)

	// Журнал посещаемости
	r.mux.HandleFunc("/attendance/check-in", only(http.MethodPost, r.ledgerHandler.CheckIn))
	r.mux.HandleFunc("/attendance/check-out", only(http.MethodPost, r.ledgerHandler.CheckOut))
	r.mux.HandleFunc("/attendance", only(http.MethodGet, r.ledgerHandler.Daily))
	r.mux.HandleFunc("/attendance/employees/", only(http.MethodGet, r.ledgerHandler.EmployeeRecords))
	r.mux.HandleFunc("/absences", r.absencesRouter)

	// Отчёты
	r.mux.HandleFunc("/reports/attendance.xlsx", only(http.MethodGet, r.ledgerHandler.AttendanceReport))
	r.mux.HandleFunc("/reports/absences.xlsx", only(http.MethodGet, r.ledgerHandler.AbsenceReport))

	// Уведомления об изменении справочника
	if r.eventsHandler != nil {
		r.mux.HandleFunc("/events", only(http.MethodGet, r.eventsHandler.Stream))
	}

	// Health check
	r.mux.HandleFunc("/health", r.healthCheck)

	// Применяем middleware
	handler := middleware.ContentType(r.mux)
	handler = middleware.Logger(r.logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recoverer(r.logger)(handler)

	return handler
}

// employeesRouter обрабатывает все запросы к /employees
func (r *Router) employeesRouter(w http.ResponseWriter, req *http.Request) {
	path := strings.TrimPrefix(req.URL.Path, "/employees")
	path = strings.Trim(path, "/")

	if path == "" {
		switch req.Method {
		case http.MethodPost:
			r.empHandler.Create(w, req)
		case http.MethodGet:
			r.empHandler.List(w, req)
		default:
			methodNotAllowed(w)
		}
		return
	}

	if strings.Contains(path, "/") {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	// /employees/{id}
	switch req.Method {
	case http.MethodGet:
		r.empHandler.GetByID(w, req)
	case http.MethodPut:
		r.empHandler.Update(w, req)
	case http.MethodDelete:
		r.empHandler.Delete(w, req)
	default:
		methodNotAllowed(w)
	}
}

func (r *Router) absencesRouter(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodPost:
		r.ledgerHandler.RecordAbsence(w, req)
	case http.MethodGet:
		r.ledgerHandler.Absences(w, req)
	default:
		methodNotAllowed(w)
	}
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	if r.health != nil {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()

		if err := r.health(ctx); err != nil {
			r.logger.Warn("health check failed", slog.Any("error", err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"store unavailable"}`))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func only(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			methodNotAllowed(w)
			return
		}
		next(w, req)
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
}
