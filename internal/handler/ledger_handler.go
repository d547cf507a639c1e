package handler

import (
	"log/slog"
	"net/http"

	"github.com/attendance-ledger/internal/dto"
	"github.com/attendance-ledger/internal/report"
	"github.com/attendance-ledger/internal/service"
	"github.com/xuri/excelize/v2"
)

type LedgerHandler struct {
	base
	ledger service.LedgerService
}

func NewLedgerHandler(ledger service.LedgerService, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{
		base:   newBase(logger),
		ledger: ledger,
	}
}

func (h *LedgerHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	rec, err := h.ledger.CheckIn(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, dto.ToRecordResponse(rec))
}

func (h *LedgerHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	rec, err := h.ledger.CheckOut(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.ToRecordResponse(rec))
}

func (h *LedgerHandler) RecordAbsence(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordAbsenceRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	rec, err := h.ledger.RecordAbsence(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, dto.ToRecordResponse(rec))
}

// Daily - посещаемость за ?date= (по умолчанию сегодня)
func (h *LedgerHandler) Daily(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ledger.TodaysRecords(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := make([]dto.DailyRecordResponse, len(entries))
	for i := range entries {
		resp[i] = dto.ToDailyRecordResponse(&entries[i])
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *LedgerHandler) EmployeeRecords(w http.ResponseWriter, r *http.Request) {
	id, err := extractID(r.URL.Path, "/attendance/employees")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid employee id", err.Error())
		return
	}

	records, err := h.ledger.EmployeeRecords(r.Context(), id, r.URL.Query().Get("date"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := make([]dto.RecordResponse, len(records))
	for i := range records {
		resp[i] = dto.ToRecordResponse(&records[i])
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *LedgerHandler) Absences(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ledger.AllAbsences(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := make([]dto.AbsenceResponse, len(entries))
	for i := range entries {
		resp[i] = dto.ToAbsenceResponse(&entries[i])
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *LedgerHandler) AttendanceReport(w http.ResponseWriter, r *http.Request) {
	date, err := h.ledger.ResolveDate(r.URL.Query().Get("date"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	entries, err := h.ledger.TodaysRecords(r.Context(), date)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	f, err := report.AttendanceWorkbook(date, entries)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeWorkbook(w, "attendance.xlsx", f)
}

func (h *LedgerHandler) AbsenceReport(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ledger.AllAbsences(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	f, err := report.AbsenceWorkbook(entries)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeWorkbook(w, "absences.xlsx", f)
}

func (h *LedgerHandler) writeWorkbook(w http.ResponseWriter, filename string, f *excelize.File) {
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)

	if err := report.Write(w, f); err != nil {
		h.logger.Error("failed to write workbook", slog.String("file", filename), slog.Any("error", err))
	}
}
