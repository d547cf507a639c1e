package dto

import (
	"strconv"
	"time"

	"github.com/attendance-ledger/internal/domain"
)

// TimestampLayout - формат отметок времени в ответах (ISO 8601 без зоны)
const TimestampLayout = "2006-01-02T15:04:05"

// FormatTimestamp возвращает пустую строку для отсутствующей отметки.
// Хранилище отдаёт время в UTC, в ответе оно показывается в зоне сервера.
func FormatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(time.Local).Format(TimestampLayout)
}

// FormatWorkHours форматирует часы с одним знаком после запятой.
// Ровная половина округляется к чётному: 8.25 -> "8.2".
func FormatWorkHours(hours *float64) string {
	if hours == nil {
		return ""
	}
	return strconv.FormatFloat(*hours, 'f', 1, 64)
}

func ToEmployeeResponse(emp *domain.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:         emp.ID,
		FullName:   emp.FullName,
		Position:   emp.Position,
		Department: emp.Department,
	}
}

func ToRecordResponse(rec *domain.AttendanceRecord) RecordResponse {
	resp := RecordResponse{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,
		Date:       rec.Date,
		Status:     string(rec.Status),
		Reason:     rec.Reason,
	}
	if rec.CheckInTime != nil {
		s := FormatTimestamp(rec.CheckInTime)
		resp.CheckInTime = &s
	}
	if rec.CheckOutTime != nil {
		s := FormatTimestamp(rec.CheckOutTime)
		resp.CheckOutTime = &s
	}
	return resp
}

func ToDailyRecordResponse(e *domain.DailyEntry) DailyRecordResponse {
	resp := DailyRecordResponse{
		RecordID:     e.RecordID,
		EmployeeID:   e.EmployeeID,
		EmployeeName: e.EmployeeName,
		CheckInTime:  FormatTimestamp(e.CheckInTime),
		CheckOutTime: FormatTimestamp(e.CheckOutTime),
		WorkHours:    FormatWorkHours(e.WorkHours),
		Status:       string(e.Status),
	}
	if e.Reason != nil {
		resp.Reason = *e.Reason
	}
	return resp
}

func ToAbsenceResponse(e *domain.AbsenceEntry) AbsenceResponse {
	resp := AbsenceResponse{
		RecordID:     e.RecordID,
		EmployeeID:   e.EmployeeID,
		EmployeeName: e.EmployeeName,
		Date:         e.Date,
		Status:       string(e.Status),
	}
	if e.Reason != nil {
		resp.Reason = *e.Reason
	}
	return resp
}
