package report

import (
	"fmt"
	"io"

	"github.com/attendance-ledger/internal/domain"
	"github.com/attendance-ledger/internal/dto"
	"github.com/xuri/excelize/v2"
)

const (
	AttendanceSheet = "Attendance"
	AbsenceSheet    = "Absences"

	// ContentType - MIME тип книги XLSX
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	attendanceHeader = []any{"Employee", "Check-in", "Check-out", "Work hours", "Status"}
	absenceHeader    = []any{"Employee", "Date", "Type", "Reason"}
)

// AttendanceWorkbook строит книгу с посещаемостью за день
func AttendanceWorkbook(date string, entries []domain.DailyEntry) (*excelize.File, error) {
	rows := make([][]any, 0, len(entries))
	for i := range entries {
		r := dto.ToDailyRecordResponse(&entries[i])
		rows = append(rows, []any{r.EmployeeName, r.CheckInTime, r.CheckOutTime, r.WorkHours, r.Status})
	}
	return build(AttendanceSheet, "Attendance "+date, attendanceHeader, rows)
}

// AbsenceWorkbook строит книгу с историей отсутствий (порядок как у входных данных)
func AbsenceWorkbook(entries []domain.AbsenceEntry) (*excelize.File, error) {
	rows := make([][]any, 0, len(entries))
	for i := range entries {
		r := dto.ToAbsenceResponse(&entries[i])
		rows = append(rows, []any{r.EmployeeName, r.Date, r.Status, r.Reason})
	}
	return build(AbsenceSheet, "Absences", absenceHeader, rows)
}

// Write сериализует книгу в w и закрывает её
func Write(w io.Writer, f *excelize.File) error {
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// build: строка 1 - заголовок, строка 2 - шапка таблицы, далее данные
func build(sheet, title string, header []any, rows [][]any) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		f.Close()
		return nil, fmt.Errorf("set title: %w", err)
	}

	if err := setRow(f, sheet, 2, header); err != nil {
		f.Close()
		return nil, err
	}

	for i, row := range rows {
		if err := setRow(f, sheet, i+3, row); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := f.SetColWidth(sheet, "A", "E", 20); err != nil {
		f.Close()
		return nil, fmt.Errorf("set column width: %w", err)
	}

	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("set row %d: %w", row, err)
	}
	return nil
}
