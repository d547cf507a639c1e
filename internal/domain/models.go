package domain

import "time"

// DateLayout - формат календарного дня записи посещаемости
const DateLayout = "2006-01-02"

// Status - тип записи в журнале посещаемости
type Status string

const (
	StatusPresent  Status = "Present"
	StatusSick     Status = "Sick"
	StatusLeave    Status = "Leave"
	StatusVacation Status = "Vacation"
)

// AbsenceStatuses перечисляет статусы, означающие отсутствие на весь день
var AbsenceStatuses = []Status{StatusSick, StatusLeave, StatusVacation}

// IsAbsence сообщает, является ли статус отсутствием
func (s Status) IsAbsence() bool {
	switch s {
	case StatusSick, StatusLeave, StatusVacation:
		return true
	}
	return false
}

// Employee представляет сотрудника
type Employee struct {
	ID         int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	FullName   string `json:"full_name" gorm:"type:varchar(200);not null"`
	Position   string `json:"position" gorm:"type:varchar(200)"`
	Department string `json:"department" gorm:"type:varchar(200)"`
}

// TableName задаёт имя таблицы для GORM
func (Employee) TableName() string {
	return "employees"
}

// AttendanceRecord - запись журнала: сессия присутствия или день отсутствия
type AttendanceRecord struct {
	ID           int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	EmployeeID   int64      `json:"employee_id" gorm:"not null;index"`
	CheckInTime  *time.Time `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time"`
	Status       Status     `json:"status" gorm:"type:varchar(20);not null"`
	Date         string     `json:"date" gorm:"type:varchar(10);not null"`
	Reason       *string    `json:"reason"`
}

// TableName задаёт имя таблицы для GORM
func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// DailyEntry - строка отчёта за день (запись, соединённая с сотрудником)
type DailyEntry struct {
	RecordID     int64
	EmployeeID   int64
	EmployeeName string
	CheckInTime  *time.Time
	CheckOutTime *time.Time
	Status       Status
	Reason       *string
	WorkHours    *float64 `gorm:"-"`
}

// AbsenceEntry - строка истории отсутствий
type AbsenceEntry struct {
	RecordID     int64
	EmployeeID   int64
	EmployeeName string
	Date         string
	Status       Status
	Reason       *string
}

// WorkHours вычисляет отработанные часы без округления; до одного знака
// их округляет форматирование (половина к чётному).
// Возвращает nil, если одна из отметок отсутствует или выход раньше входа.
func WorkHours(checkIn, checkOut *time.Time) *float64 {
	if checkIn == nil || checkOut == nil || checkIn.IsZero() || checkOut.IsZero() {
		return nil
	}
	d := checkOut.Sub(*checkIn)
	if d < 0 {
		return nil
	}
	hours := d.Hours()
	return &hours
}

// DateOf возвращает календарный день момента времени
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}
