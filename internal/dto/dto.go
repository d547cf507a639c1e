package dto

// CreateEmployeeRequest - запрос на добавление сотрудника
type CreateEmployeeRequest struct {
	FullName   string `json:"full_name" validate:"required,min=1,max=200"`
	Position   string `json:"position" validate:"max=200"`
	Department string `json:"department" validate:"max=200"`
}

// UpdateEmployeeRequest - полная замена данных сотрудника
type UpdateEmployeeRequest struct {
	FullName   string `json:"full_name" validate:"required,min=1,max=200"`
	Position   string `json:"position" validate:"max=200"`
	Department string `json:"department" validate:"max=200"`
}

// DeleteEmployeeQuery - параметры запроса удаления
type DeleteEmployeeQuery struct {
	Mode string `validate:"omitempty,oneof=restrict cascade"`
}

// EmployeeResponse - ответ с данными сотрудника
type EmployeeResponse struct {
	ID         int64  `json:"id"`
	FullName   string `json:"full_name"`
	Position   string `json:"position"`
	Department string `json:"department"`
}

// CheckRequest - отметка прихода или ухода.
// Если At не передан, используется текущее время.
type CheckRequest struct {
	EmployeeID int64   `json:"employee_id" validate:"required,min=1"`
	At         *string `json:"at" validate:"omitempty,min=10"`
}

// RecordAbsenceRequest - регистрация отсутствия на весь день
type RecordAbsenceRequest struct {
	EmployeeID int64  `json:"employee_id" validate:"required,min=1"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Status     string `json:"status" validate:"required,oneof=Sick Leave Vacation"`
	Reason     string `json:"reason" validate:"max=500"`
}

// RecordResponse - созданная или изменённая запись журнала
type RecordResponse struct {
	ID           int64   `json:"id"`
	EmployeeID   int64   `json:"employee_id"`
	Date         string  `json:"date"`
	Status       string  `json:"status"`
	CheckInTime  *string `json:"check_in_time"`
	CheckOutTime *string `json:"check_out_time"`
	Reason       *string `json:"reason,omitempty"`
}

// DailyRecordResponse - строка отчёта о посещаемости за день
type DailyRecordResponse struct {
	RecordID     int64  `json:"record_id"`
	EmployeeID   int64  `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	CheckInTime  string `json:"check_in_time"`
	CheckOutTime string `json:"check_out_time"`
	WorkHours    string `json:"work_hours"`
	Status       string `json:"status"`
	Reason       string `json:"reason,omitempty"`
}

// AbsenceResponse - строка истории отсутствий
type AbsenceResponse struct {
	RecordID     int64  `json:"record_id"`
	EmployeeID   int64  `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	Reason       string `json:"reason"`
}

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
