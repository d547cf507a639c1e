package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/attendance-ledger/internal/domain"
	"gorm.io/gorm"
)

// AttendanceRepository - доступ к журналу посещаемости без бизнес-правил.
// Ожидаемое отсутствие данных (нет открытой сессии) возвращается флагом found,
// а не ошибкой.
type AttendanceRepository interface {
	Insert(ctx context.Context, rec *domain.AttendanceRecord) (int64, error)
	UpdateCheckOut(ctx context.Context, id int64, at time.Time) error
	FindOpenSession(ctx context.Context, employeeID int64, date string) (*domain.AttendanceRecord, bool, error)
	FindAbsence(ctx context.Context, employeeID int64, date string) (*domain.AttendanceRecord, bool, error)
	QueryByDate(ctx context.Context, date string) ([]domain.DailyEntry, error)
	QueryByEmployeeAndDate(ctx context.Context, employeeID int64, date string) ([]domain.AttendanceRecord, error)
	QueryAbsences(ctx context.Context) ([]domain.AbsenceEntry, error)
	CountByEmployee(ctx context.Context, employeeID int64) (int64, error)
	EmployeeExists(ctx context.Context, employeeID int64) (bool, error)

	// Atomic выполняет fn в одной транзакции записи. Репозиторий,
	// переданный в fn, привязан к этой транзакции.
	Atomic(ctx context.Context, fn func(ctx context.Context, repo AttendanceRepository) error) error
}

type attendanceRepository struct {
	db     *gorm.DB
	writer *Writer
	inTx   bool
}

// NewAttendanceRepository создаёт репозиторий; записи через Atomic
// сериализуются writer-ом.
func NewAttendanceRepository(db *gorm.DB, writer *Writer) AttendanceRepository {
	return &attendanceRepository{db: db, writer: writer}
}

func (r *attendanceRepository) Atomic(ctx context.Context, fn func(ctx context.Context, repo AttendanceRepository) error) error {
	if r.inTx {
		return fn(ctx, r)
	}

	return write(ctx, r.db, r.writer, func(ctx context.Context, tx *gorm.DB) error {
		return fn(ctx, &attendanceRepository{db: tx, inTx: true})
	})
}

// EmployeeExists проверяет сотрудника в той же транзакции, что и запись журнала,
// поэтому проверка и вставка не пересекаются с удалением сотрудника.
func (r *attendanceRepository) EmployeeExists(ctx context.Context, employeeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Employee{}).
		Where("id = ?", employeeID).
		Count(&count).Error
	if err != nil {
		return false, domain.StoreError("attendance.employee_exists", idKey(employeeID), err)
	}
	return count > 0, nil
}

// Insert сохраняет отметки времени в UTC; дата записи уже вычислена вызывающим
func (r *attendanceRepository) Insert(ctx context.Context, rec *domain.AttendanceRecord) (int64, error) {
	rec.CheckInTime = toUTC(rec.CheckInTime)
	rec.CheckOutTime = toUTC(rec.CheckOutTime)

	err := r.db.WithContext(ctx).Create(rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if rec.Status == domain.StatusPresent {
				return 0, domain.ErrSessionAlreadyOpen
			}
			return 0, domain.ErrDuplicateAbsence
		}
		return 0, domain.StoreError("attendance.insert", dayKey(rec.EmployeeID, rec.Date), err)
	}
	return rec.ID, nil
}

// UpdateCheckOut закрывает сессию только если она ещё открыта (compare-and-set)
func (r *attendanceRepository) UpdateCheckOut(ctx context.Context, id int64, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&domain.AttendanceRecord{}).
		Where("id = ? AND status = ? AND check_out_time IS NULL", id, domain.StatusPresent).
		Update("check_out_time", at.UTC())
	if result.Error != nil {
		return domain.StoreError("attendance.update_check_out", idKey(id), result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotCheckedIn
	}
	return nil
}

func (r *attendanceRepository) FindOpenSession(ctx context.Context, employeeID int64, date string) (*domain.AttendanceRecord, bool, error) {
	var records []domain.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND date = ? AND status = ? AND check_out_time IS NULL",
			employeeID, date, domain.StatusPresent).
		Order("check_in_time DESC").
		Order("id DESC").
		Limit(1).
		Find(&records).Error
	if err != nil {
		return nil, false, domain.StoreError("attendance.find_open_session", dayKey(employeeID, date), err)
	}
	if len(records) == 0 {
		return nil, false, nil
	}
	return &records[0], true, nil
}

func (r *attendanceRepository) FindAbsence(ctx context.Context, employeeID int64, date string) (*domain.AttendanceRecord, bool, error) {
	var records []domain.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND date = ? AND status <> ?", employeeID, date, domain.StatusPresent).
		Order("id ASC").
		Limit(1).
		Find(&records).Error
	if err != nil {
		return nil, false, domain.StoreError("attendance.find_absence", dayKey(employeeID, date), err)
	}
	if len(records) == 0 {
		return nil, false, nil
	}
	return &records[0], true, nil
}

func (r *attendanceRepository) QueryByDate(ctx context.Context, date string) ([]domain.DailyEntry, error) {
	query := `
		SELECT ar.id AS record_id, ar.employee_id, e.full_name AS employee_name,
		       ar.check_in_time, ar.check_out_time, ar.status, ar.reason
		FROM attendance_records ar
		JOIN employees e ON ar.employee_id = e.id
		WHERE ar.date = ?
		ORDER BY ar.id ASC
	`

	var entries []domain.DailyEntry
	if err := r.db.WithContext(ctx).Raw(query, date).Scan(&entries).Error; err != nil {
		return nil, domain.StoreError("attendance.query_by_date", "date="+date, err)
	}
	return entries, nil
}

func (r *attendanceRepository) QueryByEmployeeAndDate(ctx context.Context, employeeID int64, date string) ([]domain.AttendanceRecord, error) {
	var records []domain.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND date = ?", employeeID, date).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, domain.StoreError("attendance.query_by_employee", dayKey(employeeID, date), err)
	}
	return records, nil
}

func (r *attendanceRepository) QueryAbsences(ctx context.Context) ([]domain.AbsenceEntry, error) {
	statuses := make([]string, len(domain.AbsenceStatuses))
	for i, s := range domain.AbsenceStatuses {
		statuses[i] = string(s)
	}

	query := `
		SELECT ar.id AS record_id, ar.employee_id, e.full_name AS employee_name,
		       ar.date, ar.status, ar.reason
		FROM attendance_records ar
		JOIN employees e ON ar.employee_id = e.id
		WHERE ar.status IN ?
		ORDER BY ar.date DESC, ar.id DESC
	`

	var entries []domain.AbsenceEntry
	if err := r.db.WithContext(ctx).Raw(query, statuses).Scan(&entries).Error; err != nil {
		return nil, domain.StoreError("attendance.query_absences", "", err)
	}
	return entries, nil
}

func (r *attendanceRepository) CountByEmployee(ctx context.Context, employeeID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.AttendanceRecord{}).
		Where("employee_id = ?", employeeID).
		Count(&count).Error
	if err != nil {
		return 0, domain.StoreError("attendance.count", idKey(employeeID), err)
	}
	return count, nil
}

func toUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func dayKey(employeeID int64, date string) string {
	return "employee_id=" + strconv.FormatInt(employeeID, 10) + " date=" + date
}
