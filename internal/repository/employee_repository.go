package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/attendance-ledger/internal/domain"
	"gorm.io/gorm"
)

// EmployeeRepository определяет интерфейс для работы с сотрудниками
type EmployeeRepository interface {
	Create(ctx context.Context, emp *domain.Employee) error
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	List(ctx context.Context) ([]domain.Employee, error)
	Search(ctx context.Context, term string) ([]domain.Employee, error)
	Update(ctx context.Context, emp *domain.Employee) error

	// Удаления идут через писателя журнала, поэтому не пересекаются
	// с отметками и отсутствиями этого сотрудника.
	DeleteIfNoAttendance(ctx context.Context, id int64) error
	DeleteWithAttendance(ctx context.Context, id int64) error
}

type employeeRepository struct {
	db     *gorm.DB
	writer *Writer
}

// NewEmployeeRepository создаёт новый экземпляр репозитория
func NewEmployeeRepository(db *gorm.DB, writer *Writer) EmployeeRepository {
	return &employeeRepository{db: db, writer: writer}
}

func (r *employeeRepository) Create(ctx context.Context, emp *domain.Employee) error {
	if err := r.db.WithContext(ctx).Create(emp).Error; err != nil {
		return domain.StoreError("employee.create", "", err)
	}
	return nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	var emp domain.Employee
	err := r.db.WithContext(ctx).First(&emp, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, domain.StoreError("employee.get", idKey(id), err)
	}
	return &emp, nil
}

func (r *employeeRepository) List(ctx context.Context) ([]domain.Employee, error) {
	var employees []domain.Employee
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&employees).Error; err != nil {
		return nil, domain.StoreError("employee.list", "", err)
	}
	return employees, nil
}

// Search ищет по вхождению подстроки в имя (с учётом регистра)
// или по точному совпадению идентификатора.
func (r *employeeRepository) Search(ctx context.Context, term string) ([]domain.Employee, error) {
	query := r.db.WithContext(ctx).Where(r.containsExpr(), term)

	if id, err := strconv.ParseInt(term, 10, 64); err == nil {
		query = query.Or("id = ?", id)
	}

	var employees []domain.Employee
	if err := query.Order("id ASC").Find(&employees).Error; err != nil {
		return nil, domain.StoreError("employee.search", term, err)
	}
	return employees, nil
}

func (r *employeeRepository) Update(ctx context.Context, emp *domain.Employee) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Employee{}).
		Where("id = ?", emp.ID).
		Updates(map[string]any{
			"full_name":  emp.FullName,
			"position":   emp.Position,
			"department": emp.Department,
		})
	if result.Error != nil {
		return domain.StoreError("employee.update", idKey(emp.ID), result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

// DeleteIfNoAttendance удаляет сотрудника, только если у него нет записей журнала
func (r *employeeRepository) DeleteIfNoAttendance(ctx context.Context, id int64) error {
	return write(ctx, r.db, r.writer, func(ctx context.Context, tx *gorm.DB) error {
		var count int64
		err := tx.WithContext(ctx).
			Model(&domain.AttendanceRecord{}).
			Where("employee_id = ?", id).
			Count(&count).Error
		if err != nil {
			return domain.StoreError("employee.delete", idKey(id), err)
		}
		if count > 0 {
			return domain.ErrEmployeeHasAttendance
		}
		return deleteEmployee(ctx, tx, id)
	})
}

// DeleteWithAttendance удаляет сотрудника вместе с его записями журнала
func (r *employeeRepository) DeleteWithAttendance(ctx context.Context, id int64) error {
	return write(ctx, r.db, r.writer, func(ctx context.Context, tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Where("employee_id = ?", id).Delete(&domain.AttendanceRecord{}).Error; err != nil {
			return domain.StoreError("employee.delete_cascade", idKey(id), err)
		}
		return deleteEmployee(ctx, tx, id)
	})
}

func deleteEmployee(ctx context.Context, tx *gorm.DB, id int64) error {
	result := tx.WithContext(ctx).Delete(&domain.Employee{}, id)
	if result.Error != nil {
		return domain.StoreError("employee.delete", idKey(id), result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

func (r *employeeRepository) containsExpr() string {
	if r.db.Dialector.Name() == "postgres" {
		return "strpos(full_name, ?) > 0"
	}
	return "instr(full_name, ?) > 0"
}

func idKey(id int64) string {
	return "id=" + strconv.FormatInt(id, 10)
}
