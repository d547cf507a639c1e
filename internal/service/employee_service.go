package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/attendance-ledger/internal/domain"
	"github.com/attendance-ledger/internal/dto"
	"github.com/attendance-ledger/internal/repository"
)

const (
	DeleteModeRestrict = "restrict"
	DeleteModeCascade  = "cascade"
)

// EmployeeService определяет интерфейс справочника сотрудников
type EmployeeService interface {
	Create(ctx context.Context, req *dto.CreateEmployeeRequest) (*domain.Employee, error)
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	List(ctx context.Context) ([]domain.Employee, error)
	Search(ctx context.Context, term string) ([]domain.Employee, error)
	Update(ctx context.Context, id int64, req *dto.UpdateEmployeeRequest) (*domain.Employee, error)
	Delete(ctx context.Context, id int64, query *dto.DeleteEmployeeQuery) error
}

type employeeService struct {
	empRepo           repository.EmployeeRepository
	notifier          *Notifier
	clock             Clock
	defaultDeleteMode string
}

// NewEmployeeService создаёт новый экземпляр сервиса.
// defaultDeleteMode применяется, когда запрос удаления не указывает режим.
func NewEmployeeService(
	empRepo repository.EmployeeRepository,
	notifier *Notifier,
	clock Clock,
	defaultDeleteMode string,
) EmployeeService {
	if defaultDeleteMode == "" {
		defaultDeleteMode = DeleteModeRestrict
	}
	if clock == nil {
		clock = SystemClock
	}
	return &employeeService{
		empRepo:           empRepo,
		notifier:          notifier,
		clock:             clock,
		defaultDeleteMode: defaultDeleteMode,
	}
}

func (s *employeeService) Create(ctx context.Context, req *dto.CreateEmployeeRequest) (*domain.Employee, error) {
	name, err := validateName(req.FullName)
	if err != nil {
		return nil, err
	}

	emp := &domain.Employee{
		FullName:   name,
		Position:   strings.TrimSpace(req.Position),
		Department: strings.TrimSpace(req.Department),
	}

	if err := s.empRepo.Create(ctx, emp); err != nil {
		return nil, err
	}

	s.publish(emp.ID)
	return emp, nil
}

func (s *employeeService) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	return s.empRepo.GetByID(ctx, id)
}

func (s *employeeService) List(ctx context.Context) ([]domain.Employee, error) {
	return s.empRepo.List(ctx)
}

// Search с пустым термином возвращает весь список
func (s *employeeService) Search(ctx context.Context, term string) ([]domain.Employee, error) {
	if term == "" {
		return s.empRepo.List(ctx)
	}
	return s.empRepo.Search(ctx, term)
}

func (s *employeeService) Update(ctx context.Context, id int64, req *dto.UpdateEmployeeRequest) (*domain.Employee, error) {
	name, err := validateName(req.FullName)
	if err != nil {
		return nil, err
	}

	emp, err := s.empRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	emp.FullName = name
	emp.Position = strings.TrimSpace(req.Position)
	emp.Department = strings.TrimSpace(req.Department)

	if err := s.empRepo.Update(ctx, emp); err != nil {
		return nil, err
	}

	s.publish(emp.ID)
	return emp, nil
}

func (s *employeeService) Delete(ctx context.Context, id int64, query *dto.DeleteEmployeeQuery) error {
	mode := s.defaultDeleteMode
	if query != nil && query.Mode != "" {
		mode = query.Mode
	}

	// Проверяем существование сотрудника
	if _, err := s.empRepo.GetByID(ctx, id); err != nil {
		return err
	}

	switch mode {
	case DeleteModeRestrict:
		if err := s.empRepo.DeleteIfNoAttendance(ctx, id); err != nil {
			return err
		}

	case DeleteModeCascade:
		if err := s.empRepo.DeleteWithAttendance(ctx, id); err != nil {
			return err
		}

	default:
		return domain.ErrInvalidDeleteMode
	}

	s.publish(id)
	return nil
}

func (s *employeeService) publish(employeeID int64) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(Event{
		Name:       EventEmployeesChanged,
		EmployeeID: employeeID,
		At:         s.clock.Now(),
	})
}

func validateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", domain.ErrEmptyName
	}
	if utf8.RuneCountInString(name) > 200 {
		return "", domain.ErrNameTooLong
	}
	return name, nil
}
