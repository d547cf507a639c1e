package service

import (
	"context"
	"strings"
	"time"

	"github.com/attendance-ledger/internal/domain"
	"github.com/attendance-ledger/internal/dto"
	"github.com/attendance-ledger/internal/repository"
)

// timestampLayouts - допустимые форматы ISO 8601 для явной отметки времени
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// LedgerService - журнал посещаемости и отсутствий.
// Единственный владелец инвариантов: одна открытая сессия на сотрудника в день,
// выход не раньше входа, одно отсутствие на сотрудника в день.
type LedgerService interface {
	CheckIn(ctx context.Context, req *dto.CheckRequest) (*domain.AttendanceRecord, error)
	CheckOut(ctx context.Context, req *dto.CheckRequest) (*domain.AttendanceRecord, error)
	RecordAbsence(ctx context.Context, req *dto.RecordAbsenceRequest) (*domain.AttendanceRecord, error)
	TodaysRecords(ctx context.Context, date string) ([]domain.DailyEntry, error)
	EmployeeRecords(ctx context.Context, employeeID int64, date string) ([]domain.AttendanceRecord, error)
	AllAbsences(ctx context.Context) ([]domain.AbsenceEntry, error)
	ResolveDate(raw string) (string, error)
}

type ledgerService struct {
	attRepo repository.AttendanceRepository
	empRepo repository.EmployeeRepository
	clock   Clock
}

// NewLedgerService создаёт новый экземпляр сервиса
func NewLedgerService(attRepo repository.AttendanceRepository, empRepo repository.EmployeeRepository, clock Clock) LedgerService {
	if clock == nil {
		clock = SystemClock
	}
	return &ledgerService{
		attRepo: attRepo,
		empRepo: empRepo,
		clock:   clock,
	}
}

func (s *ledgerService) CheckIn(ctx context.Context, req *dto.CheckRequest) (*domain.AttendanceRecord, error) {
	if req.EmployeeID <= 0 {
		return nil, domain.ErrInvalidEmployeeID
	}
	at, err := s.resolveTime(req.At)
	if err != nil {
		return nil, err
	}

	rec := &domain.AttendanceRecord{
		EmployeeID:  req.EmployeeID,
		CheckInTime: &at,
		Status:      domain.StatusPresent,
		Date:        domain.DateOf(at),
	}

	err = s.attRepo.Atomic(ctx, func(ctx context.Context, repo repository.AttendanceRepository) error {
		if err := employeeInTx(ctx, repo, rec.EmployeeID); err != nil {
			return err
		}
		_, found, err := repo.FindOpenSession(ctx, rec.EmployeeID, rec.Date)
		if err != nil {
			return err
		}
		if found {
			return domain.ErrSessionAlreadyOpen
		}
		_, err = repo.Insert(ctx, rec)
		return err
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

func (s *ledgerService) CheckOut(ctx context.Context, req *dto.CheckRequest) (*domain.AttendanceRecord, error) {
	if req.EmployeeID <= 0 {
		return nil, domain.ErrInvalidEmployeeID
	}
	at, err := s.resolveTime(req.At)
	if err != nil {
		return nil, err
	}

	date := domain.DateOf(at)

	var closed *domain.AttendanceRecord
	err = s.attRepo.Atomic(ctx, func(ctx context.Context, repo repository.AttendanceRepository) error {
		if err := employeeInTx(ctx, repo, req.EmployeeID); err != nil {
			return err
		}
		open, found, err := repo.FindOpenSession(ctx, req.EmployeeID, date)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrNotCheckedIn
		}
		if open.CheckInTime != nil && at.Before(*open.CheckInTime) {
			return domain.ErrCheckOutBeforeCheckIn
		}
		if err := repo.UpdateCheckOut(ctx, open.ID, at); err != nil {
			return err
		}
		open.CheckOutTime = &at
		closed = open
		return nil
	})
	if err != nil {
		return nil, err
	}

	return closed, nil
}

// RecordAbsence создаёт запись отсутствия; отметки времени всегда пустые
func (s *ledgerService) RecordAbsence(ctx context.Context, req *dto.RecordAbsenceRequest) (*domain.AttendanceRecord, error) {
	status := domain.Status(req.Status)
	if !status.IsAbsence() {
		return nil, domain.ErrInvalidStatus
	}
	if req.EmployeeID <= 0 {
		return nil, domain.ErrInvalidEmployeeID
	}
	date, err := normalizeDate(req.Date)
	if err != nil {
		return nil, err
	}

	rec := &domain.AttendanceRecord{
		EmployeeID: req.EmployeeID,
		Status:     status,
		Date:       date,
	}
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		rec.Reason = &reason
	}

	err = s.attRepo.Atomic(ctx, func(ctx context.Context, repo repository.AttendanceRepository) error {
		if err := employeeInTx(ctx, repo, rec.EmployeeID); err != nil {
			return err
		}
		_, found, err := repo.FindAbsence(ctx, rec.EmployeeID, rec.Date)
		if err != nil {
			return err
		}
		if found {
			return domain.ErrDuplicateAbsence
		}
		_, err = repo.Insert(ctx, rec)
		return err
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// TodaysRecords возвращает записи за день с вычисленными часами работы.
// Пустая дата означает сегодняшний день по часам сервиса.
func (s *ledgerService) TodaysRecords(ctx context.Context, date string) ([]domain.DailyEntry, error) {
	date, err := s.ResolveDate(date)
	if err != nil {
		return nil, err
	}

	entries, err := s.attRepo.QueryByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].WorkHours = domain.WorkHours(entries[i].CheckInTime, entries[i].CheckOutTime)
	}
	return entries, nil
}

func (s *ledgerService) EmployeeRecords(ctx context.Context, employeeID int64, date string) ([]domain.AttendanceRecord, error) {
	date, err := s.ResolveDate(date)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.attRepo.QueryByEmployeeAndDate(ctx, employeeID, date)
}

// AllAbsences возвращает отсутствия, от новых дат к старым
func (s *ledgerService) AllAbsences(ctx context.Context) ([]domain.AbsenceEntry, error) {
	return s.attRepo.QueryAbsences(ctx)
}

// ResolveDate нормализует день запроса; пустая строка - сегодня по часам сервиса
func (s *ledgerService) ResolveDate(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.DateOf(s.clock.Now()), nil
	}
	return normalizeDate(raw)
}

// employeeInTx проверяет сотрудника внутри транзакции записи
func employeeInTx(ctx context.Context, repo repository.AttendanceRepository, id int64) error {
	exists, err := repo.EmployeeExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

func (s *ledgerService) ensureEmployee(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidEmployeeID
	}
	_, err := s.empRepo.GetByID(ctx, id)
	return err
}

func (s *ledgerService) resolveTime(raw *string) (time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return s.clock.Now().Truncate(time.Second), nil
	}
	return parseTimestamp(*raw)
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, domain.ErrInvalidTimestamp
}

func normalizeDate(raw string) (string, error) {
	d, err := time.Parse(domain.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", domain.ErrInvalidDate
	}
	return d.Format(domain.DateLayout), nil
}
