package handler_test

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/attendance-ledger/internal/domain"
	"github.com/attendance-ledger/internal/repository"
)

type mockEmployeeRepo struct {
	mu        sync.Mutex
	employees map[int64]*domain.Employee
	nextID    int64
	att       *mockAttendanceRepo
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{
		employees: make(map[int64]*domain.Employee),
		nextID:    1,
	}
}

func (m *mockEmployeeRepo) Create(ctx context.Context, emp *domain.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	emp.ID = m.nextID
	m.nextID++
	cp := *emp
	m.employees[emp.ID] = &cp
	return nil
}

func (m *mockEmployeeRepo) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if emp, ok := m.employees[id]; ok {
		cp := *emp
		return &cp, nil
	}
	return nil, domain.ErrEmployeeNotFound
}

func (m *mockEmployeeRepo) List(ctx context.Context) ([]domain.Employee, error) {
	return m.filter(func(domain.Employee) bool { return true }), nil
}

func (m *mockEmployeeRepo) Search(ctx context.Context, term string) ([]domain.Employee, error) {
	id, idErr := strconv.ParseInt(term, 10, 64)
	return m.filter(func(e domain.Employee) bool {
		return strings.Contains(e.FullName, term) || (idErr == nil && e.ID == id)
	}), nil
}

func (m *mockEmployeeRepo) Update(ctx context.Context, emp *domain.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[emp.ID]; !ok {
		return domain.ErrEmployeeNotFound
	}
	cp := *emp
	m.employees[emp.ID] = &cp
	return nil
}

func (m *mockEmployeeRepo) DeleteIfNoAttendance(ctx context.Context, id int64) error {
	if m.att != nil {
		m.att.txMu.Lock()
		defer m.att.txMu.Unlock()
		if n, _ := m.att.CountByEmployee(ctx, id); n > 0 {
			return domain.ErrEmployeeHasAttendance
		}
	}
	return m.remove(id)
}

func (m *mockEmployeeRepo) DeleteWithAttendance(ctx context.Context, id int64) error {
	if m.att != nil {
		m.att.txMu.Lock()
		defer m.att.txMu.Unlock()
		m.att.deleteByEmployee(id)
	}
	return m.remove(id)
}

func (m *mockEmployeeRepo) remove(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[id]; !ok {
		return domain.ErrEmployeeNotFound
	}
	delete(m.employees, id)
	return nil
}

func (m *mockEmployeeRepo) filter(keep func(domain.Employee) bool) []domain.Employee {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Employee
	for _, emp := range m.employees {
		if keep(*emp) {
			result = append(result, *emp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (m *mockEmployeeRepo) name(id int64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	emp, ok := m.employees[id]
	if !ok {
		return "", false
	}
	return emp.FullName, true
}

// mockAttendanceRepo хранит журнал в памяти. txMu сериализует Atomic,
// mu защищает данные.
type mockAttendanceRepo struct {
	txMu    sync.Mutex
	mu      sync.Mutex
	records []domain.AttendanceRecord
	nextID  int64
	emps    *mockEmployeeRepo
	failErr error
}

func newMockAttendanceRepo(emps *mockEmployeeRepo) *mockAttendanceRepo {
	return &mockAttendanceRepo{nextID: 1, emps: emps}
}

func (m *mockAttendanceRepo) Atomic(ctx context.Context, fn func(ctx context.Context, repo repository.AttendanceRepository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, m)
}

func (m *mockAttendanceRepo) Insert(ctx context.Context, rec *domain.AttendanceRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = m.nextID
	m.nextID++
	m.records = append(m.records, *rec)
	return rec.ID, nil
}

func (m *mockAttendanceRepo) UpdateCheckOut(ctx context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		r := &m.records[i]
		if r.ID == id && r.Status == domain.StatusPresent && r.CheckOutTime == nil {
			r.CheckOutTime = &at
			return nil
		}
	}
	return domain.ErrNotCheckedIn
}

func (m *mockAttendanceRepo) FindOpenSession(ctx context.Context, employeeID int64, date string) (*domain.AttendanceRecord, bool, error) {
	return m.find(func(r domain.AttendanceRecord) bool {
		return r.EmployeeID == employeeID && r.Date == date && r.Status == domain.StatusPresent && r.CheckOutTime == nil
	})
}

func (m *mockAttendanceRepo) FindAbsence(ctx context.Context, employeeID int64, date string) (*domain.AttendanceRecord, bool, error) {
	return m.find(func(r domain.AttendanceRecord) bool {
		return r.EmployeeID == employeeID && r.Date == date && r.Status.IsAbsence()
	})
}

func (m *mockAttendanceRepo) QueryByDate(ctx context.Context, date string) ([]domain.DailyEntry, error) {
	if m.failErr != nil {
		return nil, m.failErr
	}
	var entries []domain.DailyEntry
	for _, r := range m.snapshot() {
		name, ok := m.emps.name(r.EmployeeID)
		if r.Date != date || !ok {
			continue
		}
		entries = append(entries, domain.DailyEntry{
			RecordID:     r.ID,
			EmployeeID:   r.EmployeeID,
			EmployeeName: name,
			CheckInTime:  r.CheckInTime,
			CheckOutTime: r.CheckOutTime,
			Status:       r.Status,
			Reason:       r.Reason,
		})
	}
	return entries, nil
}

func (m *mockAttendanceRepo) QueryByEmployeeAndDate(ctx context.Context, employeeID int64, date string) ([]domain.AttendanceRecord, error) {
	var result []domain.AttendanceRecord
	for _, r := range m.snapshot() {
		if r.EmployeeID == employeeID && r.Date == date {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) QueryAbsences(ctx context.Context) ([]domain.AbsenceEntry, error) {
	if m.failErr != nil {
		return nil, m.failErr
	}
	var entries []domain.AbsenceEntry
	for _, r := range m.snapshot() {
		name, ok := m.emps.name(r.EmployeeID)
		if !r.Status.IsAbsence() || !ok {
			continue
		}
		entries = append(entries, domain.AbsenceEntry{
			RecordID:     r.ID,
			EmployeeID:   r.EmployeeID,
			EmployeeName: name,
			Date:         r.Date,
			Status:       r.Status,
			Reason:       r.Reason,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date > entries[j].Date
		}
		return entries[i].RecordID > entries[j].RecordID
	})
	return entries, nil
}

func (m *mockAttendanceRepo) CountByEmployee(ctx context.Context, employeeID int64) (int64, error) {
	var n int64
	for _, r := range m.snapshot() {
		if r.EmployeeID == employeeID {
			n++
		}
	}
	return n, nil
}

func (m *mockAttendanceRepo) EmployeeExists(ctx context.Context, employeeID int64) (bool, error) {
	_, ok := m.emps.name(employeeID)
	return ok, nil
}

func (m *mockAttendanceRepo) deleteByEmployee(employeeID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.records[:0]
	for _, r := range m.records {
		if r.EmployeeID != employeeID {
			kept = append(kept, r)
		}
	}
	m.records = kept
}

func (m *mockAttendanceRepo) find(match func(domain.AttendanceRecord) bool) (*domain.AttendanceRecord, bool, error) {
	for _, r := range m.snapshot() {
		if match(r) {
			return &r, true, nil
		}
	}
	return nil, false, nil
}

func (m *mockAttendanceRepo) snapshot() []domain.AttendanceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AttendanceRecord(nil), m.records...)
}
