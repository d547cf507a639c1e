package service_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/attendance-ledger/internal/database"
	"github.com/attendance-ledger/internal/domain"
	"github.com/attendance-ledger/internal/dto"
	"github.com/attendance-ledger/internal/repository"
	"github.com/attendance-ledger/internal/service"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeClock - управляемые часы для детерминированных отметок
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type testEnv struct {
	db        *gorm.DB
	empRepo   repository.EmployeeRepository
	attRepo   repository.AttendanceRepository
	employees service.EmployeeService
	ledger    service.LedgerService
	notifier  *service.Notifier
	clock     *fakeClock
}

// newTestEnv поднимает in-memory SQLite с production-миграциями,
// писателя и оба сервиса. Всё закрывается по завершении теста.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenInMemory(context.Background(), name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	w := repository.NewWriter(db)
	t.Cleanup(w.Close)

	clock := newFakeClock(time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC))
	notifier := service.NewNotifier(16)
	empRepo := repository.NewEmployeeRepository(db, w)
	attRepo := repository.NewAttendanceRepository(db, w)

	return &testEnv{
		db:        db,
		empRepo:   empRepo,
		attRepo:   attRepo,
		employees: service.NewEmployeeService(empRepo, notifier, clock, service.DeleteModeRestrict),
		ledger:    service.NewLedgerService(attRepo, empRepo, clock),
		notifier:  notifier,
		clock:     clock,
	}
}

func (e *testEnv) addEmployee(t *testing.T, name string) *domain.Employee {
	t.Helper()
	emp, err := e.employees.Create(context.Background(), &dto.CreateEmployeeRequest{
		FullName:   name,
		Position:   "Engineer",
		Department: "R&D",
	})
	require.NoError(t, err)
	return emp
}

func at(s string) *string { return &s }
