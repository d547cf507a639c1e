package database

import (
	"context"
	"io/fs"
	"regexp"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/attendance-ledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postgresSchema склеивает Up-части миграций postgres в порядке версий
func postgresSchema(t *testing.T) string {
	t.Helper()

	names, err := fs.Glob(embedMigrations, "migrations/postgres/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		data, err := fs.ReadFile(embedMigrations, name)
		require.NoError(t, err)
		up, _, _ := strings.Cut(string(data), "-- +goose Down")
		b.WriteString(up)
	}
	return b.String()
}

func TestPostgresMigrations_TimestampsKeepZone(t *testing.T) {
	schema := postgresSchema(t)

	for _, column := range []string{"check_in_time", "check_out_time"} {
		re := regexp.MustCompile(`ALTER COLUMN ` + column + ` TYPE TIMESTAMPTZ`)
		assert.Regexp(t, re, schema, "column %s", column)
	}
}

func TestOpenInMemory_RoundTripsInstant(t *testing.T) {
	ctx := context.Background()
	db, err := OpenInMemory(ctx, t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	in := time.Date(2024, 1, 10, 8, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	rec := &domain.AttendanceRecord{
		EmployeeID:  1,
		CheckInTime: &in,
		Status:      domain.StatusPresent,
		Date:        domain.DateOf(in),
	}
	require.NoError(t, db.WithContext(ctx).Create(rec).Error)

	var got domain.AttendanceRecord
	require.NoError(t, db.WithContext(ctx).First(&got, rec.ID).Error)
	require.NotNil(t, got.CheckInTime)
	assert.True(t, got.CheckInTime.Equal(in))
}
