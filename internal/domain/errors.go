package domain

import (
	"errors"
	"fmt"
)

// Категории ошибок. Конкретные ошибки оборачивают одну из них,
// поэтому вызывающий код проверяет категорию через errors.Is.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrNoOpenSession    = errors.New("no open session")
	ErrConflict         = errors.New("conflict")
	ErrInvalidTime      = errors.New("invalid time")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Определение бизнес-ошибок
var (
	ErrEmptyName             = fmt.Errorf("%w: full name is required", ErrValidation)
	ErrNameTooLong           = fmt.Errorf("%w: full name must be at most 200 characters", ErrValidation)
	ErrInvalidStatus         = fmt.Errorf("%w: status must be one of Sick, Leave, Vacation", ErrValidation)
	ErrInvalidDate           = fmt.Errorf("%w: date must be in YYYY-MM-DD format", ErrValidation)
	ErrInvalidTimestamp      = fmt.Errorf("%w: timestamp must be ISO 8601", ErrValidation)
	ErrInvalidEmployeeID     = fmt.Errorf("%w: employee id must be positive", ErrValidation)
	ErrInvalidDeleteMode     = fmt.Errorf("%w: delete mode must be restrict or cascade", ErrValidation)
	ErrEmployeeNotFound      = fmt.Errorf("employee %w", ErrNotFound)
	ErrNotCheckedIn          = fmt.Errorf("%w: employee has not checked in on this day", ErrNoOpenSession)
	ErrSessionAlreadyOpen    = fmt.Errorf("%w: employee already has an open session on this day", ErrConflict)
	ErrDuplicateAbsence      = fmt.Errorf("%w: absence already recorded for this day", ErrConflict)
	ErrEmployeeHasAttendance = fmt.Errorf("%w: employee has attendance history", ErrConflict)
	ErrCheckOutBeforeCheckIn = fmt.Errorf("%w: check-out precedes check-in", ErrInvalidTime)
)

// OpError добавляет к ошибке хранилища операцию и ключ
type OpError struct {
	Op  string
	Key string
	Err error
}

func (e *OpError) Error() string {
	if e.Key == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " [" + e.Key + "]: " + e.Err.Error()
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// StoreError оборачивает сбой хранилища в ErrStoreUnavailable с контекстом операции
func StoreError(op, key string, err error) error {
	return &OpError{Op: op, Key: key, Err: fmt.Errorf("%w: %w", ErrStoreUnavailable, err)}
}
