package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDimensionMismatch  = errors.New("descriptor dimension mismatch")
	ErrNeedsEnrollment    = errors.New("face is not enrolled")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrGeofenceNotFound   = errors.New("geofence not found")
	ErrDuplicateRecord    = errors.New("attendance already recorded for window")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// storageError помечает ошибку хранилища как ErrStorageUnavailable, сохраняя причину
func storageError(op string, err error) error {
	return fmt.Errorf("service: %s: %w: %w", op, ErrStorageUnavailable, err)
}

// isDomainError - ошибки, которые хранилище возвращает осознанно и которые не означают его недоступность
func isDomainError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrUserExists) ||
		errors.Is(err, ErrGeofenceNotFound) ||
		errors.Is(err, ErrDuplicateRecord)
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
