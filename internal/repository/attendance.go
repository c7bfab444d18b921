package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/geo_attendance/internal/models"
	"github.com/shenikar/geo_attendance/internal/service"
)

type AttendanceRepository struct {
	db *pgxpool.Pool
}

func NewAttendanceRepository(db *pgxpool.Pool) service.AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `id, user_id, geofence_id, latitude, longitude, distance_meters, status, window_key, recorded_at`

// Insert сохраняет запись посещаемости. Уникальный индекс по (user_id, window_key)
// для PRESENT не дает сохранить вторую отметку в том же окне.
func (r *AttendanceRepository) Insert(ctx context.Context, record *models.AttendanceRecord) error {
	query := `
		INSERT INTO attendance_records (id, user_id, geofence_id, latitude, longitude, distance_meters, status, window_key, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.db.Exec(ctx, query,
		record.ID,
		record.UserID,
		record.GeofenceID,
		record.Latitude,
		record.Longitude,
		record.DistanceMeters,
		record.Status,
		record.WindowKey,
		record.Timestamp,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s in window %s: %w", record.UserID, record.WindowKey, service.ErrDuplicateRecord)
		}
		return fmt.Errorf("failed to insert attendance record: %w", err)
	}
	return nil
}

// ListForUserInWindow возвращает записи пользователя в полуинтервале [start, end)
func (r *AttendanceRepository) ListForUserInWindow(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.AttendanceRecord, error) {
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE user_id = $1 AND recorded_at >= $2 AND recorded_at < $3
		ORDER BY recorded_at;
	`
	records, err := r.queryRecords(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance in window: %w", err)
	}

	result := make([]models.AttendanceRecord, 0, len(records))
	for _, record := range records {
		result = append(result, *record)
	}
	return result, nil
}

// ListForUser возвращает историю пользователя, новые записи первыми
func (r *AttendanceRepository) ListForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*models.AttendanceRecord, error) {
	offset := (page - 1) * pageSize
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE user_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2 OFFSET $3;
	`
	records, err := r.queryRecords(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for user: %w", err)
	}
	return records, nil
}

// ListByWindowKey возвращает все записи за окно
func (r *AttendanceRepository) ListByWindowKey(ctx context.Context, windowKey string, page, pageSize int) ([]*models.AttendanceRecord, error) {
	offset := (page - 1) * pageSize
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE window_key = $1
		ORDER BY recorded_at DESC
		LIMIT $2 OFFSET $3;
	`
	records, err := r.queryRecords(ctx, query, windowKey, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance by window: %w", err)
	}
	return records, nil
}

// CountPresentUsers возвращает количество уникальных пользователей с PRESENT в окне
func (r *AttendanceRepository) CountPresentUsers(ctx context.Context, windowKey string) (int, error) {
	query := `
		SELECT COUNT(DISTINCT user_id)
		FROM attendance_records
		WHERE window_key = $1 AND status = $2;
	`
	var count int
	if err := r.db.QueryRow(ctx, query, windowKey, models.StatusPresent).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count present users: %w", err)
	}
	return count, nil
}

func (r *AttendanceRepository) queryRecords(ctx context.Context, query string, args ...any) ([]*models.AttendanceRecord, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*models.AttendanceRecord, 0)
	for rows.Next() {
		record, err := scanAttendanceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return records, nil
}

func scanAttendanceRecord(row pgx.Row) (*models.AttendanceRecord, error) {
	record := &models.AttendanceRecord{}
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.GeofenceID,
		&record.Latitude,
		&record.Longitude,
		&record.DistanceMeters,
		&record.Status,
		&record.WindowKey,
		&record.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	record.Timestamp = record.Timestamp.UTC()
	return record, nil
}
