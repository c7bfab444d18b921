package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/geo_attendance/internal/models"
	"github.com/shenikar/geo_attendance/internal/service"
)

const activeGeofencesCacheKey = "geofences:active"

type GeofenceRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewGeofenceRepository(db *pgxpool.Pool, redisClient *redis.Client, cacheTTL time.Duration) service.GeofenceRepository {
	return &GeofenceRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

const geofenceColumns = `id, name, latitude, longitude, radius_meters, active, created_at, updated_at`

// Create создает новую геозону в бд
func (r *GeofenceRepository) Create(ctx context.Context, geofence *models.Geofence) error {
	query := `
		INSERT INTO geofences (name, latitude, longitude, radius_meters, active)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		geofence.Name,
		geofence.Latitude,
		geofence.Longitude,
		geofence.RadiusMeters,
		geofence.Active,
	).Scan(&geofence.ID, &geofence.CreatedAt, &geofence.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create geofence: %w", err)
	}
	return nil
}

// GetByID возвращает геозону по ее UUID
func (r *GeofenceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Geofence, error) {
	query := `SELECT ` + geofenceColumns + ` FROM geofences WHERE id = $1;`

	geofence, err := scanGeofence(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("geofence with id %s: %w", id, service.ErrGeofenceNotFound)
		}
		return nil, fmt.Errorf("failed to get geofence by id: %w", err)
	}
	return geofence, nil
}

func (r *GeofenceRepository) Update(ctx context.Context, geofence *models.Geofence) error {
	query := `
		UPDATE geofences SET
			name = $1,
			latitude = $2,
			longitude = $3,
			radius_meters = $4,
			active = $5,
			updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		geofence.Name,
		geofence.Latitude,
		geofence.Longitude,
		geofence.RadiusMeters,
		geofence.Active,
		geofence.ID,
	).Scan(&geofence.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("geofence with id %s not found for update: %w", geofence.ID, service.ErrGeofenceNotFound)
		}
		return fmt.Errorf("failed to update geofence: %w", err)
	}
	return nil
}

// Delete(деактивация) снимает флаг active, записи посещаемости продолжают ссылаться на геозону
func (r *GeofenceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE geofences SET
			active = FALSE,
			updated_at = NOW()
		WHERE id = $1;
	`
	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate geofence: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("geofence with id %s not found for deactivate: %w", id, service.ErrGeofenceNotFound)
	}
	return nil
}

// ListGeofences возвращает список геозон с пагинацией
func (r *GeofenceRepository) ListGeofences(ctx context.Context, page, pageSize int) ([]*models.Geofence, error) {
	offset := (page - 1) * pageSize

	query := `SELECT ` + geofenceColumns + ` FROM geofences ORDER BY created_at DESC LIMIT $1 OFFSET $2;`
	rows, err := r.db.Query(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list geofences: %w", err)
	}
	defer rows.Close()

	geofences := make([]*models.Geofence, 0)
	for rows.Next() {
		geofence, err := scanGeofence(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan geofence row: %w", err)
		}
		geofences = append(geofences, geofence)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return geofences, nil
}

// ListActive возвращает все активные геозоны, порядок по id стабилен между вызовами
func (r *GeofenceRepository) ListActive(ctx context.Context) ([]models.Geofence, error) {
	query := `SELECT ` + geofenceColumns + ` FROM geofences WHERE active ORDER BY id;`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active geofences: %w", err)
	}
	defer rows.Close()

	geofences := make([]models.Geofence, 0)
	for rows.Next() {
		geofence, err := scanGeofence(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan geofence row in ListActive: %w", err)
		}
		geofences = append(geofences, *geofence)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration in ListActive: %w", err)
	}
	return geofences, nil
}

// GetActiveFromCache пытается получить снимок активных геозон из Redis
func (r *GeofenceRepository) GetActiveFromCache(ctx context.Context) ([]models.Geofence, bool, error) {
	val, err := r.redisClient.Get(ctx, activeGeofencesCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get active geofences from cache: %w", err)
	}

	var geofences []models.Geofence
	if err := json.Unmarshal(val, &geofences); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal active geofences from cache: %w", err)
	}
	return geofences, true, nil
}

// SetActiveCache сохраняет снимок активных геозон в Redis
func (r *GeofenceRepository) SetActiveCache(ctx context.Context, geofences []models.Geofence) error {
	val, err := json.Marshal(geofences)
	if err != nil {
		return fmt.Errorf("failed to marshal active geofences for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, activeGeofencesCacheKey, val, r.cacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set active geofences in cache: %w", err)
	}
	return nil
}

// InvalidateActiveCache удаляет снимок активных геозон из Redis
func (r *GeofenceRepository) InvalidateActiveCache(ctx context.Context) error {
	if err := r.redisClient.Del(ctx, activeGeofencesCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate active geofences cache: %w", err)
	}
	return nil
}

func scanGeofence(row pgx.Row) (*models.Geofence, error) {
	geofence := &models.Geofence{}
	err := row.Scan(
		&geofence.ID,
		&geofence.Name,
		&geofence.Latitude,
		&geofence.Longitude,
		&geofence.RadiusMeters,
		&geofence.Active,
		&geofence.CreatedAt,
		&geofence.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return geofence, nil
}
