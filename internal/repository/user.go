package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/shenikar/geo_attendance/internal/models"
	"github.com/shenikar/geo_attendance/internal/service"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) service.UserRepository {
	return &UserRepository{db: db}
}

// Create добавляет студента, email уникален
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email)
		VALUES ($1, $2) RETURNING id, created_at;
	`
	err := r.db.QueryRow(ctx, query, user.Name, user.Email).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user with email %s: %w", user.Email, service.ErrUserExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID возвращает студента вместе с сохраненным дескриптором лица
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, name, email, face_descriptor, face_enrolled_at, created_at
		FROM users
		WHERE id = $1;
	`
	user := &models.User{}
	var descriptor *pgvector.Vector
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&descriptor,
		&user.FaceEnrolledAt,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s: %w", id, service.ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	if descriptor != nil {
		user.FaceDescriptor = descriptor.Slice()
	}
	return user, nil
}

// UpdateFaceDescriptor перезаписывает дескриптор лица студента
func (r *UserRepository) UpdateFaceDescriptor(ctx context.Context, id uuid.UUID, descriptor []float32, enrolledAt time.Time) error {
	query := `
		UPDATE users SET
			face_descriptor = $1,
			face_enrolled_at = $2
		WHERE id = $3;
	`
	cmdTag, err := r.db.Exec(ctx, query, pgvector.NewVector(descriptor), enrolledAt, id)
	if err != nil {
		return fmt.Errorf("failed to update face descriptor: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user with id %s not found for enrollment: %w", id, service.ErrUserNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
