package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/geo_attendance/internal/models"
	"github.com/sirupsen/logrus"
)

// UserRepository определяет контракт для работы с реестром студентов
type UserRepository interface {
	// Create возвращает ErrUserExists, если email уже занят
	Create(ctx context.Context, user *models.User) error
	// GetByID возвращает ErrUserNotFound, если пользователя нет
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateFaceDescriptor(ctx context.Context, id uuid.UUID, descriptor []float32, enrolledAt time.Time) error
}

// UserService определяет контракт управления реестром студентов
type UserService interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type userService struct {
	repo   UserRepository
	logger *logrus.Logger
}

func NewUserService(repo UserRepository, logger *logrus.Logger) UserService {
	return &userService{
		repo:   repo,
		logger: logger,
	}
}

// CreateUser добавляет студента в реестр
func (s *userService) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	log := s.logger.WithFields(logrus.Fields{
		"service": "user",
		"method":  "CreateUser",
		"email":   user.Email,
	})
	log.Info("Attempting to create a new user")

	if err := s.repo.Create(ctx, user); err != nil {
		if isDomainError(err) {
			log.WithError(err).Warn("User already exists")
			return fmt.Errorf("service: could not create user: %w", err)
		}
		log.WithError(err).Error("Failed to create user in repository")
		return storageError("could not create user", err)
	}

	log.WithField("user_id", user.ID).Info("User created successfully")
	return nil
}

// GetUser получает студента по ID
func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "user",
		"method":  "GetUser",
		"user_id": id,
	})

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isDomainError(err) {
			log.WithError(err).Warn("User not found")
			return nil, fmt.Errorf("service: could not get user: %w", err)
		}
		log.WithError(err).Error("Failed to get user in repository")
		return nil, storageError("could not get user", err)
	}
	return user, nil
}
