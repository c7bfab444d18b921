package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/geo_attendance/internal/models"
	"github.com/sirupsen/logrus"
)

// GeofenceRepository определяет контракт для работы с бд геозон
type GeofenceRepository interface {
	Create(ctx context.Context, geofence *models.Geofence) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Geofence, error)
	Update(ctx context.Context, geofence *models.Geofence) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListGeofences(ctx context.Context, page, pageSize int) ([]*models.Geofence, error)
	ListActive(ctx context.Context) ([]models.Geofence, error)
	GetActiveFromCache(ctx context.Context) ([]models.Geofence, bool, error)
	SetActiveCache(ctx context.Context, geofences []models.Geofence) error
	InvalidateActiveCache(ctx context.Context) error
}

// GeofenceService определяет контракт бизнес-логики управления геозонами
type GeofenceService interface {
	CreateGeofence(ctx context.Context, geofence *models.Geofence) error
	GetGeofence(ctx context.Context, id uuid.UUID) (*models.Geofence, error)
	UpdateGeofence(ctx context.Context, update models.GeofenceUpdate) (*models.Geofence, error)
	DeactivateGeofence(ctx context.Context, id uuid.UUID) error
	ListGeofences(ctx context.Context, page, pageSize int) ([]*models.Geofence, error)
	ActiveGeofences(ctx context.Context) ([]models.Geofence, error)
}

type geofenceService struct {
	repo   GeofenceRepository
	logger *logrus.Logger
}

func NewGeofenceService(repo GeofenceRepository, logger *logrus.Logger) GeofenceService {
	return &geofenceService{
		repo:   repo,
		logger: logger,
	}
}

// CreateGeofence создает активную геозону
func (s *geofenceService) CreateGeofence(ctx context.Context, geofence *models.Geofence) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "geofence",
		"method":  "CreateGeofence",
		"name":    geofence.Name,
	})
	log.Info("Attempting to create a new geofence")

	if err := geofence.Fence().Validate(); err != nil {
		log.WithError(err).Warn("Rejected invalid geofence")
		return fmt.Errorf("service: %w: %w", ErrInvalidInput, err)
	}

	geofence.Active = true
	if err := s.repo.Create(ctx, geofence); err != nil {
		log.WithError(err).Error("Failed to create geofence in repository")
		return storageError("could not create geofence", err)
	}

	s.invalidateCache(ctx, log)
	log.WithField("geofence_id", geofence.ID).Info("Geofence created successfully")
	return nil
}

// GetGeofence получает геозону по ID
func (s *geofenceService) GetGeofence(ctx context.Context, id uuid.UUID) (*models.Geofence, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "geofence",
		"method":      "GetGeofence",
		"geofence_id": id,
	})
	log.Info("Fetching geofence by ID")

	geofence, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to get geofence in repository")
		if isDomainError(err) {
			return nil, fmt.Errorf("service: could not get geofence: %w", err)
		}
		return nil, storageError("could not get geofence", err)
	}

	log.Info("Geofence fetched successfully")
	return geofence, nil
}

// UpdateGeofence обновляет существующую геозону. Состояние active меняется, только если оно передано.
func (s *geofenceService) UpdateGeofence(ctx context.Context, update models.GeofenceUpdate) (*models.Geofence, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "geofence",
		"method":      "UpdateGeofence",
		"geofence_id": update.ID,
	})
	log.Info("Attempting to update geofence")

	candidate := models.Geofence{
		ID:           update.ID,
		Name:         update.Name,
		Latitude:     update.Latitude,
		Longitude:    update.Longitude,
		RadiusMeters: update.RadiusMeters,
	}
	if err := candidate.Fence().Validate(); err != nil {
		log.WithError(err).Warn("Rejected invalid geofence")
		return nil, fmt.Errorf("service: %w: %w", ErrInvalidInput, err)
	}

	existing, err := s.repo.GetByID(ctx, update.ID)
	if err != nil {
		log.WithError(err).Warn("Attempted to update a non-existent geofence")
		if isDomainError(err) {
			return nil, fmt.Errorf("service: geofence with id %s not found for update: %w", update.ID, err)
		}
		return nil, storageError("could not load geofence for update", err)
	}

	existing.Name = update.Name
	existing.Latitude = update.Latitude
	existing.Longitude = update.Longitude
	existing.RadiusMeters = update.RadiusMeters
	if update.Active != nil {
		existing.Active = *update.Active
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		log.WithError(err).Error("Failed to update geofence in repository")
		return nil, storageError("could not update geofence", err)
	}

	s.invalidateCache(ctx, log)
	log.Info("Geofence updated successfully")
	return existing, nil
}

// DeactivateGeofence деактивирует геозону, записи посещаемости на нее сохраняются
func (s *geofenceService) DeactivateGeofence(ctx context.Context, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "geofence",
		"method":      "DeactivateGeofence",
		"geofence_id": id,
	})
	log.Info("Attempting to deactivate geofence")

	if err := s.repo.Delete(ctx, id); err != nil {
		log.WithError(err).Error("Failed to deactivate geofence in repository")
		if isDomainError(err) {
			return fmt.Errorf("service: could not deactivate geofence: %w", err)
		}
		return storageError("could not deactivate geofence", err)
	}

	s.invalidateCache(ctx, log)
	log.Info("Geofence deactivated successfully")
	return nil
}

// ListGeofences возвращает список геозон с пагинацией
func (s *geofenceService) ListGeofences(ctx context.Context, page, pageSize int) ([]*models.Geofence, error) {
	page, pageSize = normalizePage(page, pageSize)

	log := s.logger.WithFields(logrus.Fields{
		"service":   "geofence",
		"method":    "ListGeofences",
		"page":      page,
		"page_size": pageSize,
	})
	log.Info("Listing geofences")

	geofences, err := s.repo.ListGeofences(ctx, page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list geofences from repository")
		return nil, storageError("could not list geofences", err)
	}

	log.WithField("count", len(geofences)).Info("Geofences listed successfully")
	return geofences, nil
}

// ActiveGeofences возвращает снимок активных геозон, сначала из кеша
func (s *geofenceService) ActiveGeofences(ctx context.Context) ([]models.Geofence, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "geofence",
		"method":  "ActiveGeofences",
	})

	cached, ok, err := s.repo.GetActiveFromCache(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to read active geofences from cache")
	} else if ok {
		log.WithField("count", len(cached)).Debug("Active geofences served from cache")
		return cached, nil
	}

	geofences, err := s.repo.ListActive(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list active geofences from repository")
		return nil, storageError("could not list active geofences", err)
	}

	if err := s.repo.SetActiveCache(ctx, geofences); err != nil {
		log.WithError(err).Warn("Failed to cache active geofences")
	}
	return geofences, nil
}

func (s *geofenceService) invalidateCache(ctx context.Context, log *logrus.Entry) {
	if err := s.repo.InvalidateActiveCache(ctx); err != nil {
		log.WithError(err).Warn("Failed to invalidate active geofences cache")
	}
}
