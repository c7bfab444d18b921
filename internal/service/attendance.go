package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/geo_attendance/internal/attendance"
	"github.com/shenikar/geo_attendance/internal/config"
	"github.com/shenikar/geo_attendance/internal/face"
	"github.com/shenikar/geo_attendance/internal/geo"
	"github.com/shenikar/geo_attendance/internal/models"
	"github.com/shenikar/geo_attendance/internal/webhook"
	"github.com/sirupsen/logrus"
)

// outcomeStorageUnavailable - метка метрики для попыток, не сохраненных из-за хранилища
const outcomeStorageUnavailable = "STORAGE_UNAVAILABLE"

// AttendanceRepository определяет контракт для работы с записями посещаемости
type AttendanceRepository interface {
	// Insert возвращает ErrDuplicateRecord при нарушении уникальности PRESENT в окне
	Insert(ctx context.Context, record *models.AttendanceRecord) error
	ListForUserInWindow(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.AttendanceRecord, error)
	ListForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*models.AttendanceRecord, error)
	ListByWindowKey(ctx context.Context, windowKey string, page, pageSize int) ([]*models.AttendanceRecord, error)
	CountPresentUsers(ctx context.Context, windowKey string) (int, error)
}

// VerificationStore хранит одноразовые подтверждения лица с ограниченным сроком жизни
type VerificationStore interface {
	SaveProof(ctx context.Context, userID uuid.UUID, ttl time.Duration) error
	ConsumeProof(ctx context.Context, userID uuid.UUID) (bool, error)
}

// OutcomeRecorder собирает метрики по исходам
type OutcomeRecorder interface {
	RecordAttempt(outcome string)
	RecordEnrollment()
	RecordVerification(matched bool)
}

// AttendanceService определяет контракт отметки посещаемости и работы с лицом
type AttendanceService interface {
	SubmitAttendance(ctx context.Context, req SubmitRequest) (*SubmitResult, error)
	EnrollFace(ctx context.Context, userID uuid.UUID, descriptor []float32) error
	VerifyFace(ctx context.Context, userID uuid.UUID, descriptor []float32) (*VerifyResult, error)
	History(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*models.AttendanceRecord, error)
	ListByDay(ctx context.Context, windowKey string, page, pageSize int) ([]*models.AttendanceRecord, error)
	Stats(ctx context.Context) (*Stats, error)
}

// SubmitRequest - попытка отметки. Descriptor == nil означает опору на ранее полученное подтверждение.
type SubmitRequest struct {
	UserID     uuid.UUID
	Latitude   float64
	Longitude  float64
	Descriptor []float32
}

// SubmitResult - терминальный исход попытки. Record заполнен, если запись сохранена.
type SubmitResult struct {
	Outcome      attendance.Outcome
	Record       *models.AttendanceRecord
	LocationName string
	Reason       string
}

// VerifyResult - итог проверки лица
type VerifyResult struct {
	Matched   bool
	Distance  float64
	ExpiresAt time.Time
}

// Stats - статистика по текущему окну
type Stats struct {
	WindowKey    string
	PresentUsers int
}

type attendanceService struct {
	users     UserRepository
	geofences GeofenceService
	records   AttendanceRepository
	proofs    VerificationStore
	publisher webhook.WebhookPublisher
	metrics   OutcomeRecorder
	evaluator *attendance.Evaluator
	matcher   *face.Matcher
	policy    *attendance.DailyPolicy
	cfg       *config.Config
	logger    *logrus.Logger
	now       func() time.Time
}

func NewAttendanceService(
	users UserRepository,
	geofences GeofenceService,
	records AttendanceRepository,
	proofs VerificationStore,
	publisher webhook.WebhookPublisher,
	metrics OutcomeRecorder,
	logger *logrus.Logger,
	cfg *config.Config,
) AttendanceService {
	matcher := face.NewMatcher(cfg.FaceMatchThreshold)
	return &attendanceService{
		users:     users,
		geofences: geofences,
		records:   records,
		proofs:    proofs,
		publisher: publisher,
		metrics:   metrics,
		evaluator: attendance.NewEvaluator(matcher, cfg.FaceDescriptorLength),
		matcher:   matcher,
		policy:    attendance.NewDailyPolicy(cfg.AttendanceTimezone),
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// SubmitAttendance проводит попытку через проверки и сохраняет запись, если до нее дошло
func (s *attendanceService) SubmitAttendance(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "attendance",
		"method":  "SubmitAttendance",
		"user_id": req.UserID,
	})
	log.Info("Processing attendance attempt")

	location := geo.Point{Latitude: req.Latitude, Longitude: req.Longitude}

	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, s.failStorage(log, "could not load user", err)
	}

	now := s.now()
	window := s.policy.WindowAt(now)

	// геозоны и окно нужны только для корректной точки
	var (
		fences []models.Geofence
		prior  []models.AttendanceRecord
	)
	if location.Validate() == nil {
		fences, err = s.geofences.ActiveGeofences(ctx)
		if err != nil {
			return nil, s.failStorage(log, "could not load geofences", err)
		}
		prior, err = s.records.ListForUserInWindow(ctx, user.ID, window.Start, window.End)
		if err != nil {
			return nil, s.failStorage(log, "could not load attendance window", err)
		}
	}

	// подтверждение тратится последним, после всех чтений
	verified := false
	if user.FaceEnrolled() && req.Descriptor == nil {
		verified, err = s.proofs.ConsumeProof(ctx, user.ID)
		if err != nil {
			return nil, s.failStorage(log, "could not consume face verification proof", err)
		}
	}

	decision := s.evaluator.Evaluate(attendance.Attempt{
		UserID:   user.ID,
		Location: location,
		Captured: req.Descriptor,
		Verified: verified,
		Enrolled: user.FaceDescriptor,
		Fences:   fences,
		Prior:    prior,
		Window:   window,
		Now:      now,
	})

	result := &SubmitResult{Outcome: decision.Outcome, Reason: decision.Reason}
	if decision.Geofence != nil {
		result.LocationName = decision.Geofence.Name
	}
	if decision.Record == nil {
		if verified && decision.Outcome == attendance.OutcomeInvalidInput {
			s.restoreProof(ctx, log, user.ID)
		}
		log.WithField("outcome", decision.Outcome).WithField("stage", decision.Stage).Info("Attendance attempt rejected")
		return s.finish(result), nil
	}

	if err := s.records.Insert(ctx, decision.Record); err != nil {
		if errors.Is(err, ErrDuplicateRecord) {
			// конкурентная попытка успела сохранить PRESENT в этом окне
			log.WithError(err).Warn("Concurrent attendance detected by store constraint")
			result.Outcome = attendance.OutcomeDuplicateAttendance
			result.LocationName = ""
			result.Reason = "attendance already marked in window " + window.Key
			return s.finish(result), nil
		}
		if verified {
			s.restoreProof(ctx, log, user.ID)
		}
		return nil, s.failStorage(log, "could not save attendance record", err)
	}
	result.Record = decision.Record

	s.publish(ctx, log, result)
	log.WithFields(logrus.Fields{
		"outcome":   result.Outcome,
		"record_id": decision.Record.ID,
	}).Info("Attendance record saved")
	return s.finish(result), nil
}

func (s *attendanceService) finish(result *SubmitResult) *SubmitResult {
	s.metrics.RecordAttempt(string(result.Outcome))
	return result
}

func (s *attendanceService) failStorage(log *logrus.Entry, op string, err error) error {
	if isDomainError(err) {
		log.WithError(err).Warn("Attendance attempt rejected by store")
		return fmt.Errorf("service: %s: %w", op, err)
	}
	log.WithError(err).Error("Storage failure during attendance attempt")
	s.metrics.RecordAttempt(outcomeStorageUnavailable)
	return storageError(op, err)
}

// restoreProof возвращает потраченное подтверждение, если попытка не была сохранена
func (s *attendanceService) restoreProof(ctx context.Context, log *logrus.Entry, userID uuid.UUID) {
	if err := s.proofs.SaveProof(ctx, userID, s.cfg.FaceVerificationTTL); err != nil {
		log.WithError(err).Error("Failed to restore face verification proof")
		return
	}
	log.Info("Face verification proof restored")
}

func (s *attendanceService) publish(ctx context.Context, log *logrus.Entry, result *SubmitResult) {
	r := result.Record
	event := webhook.AttendanceEvent{
		RecordID:     r.ID,
		UserID:       r.UserID,
		GeofenceID:   r.GeofenceID,
		LocationName: result.LocationName,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		Status:       string(r.Status),
		Timestamp:    r.Timestamp,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.WithError(err).Warn("Failed to publish attendance webhook event")
	}
}

// EnrollFace сохраняет дескриптор лица пользователя, перезаписывая прежний
func (s *attendanceService) EnrollFace(ctx context.Context, userID uuid.UUID, descriptor []float32) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "attendance",
		"method":  "EnrollFace",
		"user_id": userID,
	})
	log.Info("Enrolling face descriptor")

	if err := face.Descriptor(descriptor).Validate(s.cfg.FaceDescriptorLength); err != nil {
		log.WithError(err).Warn("Rejected invalid face descriptor")
		return fmt.Errorf("service: %w: %w", ErrInvalidInput, err)
	}

	if err := s.users.UpdateFaceDescriptor(ctx, userID, descriptor, s.now().UTC()); err != nil {
		if isDomainError(err) {
			log.WithError(err).Warn("Attempted to enroll face for a non-existent user")
			return fmt.Errorf("service: could not enroll face: %w", err)
		}
		log.WithError(err).Error("Failed to save face descriptor")
		return storageError("could not enroll face", err)
	}

	s.metrics.RecordEnrollment()
	log.Info("Face enrolled successfully")
	return nil
}

// VerifyFace сравнивает свежий дескриптор с сохраненным и при совпадении выдает одноразовое подтверждение
func (s *attendanceService) VerifyFace(ctx context.Context, userID uuid.UUID, descriptor []float32) (*VerifyResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "attendance",
		"method":  "VerifyFace",
		"user_id": userID,
	})
	log.Info("Verifying face descriptor")

	if err := face.Descriptor(descriptor).Validate(0); err != nil {
		log.WithError(err).Warn("Rejected invalid face descriptor")
		return nil, fmt.Errorf("service: %w: %w", ErrInvalidInput, err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isDomainError(err) {
			return nil, fmt.Errorf("service: could not verify face: %w", err)
		}
		log.WithError(err).Error("Failed to load user")
		return nil, storageError("could not verify face", err)
	}
	if !user.FaceEnrolled() {
		log.Warn("Face verification requested before enrollment")
		return nil, fmt.Errorf("service: %w", ErrNeedsEnrollment)
	}

	dist, matched, err := s.matcher.Compare(descriptor, user.FaceDescriptor)
	if err != nil {
		log.WithError(err).Warn("Descriptor dimension mismatch")
		return nil, fmt.Errorf("service: %w: %w", ErrDimensionMismatch, err)
	}
	s.metrics.RecordVerification(matched)

	result := &VerifyResult{Matched: matched, Distance: dist}
	if !matched {
		log.WithField("distance", dist).Info("Face does not match")
		return result, nil
	}

	if err := s.proofs.SaveProof(ctx, userID, s.cfg.FaceVerificationTTL); err != nil {
		log.WithError(err).Error("Failed to save face verification proof")
		return nil, storageError("could not save face verification proof", err)
	}
	result.ExpiresAt = s.now().Add(s.cfg.FaceVerificationTTL)

	log.WithField("distance", dist).Info("Face verified")
	return result, nil
}

// History возвращает записи пользователя, новые первыми
func (s *attendanceService) History(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*models.AttendanceRecord, error) {
	page, pageSize = normalizePage(page, pageSize)
	log := s.logger.WithFields(logrus.Fields{
		"service":   "attendance",
		"method":    "History",
		"user_id":   userID,
		"page":      page,
		"page_size": pageSize,
	})

	records, err := s.records.ListForUser(ctx, userID, page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list attendance history")
		return nil, storageError("could not list attendance history", err)
	}
	return records, nil
}

// ListByDay возвращает записи за день с ключом вида 2006-01-02
func (s *attendanceService) ListByDay(ctx context.Context, windowKey string, page, pageSize int) ([]*models.AttendanceRecord, error) {
	page, pageSize = normalizePage(page, pageSize)
	log := s.logger.WithFields(logrus.Fields{
		"service":    "attendance",
		"method":     "ListByDay",
		"window_key": windowKey,
	})

	if windowKey == "" {
		windowKey = s.policy.WindowAt(s.now()).Key
	}
	if _, err := s.policy.WindowForKey(windowKey); err != nil {
		log.WithError(err).Warn("Rejected invalid day")
		return nil, fmt.Errorf("service: %w: %w", ErrInvalidInput, err)
	}

	records, err := s.records.ListByWindowKey(ctx, windowKey, page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list attendance by day")
		return nil, storageError("could not list attendance by day", err)
	}
	return records, nil
}

// Stats возвращает количество уникальных пользователей, отмеченных в текущем окне
func (s *attendanceService) Stats(ctx context.Context) (*Stats, error) {
	window := s.policy.WindowAt(s.now())
	log := s.logger.WithFields(logrus.Fields{
		"service":    "attendance",
		"method":     "Stats",
		"window_key": window.Key,
	})

	count, err := s.records.CountPresentUsers(ctx, window.Key)
	if err != nil {
		log.WithError(err).Error("Failed to count present users")
		return nil, storageError("could not get stats", err)
	}
	return &Stats{WindowKey: window.Key, PresentUsers: count}, nil
}
