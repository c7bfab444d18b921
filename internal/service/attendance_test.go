package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/geo_attendance/internal/attendance"
	"github.com/shenikar/geo_attendance/internal/config"
	"github.com/shenikar/geo_attendance/internal/models"
	"github.com/shenikar/geo_attendance/internal/service/mocks"
	"github.com/shenikar/geo_attendance/internal/webhook"
	webhook_mocks "github.com/shenikar/geo_attendance/internal/webhook/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type attendanceMocks struct {
	users     *mocks.MockUserRepository
	geofences *mocks.MockGeofenceService
	records   *mocks.MockAttendanceRepository
	proofs    *mocks.MockVerificationStore
	publisher *webhook_mocks.MockWebhookPublisher
	metrics   *mocks.MockOutcomeRecorder
}

var testNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

// newTestAttendanceService создает сервис с моками и фиксированным временем
func newTestAttendanceService(t *testing.T) (*attendanceService, attendanceMocks) {
	ctrl := gomock.NewController(t)
	m := attendanceMocks{
		users:     mocks.NewMockUserRepository(ctrl),
		geofences: mocks.NewMockGeofenceService(ctrl),
		records:   mocks.NewMockAttendanceRepository(ctrl),
		proofs:    mocks.NewMockVerificationStore(ctrl),
		publisher: webhook_mocks.NewMockWebhookPublisher(ctrl),
		metrics:   mocks.NewMockOutcomeRecorder(ctrl),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		FaceMatchThreshold:   0.6,
		FaceDescriptorLength: 4,
		FaceVerificationTTL:  2 * time.Minute,
		AttendanceTimezone:   time.UTC,
	}

	svc := NewAttendanceService(m.users, m.geofences, m.records, m.proofs, m.publisher, m.metrics, logger, cfg).(*attendanceService)
	svc.now = func() time.Time { return testNow }
	return svc, m
}

func enrolledUser() *models.User {
	return &models.User{
		ID:             uuid.New(),
		Name:           "Ada",
		Email:          "ada@example.edu",
		FaceDescriptor: []float32{0.1, 0.2, 0.3, 0.4},
	}
}

func mainCampus() models.Geofence {
	return models.Geofence{ID: uuid.New(), Name: "Main campus", Latitude: 40, Longitude: -75, RadiusMeters: 100, Active: true}
}

// expectVerifiedAttempt настраивает проход через загрузку пользователя, подтверждение, геозоны и окно
func expectVerifiedAttempt(m attendanceMocks, user *models.User, fences []models.Geofence) {
	m.users.EXPECT().GetByID(gomock.Any(), user.ID).Return(user, nil)
	m.proofs.EXPECT().ConsumeProof(gomock.Any(), user.ID).Return(true, nil)
	m.geofences.EXPECT().ActiveGeofences(gomock.Any()).Return(fences, nil)
	m.records.EXPECT().
		ListForUserInWindow(gomock.Any(), user.ID,
			time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)).
		Return(nil, nil)
}

func TestSubmitAttendance_PresentInsideGeofence(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()
	user := enrolledUser()
	campus := mainCampus()

	// Ожидания
	expectVerifiedAttempt(m, user, []models.Geofence{campus})
	var saved *models.AttendanceRecord
	m.records.EXPECT().
		Insert(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, r *models.AttendanceRecord) error {
			saved = r
			return nil
		}).
		Times(1)
	m.publisher.EXPECT().
		Publish(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, e webhook.AttendanceEvent) error {
			assert.Equal(t, "PRESENT", e.Status)
			assert.Equal(t, "Main campus", e.LocationName)
			return nil
		}).
		Times(1)
	m.metrics.EXPECT().RecordAttempt("PRESENT").Times(1)

	// Действие
	result, err := svc.SubmitAttendance(ctx, SubmitRequest{UserID: user.ID, Latitude: 40.0005, Longitude: -75.0})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, attendance.OutcomePresent, result.Outcome)
	assert.Equal(t, "Main campus", result.LocationName)
	require.NotNil(t, result.Record)
	assert.Same(t, saved, result.Record)
	assert.Equal(t, models.StatusPresent, saved.Status)
	require.NotNil(t, saved.GeofenceID)
	assert.Equal(t, campus.ID, *saved.GeofenceID)
	assert.InDelta(t, 55.6, *saved.DistanceMeters, 0.5)
	assert.Equal(t, "2026-10-18", saved.WindowKey)
	assert.Equal(t, testNow, saved.Timestamp)
}

func TestSubmitAttendance_OutOfRangeStillStored(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()
	user := enrolledUser()

	// Ожидания
	expectVerifiedAttempt(m, user, []models.Geofence{mainCampus()})
	m.records.EXPECT().
		Insert(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, r *models.AttendanceRecord) error {
			assert.Equal(t, models.StatusOutOfRange, r.Status)
			assert.Nil(t, r.GeofenceID)
			return nil
		}).
		Times(1)
	m.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)
	m.metrics.EXPECT().RecordAttempt("OUT_OF_RANGE").Times(1)

	// Действие
	result, err := svc.SubmitAttendance(ctx, SubmitRequest{UserID: user.ID, Latitude: 41.0, Longitude: -75.0})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, attendance.OutcomeOutOfRange, result.Outcome)
	require.NotNil(t, result.Record)
	assert.Empty(t, result.LocationName)
}

func TestSubmitAttendance_CapturedDescriptorSkipsProof(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()
	user := enrolledUser()

	// Ожидания: подтверждение не запрашивается, дескриптор сравнивается напрямую
	m.users.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
	m.geofences.EXPECT().ActiveGeofences(ctx).Return([]models.Geofence{mainCampus()}, nil)
	m.records.EXPECT().ListForUserInWindow(ctx, user.ID, gomock.Any(), gomock.Any()).Return(nil, nil)
	m.records.EXPECT().Insert(ctx, gomock.Any()).Return(nil)
	m.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil)
	m.metrics.EXPECT().RecordAttempt("PRESENT")

	// Действие
	result, err := svc.SubmitAttendance(ctx, SubmitRequest{
		UserID:     user.ID,
		Latitude:   40.0005,
		Longitude:  -75.0,
		Descriptor: []float32{0.1, 0.2, 0.3, 0.45},
	})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, attendance.OutcomePresent, result.Outcome)
}

func TestSubmitAttendance_FaceMismatch(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()
	user := enrolledUser()

	// Ожидания: запись не сохраняется
	m.users.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
	m.geofences.EXPECT().ActiveGeofences(ctx).Return([]models.Geofence{mainCampus()}, nil)
	m.records.EXPECT().ListForUserInWindow(ctx, user.ID, gomock.Any(), gomock.Any()).Return(nil, nil)
	m.metrics.EXPECT().RecordAttempt("FACE_MISMATCH")

	// Действие
	result, err := svc.SubmitAttendance(ctx, SubmitRequest{
		UserID:     user.ID,
		Latitude:   40.0005,
		Longitude:  -75.0,
		Descriptor: []float32{0.9, 0.9, 0.9, 0.9},
	})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, attendance.OutcomeFaceMismatch, result.Outcome)
	assert.Nil(t, result.Record)
}

func TestSubmitAttendance_NeedsEnrollment(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()
	user := enrolledUser()
	user.FaceDescriptor = nil

	// Ожидания: подтверждение не тратится, запись не сохраняется
	m.users.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
	m.geofences.EXPECT().ActiveGeofences(ctx).Return([]models.Geofence{mainCampus()}, nil)
	m.records.EXPECT().ListForUserInWindow(ctx, user.ID, gomock.Any(), gomock.Any()).Return(nil, nil)
	m.metrics.EXPECT().RecordAttempt("NEEDS_ENROLLMENT")

	// Действие
	result, err := svc.SubmitAttendance(ctx, SubmitRequest{UserID: user.ID, Latitude: 40.0005, Longitude: -75.0})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, attendance.OutcomeNeedsEnrollment, result.Outcome)
	assert.Nil(t, result.Record)
}

func TestSubmitAttendance_NeedsFaceVerification(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()
	user := enrolledUser()

	// Ожидания: подтверждения нет или оно истекло
	m.users.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
	m.proofs.EXPECT().ConsumeProof(ctx, user.ID).Return(false, nil)
	m.geofences.EXPECT().ActiveGeofences(ctx).Return([]models.Geofence{mainCampus()}, nil)
	m.records.EXPECT().ListForUserInWindow(ctx, user.ID, gomock.Any(), gomock.Any()).Return(nil, nil)
	m.metrics.EXPECT().RecordAttempt("NEEDS_FACE_VERIFICATION")

	// Действие
	result, err := svc.SubmitAttendance(ctx, SubmitRequest{UserID: user.ID, Latitude: 40.0005, Longitude: -75.0})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, attendance.OutcomeNeedsFaceVerification, result.Outcome)
}

func TestSubmitAttendance_DuplicateInWindow(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()
	user := enrolledUser()
	campus := mainCampus()
	prior := models.AttendanceRecord{
		ID:         uuid.New(),
		UserID:     user.ID,
		GeofenceID: &campus.ID,
		Status:     models.StatusPresent,
		WindowKey:  "2026-10-18",
		Timestamp:  testNow.Add(-time.Hour),
	}

	// Ожидания
	m.users.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
	m.proofs.EXPECT().ConsumeProof(ctx, user.ID).Return(true, nil)
	m.geofences.EXPECT().ActiveGeofences(ctx).Return([]models.Geofence{campus}, nil)
	m.records.EXPECT().ListForUserInWindow(ctx, user.ID, gomock.Any(), gomock.Any()).Return([]models.AttendanceRecord{prior}, nil)
	m.metrics.EXPECT().RecordAttempt("DUPLICATE_ATTENDANCE")

	// Действие
	result, err := svc.SubmitAttendance(ctx, SubmitRequest{UserID: user.ID, Latitude: 40.0005, Longitude: -75.0})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, attendance.OutcomeDuplicateAttendance, result.Outcome)
	assert.Nil(t, result.Record)
}

func TestSubmitAttendance_ConcurrentDuplicateCaughtByStore(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()
	user := enrolledUser()

	// Ожидания: проверка окна прошла, но уникальный индекс отклонил вставку
	expectVerifiedAttempt(m, user, []models.Geofence{mainCampus()})
	m.records.EXPECT().Insert(ctx, gomock.Any()).Return(ErrDuplicateRecord)
	m.metrics.EXPECT().RecordAttempt("DUPLICATE_ATTENDANCE")

	// Действие
	result, err := svc.SubmitAttendance(ctx, SubmitRequest{UserID: user.ID, Latitude: 40.0005, Longitude: -75.0})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, attendance.OutcomeDuplicateAttendance, result.Outcome)
	assert.Nil(t, result.Record)
	assert.Empty(t, result.LocationName)
}

func TestSubmitAttendance_InvalidCoordinates(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()
	user := enrolledUser()

	// Ожидания: геозоны и окно не читаются, подтверждение возвращается
	m.users.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
	m.proofs.EXPECT().ConsumeProof(ctx, user.ID).Return(true, nil)
	m.proofs.EXPECT().SaveProof(ctx, user.ID, 2*time.Minute).Return(nil).Times(1)
	m.metrics.EXPECT().RecordAttempt("INVALID_INPUT")

	// Действие
	result, err := svc.SubmitAttendance(ctx, SubmitRequest{UserID: user.ID, Latitude: 95, Longitude: 0})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, attendance.OutcomeInvalidInput, result.Outcome)
	assert.Nil(t, result.Record)
}

func TestSubmitAttendance_InvalidCoordinatesWithoutEnrollment(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()
	user := enrolledUser()
	user.FaceDescriptor = nil

	// Ожидания
	m.users.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
	m.metrics.EXPECT().RecordAttempt("NEEDS_ENROLLMENT")

	// Действие
	result, err := svc.SubmitAttendance(ctx, SubmitRequest{UserID: user.ID, Latitude: 200, Longitude: -75})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, attendance.OutcomeNeedsEnrollment, result.Outcome)
	assert.Nil(t, result.Record)
}

func TestSubmitAttendance_UserNotFound(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()
	id := uuid.New()

	// Ожидания
	m.users.EXPECT().GetByID(ctx, id).Return(nil, ErrUserNotFound)

	// Действие
	result, err := svc.SubmitAttendance(ctx, SubmitRequest{UserID: id, Latitude: 40, Longitude: -75})

	// Проверки
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NotErrorIs(t, err, ErrStorageUnavailable)
}

func TestSubmitAttendance_StorageUnavailable(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()
	user := enrolledUser()

	// Ожидания: вставка падает, вебхук не публикуется, подтверждение возвращается
	expectVerifiedAttempt(m, user, []models.Geofence{mainCampus()})
	m.records.EXPECT().Insert(ctx, gomock.Any()).Return(errors.New("connection reset"))
	m.proofs.EXPECT().SaveProof(ctx, user.ID, 2*time.Minute).Return(nil).Times(1)
	m.metrics.EXPECT().RecordAttempt("STORAGE_UNAVAILABLE")

	// Действие
	result, err := svc.SubmitAttendance(ctx, SubmitRequest{UserID: user.ID, Latitude: 40.0005, Longitude: -75.0})

	// Проверки
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestSubmitAttendance_RetryAfterStorageFailure(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()
	user := enrolledUser()
	req := SubmitRequest{UserID: user.ID, Latitude: 40.0005, Longitude: -75.0}
	proofStored := true

	// Ожидания: подтверждение хранится как в Redis, первая вставка падает
	m.users.EXPECT().GetByID(ctx, user.ID).Return(user, nil).Times(2)
	m.geofences.EXPECT().ActiveGeofences(ctx).Return([]models.Geofence{mainCampus()}, nil).Times(2)
	m.records.EXPECT().ListForUserInWindow(ctx, user.ID, gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
	m.proofs.EXPECT().
		ConsumeProof(ctx, user.ID).
		DoAndReturn(func(context.Context, uuid.UUID) (bool, error) {
			had := proofStored
			proofStored = false
			return had, nil
		}).
		Times(2)
	m.proofs.EXPECT().
		SaveProof(ctx, user.ID, 2*time.Minute).
		DoAndReturn(func(context.Context, uuid.UUID, time.Duration) error {
			proofStored = true
			return nil
		}).
		Times(1)
	m.records.EXPECT().Insert(ctx, gomock.Any()).Return(errors.New("connection reset")).Times(1)
	m.records.EXPECT().Insert(ctx, gomock.Any()).Return(nil).Times(1)
	m.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)
	m.metrics.EXPECT().RecordAttempt("STORAGE_UNAVAILABLE").Times(1)
	m.metrics.EXPECT().RecordAttempt("PRESENT").Times(1)

	// Действие
	_, firstErr := svc.SubmitAttendance(ctx, req)
	result, err := svc.SubmitAttendance(ctx, req)

	// Проверки
	assert.ErrorIs(t, firstErr, ErrStorageUnavailable)
	require.NoError(t, err)
	assert.Equal(t, attendance.OutcomePresent, result.Outcome)
	assert.False(t, proofStored)
}

func TestSubmitAttendance_PublishFailureDoesNotFailAttempt(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()
	user := enrolledUser()

	// Ожидания
	expectVerifiedAttempt(m, user, []models.Geofence{mainCampus()})
	m.records.EXPECT().Insert(ctx, gomock.Any()).Return(nil)
	m.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(errors.New("redis down"))
	m.metrics.EXPECT().RecordAttempt("PRESENT")

	// Действие
	result, err := svc.SubmitAttendance(ctx, SubmitRequest{UserID: user.ID, Latitude: 40.0005, Longitude: -75.0})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, attendance.OutcomePresent, result.Outcome)
}

func TestEnrollFace_Success(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()
	id := uuid.New()
	descriptor := []float32{0.1, 0.2, 0.3, 0.4}

	// Ожидания
	m.users.EXPECT().UpdateFaceDescriptor(ctx, id, descriptor, testNow).Return(nil)
	m.metrics.EXPECT().RecordEnrollment()

	// Действие
	err := svc.EnrollFace(ctx, id, descriptor)

	// Проверки
	require.NoError(t, err)
}

func TestEnrollFace_InvalidDescriptor(t *testing.T) {
	testCases := []struct {
		name       string
		descriptor []float32
	}{
		{"empty", []float32{}},
		{"wrong length", []float32{0.1, 0.2}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestAttendanceService(t)

			err := svc.EnrollFace(context.Background(), uuid.New(), tc.descriptor)

			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestEnrollFace_UserNotFound(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()
	id := uuid.New()

	// Ожидания
	m.users.EXPECT().UpdateFaceDescriptor(ctx, id, gomock.Any(), gomock.Any()).Return(ErrUserNotFound)

	// Действие
	err := svc.EnrollFace(ctx, id, []float32{0.1, 0.2, 0.3, 0.4})

	// Проверки
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestVerifyFace_MatchIssuesProof(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()
	user := enrolledUser()

	// Ожидания
	m.users.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
	m.metrics.EXPECT().RecordVerification(true)
	m.proofs.EXPECT().SaveProof(ctx, user.ID, 2*time.Minute).Return(nil)

	// Действие
	result, err := svc.VerifyFace(ctx, user.ID, []float32{0.1, 0.2, 0.3, 0.4})

	// Проверки
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Zero(t, result.Distance)
	assert.Equal(t, testNow.Add(2*time.Minute), result.ExpiresAt)
}

func TestVerifyFace_MismatchIssuesNoProof(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()
	user := enrolledUser()

	// Ожидания
	m.users.EXPECT().GetByID(ctx, user.ID).Return(user, nil)
	m.metrics.EXPECT().RecordVerification(false)

	// Действие
	result, err := svc.VerifyFace(ctx, user.ID, []float32{0.9, 0.9, 0.9, 0.9})

	// Проверки
	require.NoError(t, err)
	assert.False(t, result.Matched)
	assert.True(t, result.ExpiresAt.IsZero())
}

func TestVerifyFace_NotEnrolled(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()
	user := enrolledUser()
	user.FaceDescriptor = nil

	// Ожидания
	m.users.EXPECT().GetByID(ctx, user.ID).Return(user, nil)

	// Действие
	_, err := svc.VerifyFace(ctx, user.ID, []float32{0.1, 0.2, 0.3, 0.4})

	// Проверки
	assert.ErrorIs(t, err, ErrNeedsEnrollment)
}

func TestVerifyFace_DimensionMismatch(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()
	user := enrolledUser()

	// Ожидания
	m.users.EXPECT().GetByID(ctx, user.ID).Return(user, nil)

	// Действие
	_, err := svc.VerifyFace(ctx, user.ID, []float32{0.1, 0.2})

	// Проверки
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestHistory_NormalizesPaging(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()
	id := uuid.New()
	expected := []*models.AttendanceRecord{{ID: uuid.New(), UserID: id}}

	// Ожидания
	m.records.EXPECT().ListForUser(ctx, id, 1, 20).Return(expected, nil)

	// Действие
	records, err := svc.History(ctx, id, -1, 0)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expected, records)
}

func TestListByDay(t *testing.T) {
	t.Run("defaults to today", func(t *testing.T) {
		svc, m := newTestAttendanceService(t)
		m.records.EXPECT().ListByWindowKey(gomock.Any(), "2026-10-18", 1, 20).Return(nil, nil)

		_, err := svc.ListByDay(context.Background(), "", 1, 20)

		require.NoError(t, err)
	})

	t.Run("explicit day", func(t *testing.T) {
		svc, m := newTestAttendanceService(t)
		m.records.EXPECT().ListByWindowKey(gomock.Any(), "2026-10-01", 2, 10).Return(nil, nil)

		_, err := svc.ListByDay(context.Background(), "2026-10-01", 2, 10)

		require.NoError(t, err)
	})

	t.Run("invalid day", func(t *testing.T) {
		svc, _ := newTestAttendanceService(t)

		_, err := svc.ListByDay(context.Background(), "18.10.2026", 1, 20)

		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestStats(t *testing.T) {
	// Подготовка
	svc, m := newTestAttendanceService(t)
	ctx := context.Background()

	// Ожидания
	m.records.EXPECT().CountPresentUsers(ctx, "2026-10-18").Return(7, nil)

	// Действие
	stats, err := svc.Stats(ctx)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, &Stats{WindowKey: "2026-10-18", PresentUsers: 7}, stats)
}
