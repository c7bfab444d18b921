//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/geo_attendance/internal/models"
	"github.com/shenikar/geo_attendance/internal/service"
	"github.com/shenikar/geo_attendance/pkg/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "pgvector/pgvector:pg16",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil || container == nil {
		t.Skipf("Docker not available, skipping integration test: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())
	require.NoError(t, postgres.Migrate(dbURL, "file://../../migrations"))

	pool, err := postgres.NewPostgresDB(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func setupRedis(t *testing.T) *redis.Client {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil || container == nil {
		t.Skipf("Docker not available, skipping integration test: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRepositories(t *testing.T) {
	pool := setupPostgres(t)
	rdb := setupRedis(t)
	ctx := context.Background()

	users := NewUserRepository(pool)
	geofences := NewGeofenceRepository(pool, rdb, time.Minute)
	records := NewAttendanceRepository(pool)
	proofs := NewVerificationStore(rdb)

	user := &models.User{Name: "Ada", Email: "ada@example.edu"}
	campus := &models.Geofence{Name: "Main campus", Latitude: 40, Longitude: -75, RadiusMeters: 100, Active: true}

	t.Run("UserCreateAndDuplicateEmail", func(t *testing.T) {
		require.NoError(t, users.Create(ctx, user))
		assert.NotEqual(t, uuid.Nil, user.ID)

		err := users.Create(ctx, &models.User{Name: "Other", Email: "ada@example.edu"})
		assert.ErrorIs(t, err, service.ErrUserExists)
	})

	t.Run("UserNotFound", func(t *testing.T) {
		_, err := users.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})

	t.Run("FaceDescriptorRoundTrip", func(t *testing.T) {
		got, err := users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.False(t, got.FaceEnrolled())

		descriptor := make([]float32, 128)
		for i := range descriptor {
			descriptor[i] = float32(i) / 128
		}
		require.NoError(t, users.UpdateFaceDescriptor(ctx, user.ID, descriptor, time.Now().UTC()))

		got, err = users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, got.FaceEnrolled())
		assert.Equal(t, descriptor, got.FaceDescriptor)
		assert.NotNil(t, got.FaceEnrolledAt)

		err = users.UpdateFaceDescriptor(ctx, uuid.New(), descriptor, time.Now())
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})

	t.Run("GeofenceLifecycle", func(t *testing.T) {
		require.NoError(t, geofences.Create(ctx, campus))

		active, err := geofences.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, campus.ID, active[0].ID)

		campus.RadiusMeters = 150
		require.NoError(t, geofences.Update(ctx, campus))
		got, err := geofences.GetByID(ctx, campus.ID)
		require.NoError(t, err)
		assert.Equal(t, 150.0, got.RadiusMeters)

		assert.ErrorIs(t, geofences.Delete(ctx, uuid.New()), service.ErrGeofenceNotFound)
		_, err = geofences.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, service.ErrGeofenceNotFound)
	})

	t.Run("ActiveGeofenceCache", func(t *testing.T) {
		_, ok, err := geofences.GetActiveFromCache(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, geofences.SetActiveCache(ctx, []models.Geofence{*campus}))
		cached, ok, err := geofences.GetActiveFromCache(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, campus.ID, cached[0].ID)

		require.NoError(t, geofences.InvalidateActiveCache(ctx))
		_, ok, err = geofences.GetActiveFromCache(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("OnePresentPerWindow", func(t *testing.T) {
		now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
		distance := 55.6
		present := &models.AttendanceRecord{
			ID:             uuid.New(),
			UserID:         user.ID,
			GeofenceID:     &campus.ID,
			Latitude:       40.0005,
			Longitude:      -75,
			DistanceMeters: &distance,
			Status:         models.StatusPresent,
			WindowKey:      "2026-10-18",
			Timestamp:      now,
		}
		require.NoError(t, records.Insert(ctx, present))

		outOfRange := &models.AttendanceRecord{
			ID:        uuid.New(),
			UserID:    user.ID,
			Latitude:  41,
			Longitude: -75,
			Status:    models.StatusOutOfRange,
			WindowKey: "2026-10-18",
			Timestamp: now.Add(time.Minute),
		}
		require.NoError(t, records.Insert(ctx, outOfRange))

		second := *present
		second.ID = uuid.New()
		second.Timestamp = now.Add(2 * time.Minute)
		assert.ErrorIs(t, records.Insert(ctx, &second), service.ErrDuplicateRecord)

		inWindow, err := records.ListForUserInWindow(ctx, user.ID, now.Truncate(24*time.Hour), now.Truncate(24*time.Hour).Add(24*time.Hour))
		require.NoError(t, err)
		assert.Len(t, inWindow, 2)
		assert.Equal(t, models.StatusPresent, inWindow[0].Status)
		assert.Nil(t, inWindow[1].GeofenceID)
		assert.Nil(t, inWindow[1].DistanceMeters)

		history, err := records.ListForUser(ctx, user.ID, 1, 10)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, outOfRange.ID, history[0].ID)

		byDay, err := records.ListByWindowKey(ctx, "2026-10-18", 1, 10)
		require.NoError(t, err)
		assert.Len(t, byDay, 2)

		count, err := records.CountPresentUsers(ctx, "2026-10-18")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("DeactivatedGeofenceKeepsRecords", func(t *testing.T) {
		require.NoError(t, geofences.Delete(ctx, campus.ID))

		active, err := geofences.ListActive(ctx)
		require.NoError(t, err)
		assert.Empty(t, active)

		history, err := records.ListForUser(ctx, user.ID, 1, 10)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})

	t.Run("VerificationProofIsSingleUse", func(t *testing.T) {
		ok, err := proofs.ConsumeProof(ctx, user.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, proofs.SaveProof(ctx, user.ID, time.Minute))
		ok, err = proofs.ConsumeProof(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = proofs.ConsumeProof(ctx, user.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
