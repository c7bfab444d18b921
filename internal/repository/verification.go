package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/geo_attendance/internal/service"
)

type VerificationStore struct {
	redisClient *redis.Client
}

func NewVerificationStore(redisClient *redis.Client) service.VerificationStore {
	return &VerificationStore{redisClient: redisClient}
}

func proofKey(userID uuid.UUID) string {
	return fmt.Sprintf("face_verified:%s", userID.String())
}

// SaveProof сохраняет подтверждение лица, повторная проверка продлевает срок
func (s *VerificationStore) SaveProof(ctx context.Context, userID uuid.UUID, ttl time.Duration) error {
	if err := s.redisClient.Set(ctx, proofKey(userID), time.Now().UTC().Format(time.RFC3339), ttl).Err(); err != nil {
		return fmt.Errorf("failed to save face verification proof: %w", err)
	}
	return nil
}

// ConsumeProof атомарно забирает подтверждение, второй вызов вернет false
func (s *VerificationStore) ConsumeProof(ctx context.Context, userID uuid.UUID) (bool, error) {
	err := s.redisClient.GetDel(ctx, proofKey(userID)).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to consume face verification proof: %w", err)
	}
	return true, nil
}
