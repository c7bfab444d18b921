package v1

import (
	"time"

	"github.com/google/uuid"
)

// GeofenceRequest DTO для создания и обновления геозоны
// @Description DTO для создания и обновления геозоны
type GeofenceRequest struct {
	Name         string   `json:"name" validate:"required,min=2,max=255"`
	Latitude     *float64 `json:"latitude" validate:"required,latitude"`
	Longitude    *float64 `json:"longitude" validate:"required,longitude"`
	RadiusMeters float64  `json:"radius_meters" validate:"required,gt=0"`
	Active       *bool    `json:"active,omitempty"`
}

// GeofenceResponse DTO для ответа с информацией о геозоне
// @Description DTO для ответа с информацией о геозоне
type GeofenceResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusMeters float64   `json:"radius_meters"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SubmitAttendanceRequest DTO попытки отметки. Без face_descriptor используется подтверждение из /attendance/face/verify.
// @Description DTO попытки отметки
type SubmitAttendanceRequest struct {
	Latitude       *float64  `json:"latitude" validate:"required"`
	Longitude      *float64  `json:"longitude" validate:"required"`
	FaceDescriptor []float32 `json:"face_descriptor,omitempty" validate:"omitempty,min=1"`
}

// AttendanceResponse DTO сохраненной попытки
// @Description DTO сохраненной попытки
type AttendanceResponse struct {
	Status       string    `json:"status"`
	LocationName string    `json:"location_name,omitempty"`
	RecordID     uuid.UUID `json:"record_id"`
	Timestamp    time.Time `json:"timestamp"`
}

// AttendanceRecordResponse DTO записи посещаемости
// @Description DTO записи посещаемости
type AttendanceRecordResponse struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	GeofenceID     *uuid.UUID `json:"geofence_id,omitempty"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	DistanceMeters *float64   `json:"distance_meters,omitempty"`
	Status         string     `json:"status"`
	Date           string     `json:"date"`
	Timestamp      time.Time  `json:"timestamp"`
}

// FaceDescriptorRequest DTO для регистрации и проверки лица
// @Description DTO для регистрации и проверки лица
type FaceDescriptorRequest struct {
	FaceDescriptor []float32 `json:"face_descriptor" validate:"required,min=1"`
}

// FaceVerificationResponse DTO результата проверки лица
// @Description DTO результата проверки лица
type FaceVerificationResponse struct {
	Matched   bool       `json:"matched"`
	Distance  float64    `json:"distance"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// CreateUserRequest DTO для добавления студента
// @Description DTO для добавления студента
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=255"`
	Email string `json:"email" validate:"required,email"`
}

// UserResponse DTO студента
// @Description DTO студента
type UserResponse struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	FaceEnrolled   bool       `json:"face_enrolled"`
	FaceEnrolledAt *time.Time `json:"face_enrolled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// TokenResponse DTO выданного токена
// @Description DTO выданного токена
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// StatsResponse DTO для ответа со статистикой
// @Description DTO для ответа со статистикой
type StatsResponse struct {
	Date         string `json:"date"`
	PresentUsers int    `json:"present_users"`
}

// ErrorResponse DTO ошибки с машиночитаемым кодом
// @Description DTO ошибки с машиночитаемым кодом
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}
