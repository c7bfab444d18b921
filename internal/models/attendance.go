package models

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceStatus - итог попытки, дошедшей до проверки геозоны
type AttendanceStatus string

const (
	StatusPresent    AttendanceStatus = "PRESENT"
	StatusOutOfRange AttendanceStatus = "OUT_OF_RANGE"
)

// AttendanceRecord - неизменяемая запись о попытке отметки.
// GeofenceID == nil, если точка не попала ни в одну зону.
type AttendanceRecord struct {
	ID             uuid.UUID        `json:"id"`
	UserID         uuid.UUID        `json:"user_id"`
	GeofenceID     *uuid.UUID       `json:"geofence_id,omitempty"`
	Latitude       float64          `json:"latitude"`
	Longitude      float64          `json:"longitude"`
	DistanceMeters *float64         `json:"distance_meters,omitempty"`
	Status         AttendanceStatus `json:"status"`
	WindowKey      string           `json:"window_key"`
	Timestamp      time.Time        `json:"timestamp"`
}
