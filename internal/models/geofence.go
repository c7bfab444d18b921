package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/geo_attendance/internal/geo"
)

// Geofence - зарегистрированная администратором зона для отметки посещаемости
type Geofence struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusMeters float64   `json:"radius_meters"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Center возвращает центр зоны
func (g *Geofence) Center() geo.Point {
	return geo.Point{Latitude: g.Latitude, Longitude: g.Longitude}
}

// Fence преобразует модель в зону для проверки принадлежности
func (g *Geofence) Fence() geo.Fence {
	return geo.Fence{
		ID:           g.ID.String(),
		Name:         g.Name,
		Center:       g.Center(),
		RadiusMeters: g.RadiusMeters,
	}
}

// GeofenceUpdate - изменения геозоны. Active == nil оставляет текущее состояние.
type GeofenceUpdate struct {
	ID           uuid.UUID
	Name         string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	Active       *bool
}
