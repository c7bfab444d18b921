package geo

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusMeters - средний радиус Земли, используемый в формуле гаверсинуса
const EarthRadiusMeters = 6371000.0

// ErrInvalidInput возвращается для координат вне допустимых диапазонов
var ErrInvalidInput = errors.New("invalid coordinates")

// Point - географическая точка (WGS 84)
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate проверяет, что широта в [-90, 90], а долгота в [-180, 180]
func (p Point) Validate() error {
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) || p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidInput, p.Latitude)
	}
	if math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) || p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidInput, p.Longitude)
	}
	return nil
}

// Distance возвращает расстояние по большому кругу между точками в метрах
func Distance(a, b Point) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// ошибки округления могут дать h чуть больше 1 для антиподов
	h = math.Min(1, h)

	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
