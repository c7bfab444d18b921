package geo

import (
	"fmt"
	"math"
)

// Fence - круговая зона: центр и радиус в метрах
type Fence struct {
	ID           string
	Name         string
	Center       Point
	RadiusMeters float64
}

// Validate проверяет центр зоны и положительность радиуса
func (f Fence) Validate() error {
	if err := f.Center.Validate(); err != nil {
		return err
	}
	if math.IsNaN(f.RadiusMeters) || math.IsInf(f.RadiusMeters, 0) || f.RadiusMeters <= 0 {
		return fmt.Errorf("%w: radius must be positive, got %v", ErrInvalidInput, f.RadiusMeters)
	}
	return nil
}

// Contains сообщает, попадает ли точка в зону, и расстояние до центра
func (f Fence) Contains(p Point) (bool, float64) {
	d := Distance(p, f.Center)
	return d <= f.RadiusMeters, d
}

// Match - результат проверки принадлежности точки зоне
type Match struct {
	Fence          Fence
	DistanceMeters float64
}

// Nearest возвращает ближайшую зону, содержащую точку.
// При равных расстояниях выбирается зона с меньшим ID.
// ok == false, если точка не попадает ни в одну зону.
func Nearest(p Point, fences []Fence) (match Match, ok bool, err error) {
	if err := p.Validate(); err != nil {
		return Match{}, false, err
	}

	for _, f := range fences {
		inside, d := f.Contains(p)
		if !inside {
			continue
		}
		if !ok || d < match.DistanceMeters || (d == match.DistanceMeters && f.ID < match.Fence.ID) {
			match = Match{Fence: f, DistanceMeters: d}
			ok = true
		}
	}
	return match, ok, nil
}
