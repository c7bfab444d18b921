package face

import (
	"errors"
	"fmt"
	"math"
)

// DefaultThreshold - порог евклидова расстояния, откалиброванный для 128-мерных дескрипторов face-api
const DefaultThreshold = 0.6

var (
	// ErrDimensionMismatch возвращается при сравнении дескрипторов разной длины
	ErrDimensionMismatch = errors.New("descriptor dimension mismatch")
	// ErrInvalidDescriptor возвращается для пустых дескрипторов или с NaN/Inf компонентами
	ErrInvalidDescriptor = errors.New("invalid face descriptor")
)

// Descriptor - вектор признаков лица, полученный внешней моделью распознавания
type Descriptor []float32

// Validate проверяет дескриптор; length == 0 отключает проверку длины
func (d Descriptor) Validate(length int) error {
	if len(d) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidDescriptor)
	}
	if length > 0 && len(d) != length {
		return fmt.Errorf("%w: expected %d components, got %d", ErrInvalidDescriptor, length, len(d))
	}
	for i, v := range d {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: component %d is not finite", ErrInvalidDescriptor, i)
		}
	}
	return nil
}

// Distance возвращает евклидово расстояние между дескрипторами
func Distance(a, b Descriptor) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum), nil
}

// Matcher принимает решение о совпадении по настроенному порогу
type Matcher struct {
	threshold float64
}

// NewMatcher создает Matcher; неположительный порог заменяется DefaultThreshold
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Match возвращает true, только если расстояние строго меньше порога
func (m *Matcher) Match(distance float64) bool {
	return distance < m.threshold
}

// Compare считает расстояние и сразу принимает решение
func (m *Matcher) Compare(a, b Descriptor) (float64, bool, error) {
	d, err := Distance(a, b)
	if err != nil {
		return 0, false, err
	}
	return d, m.Match(d), nil
}
