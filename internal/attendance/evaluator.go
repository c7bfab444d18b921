package attendance

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/geo_attendance/internal/face"
	"github.com/shenikar/geo_attendance/internal/geo"
	"github.com/shenikar/geo_attendance/internal/models"
)

// Outcome - терминальный итог попытки отметки
type Outcome string

const (
	OutcomePresent               Outcome = "PRESENT"
	OutcomeOutOfRange            Outcome = "OUT_OF_RANGE"
	OutcomeInvalidInput          Outcome = "INVALID_INPUT"
	OutcomeDimensionMismatch     Outcome = "DIMENSION_MISMATCH"
	OutcomeNeedsEnrollment       Outcome = "NEEDS_ENROLLMENT"
	OutcomeNeedsFaceVerification Outcome = "NEEDS_FACE_VERIFICATION"
	OutcomeFaceMismatch          Outcome = "FACE_MISMATCH"
	OutcomeDuplicateAttendance   Outcome = "DUPLICATE_ATTENDANCE"
)

// Accepted сообщает, засчитана ли отметка
func (o Outcome) Accepted() bool {
	return o == OutcomePresent
}

// Stage - этап, на котором попытка завершилась
type Stage string

const (
	StageStart               Stage = "START"
	StageRequireEnrollment   Stage = "REQUIRE_ENROLLMENT"
	StageRequireVerification Stage = "REQUIRE_VERIFICATION"
	StageCheckWindow         Stage = "CHECK_WINDOW"
	StageCheckGeofence       Stage = "CHECK_GEOFENCE"
)

// Attempt - неизменяемый снимок всего, что нужно для решения по попытке
type Attempt struct {
	UserID   uuid.UUID
	Location geo.Point
	// Captured - свежий дескриптор; nil, если клиент полагается на Verified
	Captured face.Descriptor
	// Verified - предъявлено ранее полученное подтверждение лица
	Verified bool
	// Enrolled - сохраненный дескриптор пользователя; nil, если лицо не зарегистрировано
	Enrolled face.Descriptor
	Fences   []models.Geofence
	Prior    []models.AttendanceRecord
	Window   Window
	Now      time.Time
}

// Decision - результат вычисления. Record != nil означает, что запись нужно сохранить.
type Decision struct {
	Outcome      Outcome
	Stage        Stage
	Record       *models.AttendanceRecord
	Geofence     *models.Geofence
	FaceDistance *float64
	Reason       string
}

// Evaluator проводит попытку через этапы START -> идентификация -> проверка координат -> CHECK_WINDOW -> CHECK_GEOFENCE
type Evaluator struct {
	matcher          *face.Matcher
	descriptorLength int
	newID            func() uuid.UUID
}

func NewEvaluator(matcher *face.Matcher, descriptorLength int) *Evaluator {
	if matcher == nil {
		matcher = face.NewMatcher(face.DefaultThreshold)
	}
	return &Evaluator{
		matcher:          matcher,
		descriptorLength: descriptorLength,
		newID:            uuid.New,
	}
}

// Evaluate синхронно доводит попытку до ровно одного терминального итога
func (e *Evaluator) Evaluate(a Attempt) Decision {
	d := Decision{Stage: StageStart}
	if done := e.checkIdentity(a, &d); done {
		return d
	}
	// координаты проверяются после идентификации
	if err := a.Location.Validate(); err != nil {
		d.Outcome, d.Stage, d.Reason = OutcomeInvalidInput, StageCheckWindow, err.Error()
		return d
	}
	if done := e.checkWindow(a, &d); done {
		return d
	}
	e.checkGeofence(a, &d)
	return d
}

func (e *Evaluator) checkIdentity(a Attempt, d *Decision) bool {
	if len(a.Enrolled) == 0 {
		d.Outcome, d.Stage = OutcomeNeedsEnrollment, StageRequireEnrollment
		d.Reason = "face is not enrolled"
		return true
	}

	if a.Captured == nil {
		if a.Verified {
			return false
		}
		d.Outcome, d.Stage = OutcomeNeedsFaceVerification, StageRequireVerification
		d.Reason = "face verification required"
		return true
	}

	if err := a.Captured.Validate(0); err != nil {
		d.Outcome, d.Stage, d.Reason = OutcomeInvalidInput, StageRequireVerification, err.Error()
		return true
	}
	if e.descriptorLength > 0 && len(a.Captured) != e.descriptorLength {
		d.Outcome, d.Stage = OutcomeDimensionMismatch, StageRequireVerification
		d.Reason = face.ErrDimensionMismatch.Error()
		return true
	}

	dist, ok, err := e.matcher.Compare(a.Captured, a.Enrolled)
	if err != nil {
		d.Stage, d.Reason = StageRequireVerification, err.Error()
		d.Outcome = OutcomeInvalidInput
		if errors.Is(err, face.ErrDimensionMismatch) {
			d.Outcome = OutcomeDimensionMismatch
		}
		return true
	}
	d.FaceDistance = &dist
	if !ok {
		d.Outcome, d.Stage = OutcomeFaceMismatch, StageRequireVerification
		d.Reason = "face does not match enrolled descriptor"
		return true
	}
	return false
}

func (e *Evaluator) checkWindow(a Attempt, d *Decision) bool {
	for _, r := range a.Prior {
		if r.UserID != a.UserID || r.Status != models.StatusPresent {
			continue
		}
		if r.WindowKey == a.Window.Key || a.Window.Contains(r.Timestamp) {
			d.Outcome, d.Stage = OutcomeDuplicateAttendance, StageCheckWindow
			d.Reason = "attendance already marked in window " + a.Window.Key
			return true
		}
	}
	return false
}

func (e *Evaluator) checkGeofence(a Attempt, d *Decision) {
	d.Stage = StageCheckGeofence

	fences := make([]geo.Fence, 0, len(a.Fences))
	byID := make(map[string]*models.Geofence, len(a.Fences))
	for i := range a.Fences {
		g := &a.Fences[i]
		if !g.Active {
			continue
		}
		f := g.Fence()
		fences = append(fences, f)
		byID[f.ID] = g
	}

	record := &models.AttendanceRecord{
		ID:        e.newID(),
		UserID:    a.UserID,
		Latitude:  a.Location.Latitude,
		Longitude: a.Location.Longitude,
		WindowKey: a.Window.Key,
		Timestamp: a.Now.UTC(),
	}
	d.Record = record

	// точка уже провалидирована в Evaluate
	match, ok, _ := geo.Nearest(a.Location, fences)
	if !ok {
		record.Status = models.StatusOutOfRange
		d.Outcome = OutcomeOutOfRange
		d.Reason = "location is outside all geofences"
		return
	}

	g := byID[match.Fence.ID]
	id := g.ID
	dist := match.DistanceMeters
	record.Status = models.StatusPresent
	record.GeofenceID = &id
	record.DistanceMeters = &dist
	d.Outcome = OutcomePresent
	d.Geofence = g
}
