package attendance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/geo_attendance/internal/face"
	"github.com/shenikar/geo_attendance/internal/geo"
	"github.com/shenikar/geo_attendance/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDescriptor(fill float32) face.Descriptor {
	d := make(face.Descriptor, 128)
	for i := range d {
		d[i] = fill
	}
	return d
}

type evalFixture struct {
	evaluator *Evaluator
	userID    uuid.UUID
	recordID  uuid.UUID
	campus    models.Geofence
	window    Window
	now       time.Time
}

func newEvalFixture() *evalFixture {
	f := &evalFixture{
		evaluator: NewEvaluator(face.NewMatcher(0.6), 128),
		userID:    uuid.New(),
		recordID:  uuid.New(),
		campus: models.Geofence{
			ID:           uuid.New(),
			Name:         "Main campus",
			Latitude:     40.0,
			Longitude:    -75.0,
			RadiusMeters: 100,
			Active:       true,
		},
		now: time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
	}
	f.evaluator.newID = func() uuid.UUID { return f.recordID }
	f.window = NewDailyPolicy(time.UTC).WindowAt(f.now)
	return f
}

// verifiedAttempt - попытка с зарегистрированным лицом и подтвержденной идентичностью
func (f *evalFixture) verifiedAttempt(lat, lon float64) Attempt {
	return Attempt{
		UserID:   f.userID,
		Location: geo.Point{Latitude: lat, Longitude: lon},
		Verified: true,
		Enrolled: testDescriptor(0.1),
		Fences:   []models.Geofence{f.campus},
		Window:   f.window,
		Now:      f.now,
	}
}

func TestEvaluate_PresentInsideFence(t *testing.T) {
	f := newEvalFixture()

	d := f.evaluator.Evaluate(f.verifiedAttempt(40.0005, -75.0))

	assert.Equal(t, OutcomePresent, d.Outcome)
	assert.Equal(t, StageCheckGeofence, d.Stage)
	require.NotNil(t, d.Record)
	assert.Equal(t, f.recordID, d.Record.ID)
	assert.Equal(t, models.StatusPresent, d.Record.Status)
	require.NotNil(t, d.Record.GeofenceID)
	assert.Equal(t, f.campus.ID, *d.Record.GeofenceID)
	require.NotNil(t, d.Record.DistanceMeters)
	assert.InDelta(t, 55.6, *d.Record.DistanceMeters, 0.5)
	assert.Equal(t, "2026-10-18", d.Record.WindowKey)
	assert.Equal(t, f.now, d.Record.Timestamp)
	require.NotNil(t, d.Geofence)
	assert.Equal(t, "Main campus", d.Geofence.Name)
}

func TestEvaluate_OutOfRangeStillProducesRecord(t *testing.T) {
	f := newEvalFixture()

	d := f.evaluator.Evaluate(f.verifiedAttempt(41.0, -75.0))

	assert.Equal(t, OutcomeOutOfRange, d.Outcome)
	assert.False(t, d.Outcome.Accepted())
	require.NotNil(t, d.Record)
	assert.Equal(t, models.StatusOutOfRange, d.Record.Status)
	assert.Nil(t, d.Record.GeofenceID)
	assert.Nil(t, d.Geofence)
}

func TestEvaluate_NoFencesIsOutOfRange(t *testing.T) {
	f := newEvalFixture()
	a := f.verifiedAttempt(40.0, -75.0)
	a.Fences = nil

	d := f.evaluator.Evaluate(a)

	assert.Equal(t, OutcomeOutOfRange, d.Outcome)
	require.NotNil(t, d.Record)
}

func TestEvaluate_InactiveFenceIgnored(t *testing.T) {
	f := newEvalFixture()
	a := f.verifiedAttempt(40.0, -75.0)
	a.Fences[0].Active = false

	d := f.evaluator.Evaluate(a)

	assert.Equal(t, OutcomeOutOfRange, d.Outcome)
}

func TestEvaluate_NeedsEnrollmentRegardlessOfLocation(t *testing.T) {
	f := newEvalFixture()
	for _, p := range []geo.Point{{Latitude: 40.0, Longitude: -75.0}, {Latitude: 41.0, Longitude: -75.0}} {
		a := f.verifiedAttempt(p.Latitude, p.Longitude)
		a.Enrolled = nil
		a.Captured = testDescriptor(0.1)

		d := f.evaluator.Evaluate(a)

		assert.Equal(t, OutcomeNeedsEnrollment, d.Outcome)
		assert.Equal(t, StageRequireEnrollment, d.Stage)
		assert.Nil(t, d.Record)
	}
}

func TestEvaluate_NeedsVerificationWithoutProof(t *testing.T) {
	f := newEvalFixture()
	a := f.verifiedAttempt(40.0, -75.0)
	a.Verified = false

	d := f.evaluator.Evaluate(a)

	assert.Equal(t, OutcomeNeedsFaceVerification, d.Outcome)
	assert.Equal(t, StageRequireVerification, d.Stage)
	assert.Nil(t, d.Record)
}

func TestEvaluate_CapturedDescriptorMatches(t *testing.T) {
	f := newEvalFixture()
	a := f.verifiedAttempt(40.0, -75.0)
	a.Verified = false
	a.Captured = testDescriptor(0.11)

	d := f.evaluator.Evaluate(a)

	assert.Equal(t, OutcomePresent, d.Outcome)
	require.NotNil(t, d.FaceDistance)
	assert.Less(t, *d.FaceDistance, 0.6)
}

func TestEvaluate_CapturedDescriptorMismatch(t *testing.T) {
	f := newEvalFixture()
	a := f.verifiedAttempt(40.0, -75.0)
	a.Captured = testDescriptor(0.9)

	d := f.evaluator.Evaluate(a)

	// свежий дескриптор важнее ранее выданного подтверждения
	assert.Equal(t, OutcomeFaceMismatch, d.Outcome)
	assert.Nil(t, d.Record)
}

func TestEvaluate_CapturedDescriptorWrongLength(t *testing.T) {
	f := newEvalFixture()
	a := f.verifiedAttempt(40.0, -75.0)
	a.Captured = face.Descriptor{0.1, 0.2}

	d := f.evaluator.Evaluate(a)

	assert.Equal(t, OutcomeDimensionMismatch, d.Outcome)
	assert.Nil(t, d.Record)
}

func TestEvaluate_CapturedDescriptorEmpty(t *testing.T) {
	f := newEvalFixture()
	a := f.verifiedAttempt(40.0, -75.0)
	a.Captured = face.Descriptor{}

	d := f.evaluator.Evaluate(a)

	assert.Equal(t, OutcomeInvalidInput, d.Outcome)
}

func TestEvaluate_InvalidLocation(t *testing.T) {
	f := newEvalFixture()

	d := f.evaluator.Evaluate(f.verifiedAttempt(95.0, -75.0))

	assert.Equal(t, OutcomeInvalidInput, d.Outcome)
	assert.Equal(t, StageCheckWindow, d.Stage)
	assert.Nil(t, d.Record)
}

func TestEvaluate_InvalidLocationWithoutEnrollment(t *testing.T) {
	f := newEvalFixture()
	for _, p := range []geo.Point{{Latitude: 200, Longitude: -75.0}, {Latitude: 40.0, Longitude: -181}} {
		a := f.verifiedAttempt(p.Latitude, p.Longitude)
		a.Enrolled = nil

		d := f.evaluator.Evaluate(a)

		assert.Equal(t, OutcomeNeedsEnrollment, d.Outcome)
		assert.Equal(t, StageRequireEnrollment, d.Stage)
		assert.Nil(t, d.Record)
	}
}

func TestEvaluate_InvalidLocationAfterFaceMismatch(t *testing.T) {
	f := newEvalFixture()
	a := f.verifiedAttempt(95.0, -75.0)
	a.Verified = false
	a.Captured = testDescriptor(0.9)

	d := f.evaluator.Evaluate(a)

	assert.Equal(t, OutcomeFaceMismatch, d.Outcome)
}

func TestEvaluate_DuplicateInWindow(t *testing.T) {
	f := newEvalFixture()
	a := f.verifiedAttempt(40.0005, -75.0)
	a.Prior = []models.AttendanceRecord{{
		ID:        uuid.New(),
		UserID:    f.userID,
		Status:    models.StatusPresent,
		WindowKey: f.window.Key,
		Timestamp: f.now.Add(-time.Hour),
	}}

	d := f.evaluator.Evaluate(a)

	assert.Equal(t, OutcomeDuplicateAttendance, d.Outcome)
	assert.Equal(t, StageCheckWindow, d.Stage)
	assert.Nil(t, d.Record)
}

func TestEvaluate_OutOfRangeRecordDoesNotBlock(t *testing.T) {
	f := newEvalFixture()
	a := f.verifiedAttempt(40.0005, -75.0)
	a.Prior = []models.AttendanceRecord{{
		ID:        uuid.New(),
		UserID:    f.userID,
		Status:    models.StatusOutOfRange,
		WindowKey: f.window.Key,
		Timestamp: f.now.Add(-time.Minute),
	}}

	d := f.evaluator.Evaluate(a)

	assert.Equal(t, OutcomePresent, d.Outcome)
}

func TestEvaluate_PresentYesterdayDoesNotBlock(t *testing.T) {
	f := newEvalFixture()
	a := f.verifiedAttempt(40.0005, -75.0)
	yesterday := f.now.AddDate(0, 0, -1)
	a.Prior = []models.AttendanceRecord{{
		ID:        uuid.New(),
		UserID:    f.userID,
		Status:    models.StatusPresent,
		WindowKey: yesterday.Format(WindowKeyLayout),
		Timestamp: yesterday,
	}}

	d := f.evaluator.Evaluate(a)

	assert.Equal(t, OutcomePresent, d.Outcome)
}

func TestEvaluate_IdentityCheckedBeforeWindow(t *testing.T) {
	f := newEvalFixture()
	a := f.verifiedAttempt(40.0005, -75.0)
	a.Verified = false
	a.Prior = []models.AttendanceRecord{{
		UserID:    f.userID,
		Status:    models.StatusPresent,
		WindowKey: f.window.Key,
		Timestamp: f.now,
	}}

	d := f.evaluator.Evaluate(a)

	assert.Equal(t, OutcomeNeedsFaceVerification, d.Outcome)
}
