package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vollmed/clinic-api/internal/model"
	apperrors "github.com/vollmed/clinic-api/pkg/errors"
)

type testEnv struct {
	doctors      *fakeDoctors
	patients     *fakePatients
	appointments *fakeAppointments
	service      *Service
}

// newTestEnv wires the service against in-memory stores with a clock frozen
// at tuesday and a deterministic first-candidate pick.
func newTestEnv() *testEnv {
	appointments := &fakeAppointments{}
	doctors := &fakeDoctors{appts: appointments}
	patients := &fakePatients{}

	selector := NewDoctorSelector(doctors, func(n int) int { return 0 })
	service := NewService(
		doctors, patients, appointments, fakeTx{}, selector,
		Hooks{}, zerolog.Nop(), fixedClock(tuesday),
	)

	return &testEnv{
		doctors:      doctors,
		patients:     patients,
		appointments: appointments,
		service:      service,
	}
}

func (e *testEnv) addDoctor(specialty model.Specialty, active bool) *model.Doctor {
	d := &model.Doctor{
		Base:      model.Base{ID: uuid.New()},
		Specialty: specialty,
		Active:    active,
	}
	e.doctors.list = append(e.doctors.list, d)
	return d
}

func (e *testEnv) addPatient(active bool) *model.Patient {
	p := &model.Patient{
		Base:   model.Base{ID: uuid.New()},
		Active: active,
	}
	e.patients.list = append(e.patients.list, p)
	return p
}

// nextDay is a working day, comfortably past every lead-time requirement.
var nextDay = time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)

func TestScheduleWithExplicitDoctor(t *testing.T) {
	env := newTestEnv()
	doctor := env.addDoctor(model.SpecialtyCardiology, true)
	patient := env.addPatient(true)

	detail, err := env.service.Schedule(context.Background(), &model.ScheduleAppointmentRequest{
		PatientID:   patient.ID,
		DoctorID:    &doctor.ID,
		ScheduledAt: nextDay,
	})

	require.NoError(t, err)
	assert.Equal(t, doctor.ID, detail.DoctorID)
	assert.Equal(t, patient.ID, detail.PatientID)
	assert.True(t, detail.ScheduledAt.Equal(nextDay))

	require.Len(t, env.appointments.list, 1)
	stored := env.appointments.list[0]
	assert.Equal(t, detail.ID, stored.ID)
	assert.Nil(t, stored.CancelReason)
}

func TestScheduleBySpecialtyPicksFreeDoctor(t *testing.T) {
	env := newTestEnv()
	doctor := env.addDoctor(model.SpecialtyDermatology, true)
	env.addDoctor(model.SpecialtyCardiology, true)
	patient := env.addPatient(true)

	specialty := model.SpecialtyDermatology
	detail, err := env.service.Schedule(context.Background(), &model.ScheduleAppointmentRequest{
		PatientID:   patient.ID,
		Specialty:   &specialty,
		ScheduledAt: nextDay,
	})

	require.NoError(t, err)
	assert.Equal(t, doctor.ID, detail.DoctorID)
}

func TestScheduleRejectsUnknownPatient(t *testing.T) {
	env := newTestEnv()
	env.addDoctor(model.SpecialtyCardiology, true)

	_, err := env.service.Schedule(context.Background(), &model.ScheduleAppointmentRequest{
		PatientID:   uuid.New(),
		ScheduledAt: nextDay,
	})

	require.Error(t, err)
	assert.EqualError(t, err, "patient id does not exist")
	assert.Empty(t, env.appointments.list)
}

func TestScheduleRejectsUnknownDoctor(t *testing.T) {
	env := newTestEnv()
	patient := env.addPatient(true)
	unknown := uuid.New()

	_, err := env.service.Schedule(context.Background(), &model.ScheduleAppointmentRequest{
		PatientID:   patient.ID,
		DoctorID:    &unknown,
		ScheduledAt: nextDay,
	})

	require.Error(t, err)
	assert.EqualError(t, err, "doctor id does not exist")
	assert.Empty(t, env.appointments.list)
}

func TestScheduleRejectsInactiveDoctor(t *testing.T) {
	env := newTestEnv()
	doctor := env.addDoctor(model.SpecialtyCardiology, false)
	patient := env.addPatient(true)

	_, err := env.service.Schedule(context.Background(), &model.ScheduleAppointmentRequest{
		PatientID:   patient.ID,
		DoctorID:    &doctor.ID,
		ScheduledAt: nextDay,
	})

	require.Error(t, err)
	assert.EqualError(t, err, "appointment cannot be scheduled with an inactive doctor")
	assert.Empty(t, env.appointments.list)
}

func TestScheduleRejectsInactivePatient(t *testing.T) {
	env := newTestEnv()
	doctor := env.addDoctor(model.SpecialtyCardiology, true)
	patient := env.addPatient(false)

	_, err := env.service.Schedule(context.Background(), &model.ScheduleAppointmentRequest{
		PatientID:   patient.ID,
		DoctorID:    &doctor.ID,
		ScheduledAt: nextDay,
	})

	require.Error(t, err)
	assert.EqualError(t, err, "appointment cannot be scheduled with an inactive patient")
}

func TestScheduleReportsNoDoctorAvailable(t *testing.T) {
	env := newTestEnv()
	env.addDoctor(model.SpecialtyCardiology, true)
	patient := env.addPatient(true)

	specialty := model.SpecialtyNeurology
	_, err := env.service.Schedule(context.Background(), &model.ScheduleAppointmentRequest{
		PatientID:   patient.ID,
		Specialty:   &specialty,
		ScheduledAt: nextDay,
	})

	require.Error(t, err)
	assert.EqualError(t, err, "no doctor available on that date")
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, env.appointments.list)
}

func TestScheduleRejectsSecondBookingSameDay(t *testing.T) {
	env := newTestEnv()
	env.addDoctor(model.SpecialtyCardiology, true)
	env.addDoctor(model.SpecialtyCardiology, true)
	patient := env.addPatient(true)

	specialty := model.SpecialtyCardiology
	first := &model.ScheduleAppointmentRequest{
		PatientID:   patient.ID,
		Specialty:   &specialty,
		ScheduledAt: nextDay,
	}
	_, err := env.service.Schedule(context.Background(), first)
	require.NoError(t, err)

	second := &model.ScheduleAppointmentRequest{
		PatientID:   patient.ID,
		Specialty:   &specialty,
		ScheduledAt: nextDay.Add(3 * time.Hour),
	}
	_, err = env.service.Schedule(context.Background(), second)

	require.Error(t, err)
	assert.EqualError(t, err, "patient already has an appointment on that day")
	assert.Len(t, env.appointments.list, 1)
}

func TestScheduleRejectsShortNotice(t *testing.T) {
	env := newTestEnv()
	doctor := env.addDoctor(model.SpecialtyCardiology, true)
	patient := env.addPatient(true)

	_, err := env.service.Schedule(context.Background(), &model.ScheduleAppointmentRequest{
		PatientID:   patient.ID,
		DoctorID:    &doctor.ID,
		ScheduledAt: tuesday.Add(10 * time.Minute),
	})

	require.Error(t, err)
	assert.EqualError(t, err, "appointment must be scheduled at least 30 minutes in advance")
}

func TestCancelAppointment(t *testing.T) {
	env := newTestEnv()
	appt := &model.Appointment{
		ID:          uuid.New(),
		DoctorID:    uuid.New(),
		PatientID:   uuid.New(),
		ScheduledAt: tuesday.Add(48 * time.Hour),
	}
	env.appointments.list = append(env.appointments.list, appt)

	err := env.service.Cancel(context.Background(), &model.CancelAppointmentRequest{
		AppointmentID: appt.ID,
		Reason:        model.CancelReasonPatientWithdrew,
	})

	require.NoError(t, err)
	require.NotNil(t, appt.CancelReason)
	assert.Equal(t, model.CancelReasonPatientWithdrew, *appt.CancelReason)
}

func TestCancelRejectsUnknownAppointment(t *testing.T) {
	env := newTestEnv()

	err := env.service.Cancel(context.Background(), &model.CancelAppointmentRequest{
		AppointmentID: uuid.New(),
		Reason:        model.CancelReasonOther,
	})

	require.Error(t, err)
	assert.EqualError(t, err, "appointment id does not exist")
}

func TestCancelRejectsAlreadyCancelled(t *testing.T) {
	env := newTestEnv()
	reason := model.CancelReasonDoctorCancelled
	appt := &model.Appointment{
		ID:           uuid.New(),
		DoctorID:     uuid.New(),
		PatientID:    uuid.New(),
		ScheduledAt:  tuesday.Add(48 * time.Hour),
		CancelReason: &reason,
	}
	env.appointments.list = append(env.appointments.list, appt)

	err := env.service.Cancel(context.Background(), &model.CancelAppointmentRequest{
		AppointmentID: appt.ID,
		Reason:        model.CancelReasonOther,
	})

	require.Error(t, err)
	assert.EqualError(t, err, "appointment is already cancelled")
	assert.Equal(t, model.CancelReasonDoctorCancelled, *appt.CancelReason)
}

func TestCancelRejectsShortNotice(t *testing.T) {
	env := newTestEnv()
	appt := &model.Appointment{
		ID:          uuid.New(),
		DoctorID:    uuid.New(),
		PatientID:   uuid.New(),
		ScheduledAt: tuesday.Add(2 * time.Hour),
	}
	env.appointments.list = append(env.appointments.list, appt)

	err := env.service.Cancel(context.Background(), &model.CancelAppointmentRequest{
		AppointmentID: appt.ID,
		Reason:        model.CancelReasonOther,
	})

	require.Error(t, err)
	assert.EqualError(t, err, "appointment can only be cancelled at least 24 hours in advance")
	assert.Nil(t, appt.CancelReason)
}

// A freed slot is bookable again once the blocking appointment is cancelled.
func TestCancelledAppointmentFreesTheDay(t *testing.T) {
	env := newTestEnv()
	doctor := env.addDoctor(model.SpecialtyCardiology, true)
	patient := env.addPatient(true)

	detail, err := env.service.Schedule(context.Background(), &model.ScheduleAppointmentRequest{
		PatientID:   patient.ID,
		DoctorID:    &doctor.ID,
		ScheduledAt: nextDay,
	})
	require.NoError(t, err)

	err = env.service.Cancel(context.Background(), &model.CancelAppointmentRequest{
		AppointmentID: detail.ID,
		Reason:        model.CancelReasonPatientWithdrew,
	})
	require.NoError(t, err)

	_, err = env.service.Schedule(context.Background(), &model.ScheduleAppointmentRequest{
		PatientID:   patient.ID,
		DoctorID:    &doctor.ID,
		ScheduledAt: nextDay,
	})
	assert.NoError(t, err)
}
