package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vollmed/clinic-api/internal/model"
	apperrors "github.com/vollmed/clinic-api/pkg/errors"
)

// In-memory repositories. Doctor eligibility consults the appointment store
// so that booked doctors drop out of the candidate list, mirroring the SQL.

type fakeDoctors struct {
	list  []*model.Doctor
	appts *fakeAppointments
}

func (f *fakeDoctors) find(id uuid.UUID) *model.Doctor {
	for _, d := range f.list {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (f *fakeDoctors) Create(_ context.Context, doctor *model.Doctor) error {
	f.list = append(f.list, doctor)
	return nil
}

func (f *fakeDoctors) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	if d := f.find(id); d != nil {
		return d, nil
	}
	return nil, apperrors.NotFound("doctor")
}

func (f *fakeDoctors) Update(_ context.Context, doctor *model.Doctor) error {
	if d := f.find(doctor.ID); d != nil {
		*d = *doctor
		return nil
	}
	return apperrors.NotFound("doctor")
}

func (f *fakeDoctors) Deactivate(_ context.Context, id uuid.UUID) error {
	if d := f.find(id); d != nil {
		d.Active = false
		return nil
	}
	return apperrors.NotFound("doctor")
}

func (f *fakeDoctors) List(_ context.Context, _ *model.DoctorFilters) ([]*model.Doctor, error) {
	return f.list, nil
}

func (f *fakeDoctors) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return f.find(id) != nil, nil
}

func (f *fakeDoctors) ExistsActive(_ context.Context, id uuid.UUID) (bool, error) {
	d := f.find(id)
	return d != nil && d.Active, nil
}

func (f *fakeDoctors) ListEligible(_ context.Context, specialty model.Specialty, at time.Time) ([]*model.Doctor, error) {
	var eligible []*model.Doctor
	for _, d := range f.list {
		if !d.Active || d.Specialty != specialty {
			continue
		}
		if f.appts != nil && f.appts.bookedAt(d.ID, at) {
			continue
		}
		eligible = append(eligible, d)
	}
	return eligible, nil
}

type fakePatients struct {
	list []*model.Patient
}

func (f *fakePatients) find(id uuid.UUID) *model.Patient {
	for _, p := range f.list {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (f *fakePatients) Create(_ context.Context, patient *model.Patient) error {
	f.list = append(f.list, patient)
	return nil
}

func (f *fakePatients) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	if p := f.find(id); p != nil {
		return p, nil
	}
	return nil, apperrors.NotFound("patient")
}

func (f *fakePatients) Update(_ context.Context, patient *model.Patient) error {
	if p := f.find(patient.ID); p != nil {
		*p = *patient
		return nil
	}
	return apperrors.NotFound("patient")
}

func (f *fakePatients) Deactivate(_ context.Context, id uuid.UUID) error {
	if p := f.find(id); p != nil {
		p.Active = false
		return nil
	}
	return apperrors.NotFound("patient")
}

func (f *fakePatients) List(_ context.Context, _ *model.PatientFilters) ([]*model.Patient, error) {
	return f.list, nil
}

func (f *fakePatients) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return f.find(id) != nil, nil
}

func (f *fakePatients) ExistsActive(_ context.Context, id uuid.UUID) (bool, error) {
	p := f.find(id)
	return p != nil && p.Active, nil
}

type fakeAppointments struct {
	list []*model.Appointment
}

func (f *fakeAppointments) find(id uuid.UUID) *model.Appointment {
	for _, a := range f.list {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (f *fakeAppointments) bookedAt(doctorID uuid.UUID, at time.Time) bool {
	for _, a := range f.list {
		if a.DoctorID == doctorID && a.ScheduledAt.Equal(at) && !a.Cancelled() {
			return true
		}
	}
	return false
}

func (f *fakeAppointments) Create(_ context.Context, appointment *model.Appointment) error {
	f.list = append(f.list, appointment)
	return nil
}

func (f *fakeAppointments) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	if a := f.find(id); a != nil {
		return a, nil
	}
	return nil, apperrors.NotFound("appointment")
}

func (f *fakeAppointments) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return f.find(id) != nil, nil
}

func (f *fakeAppointments) SetCancelReason(_ context.Context, id uuid.UUID, reason model.CancelReason) error {
	a := f.find(id)
	if a == nil {
		return apperrors.NotFound("appointment")
	}
	if a.Cancelled() {
		return apperrors.Validation("appointment is already cancelled")
	}
	a.CancelReason = &reason
	return nil
}

func (f *fakeAppointments) ExistsForPatientBetween(_ context.Context, patientID uuid.UUID, start, end time.Time) (bool, error) {
	for _, a := range f.list {
		if a.PatientID != patientID || a.Cancelled() {
			continue
		}
		if !a.ScheduledAt.Before(start) && !a.ScheduledAt.After(end) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAppointments) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	return f.list, nil
}

type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
