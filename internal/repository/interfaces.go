package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vollmed/clinic-api/internal/model"
)

// All repository interfaces in one file
type (
	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		Deactivate(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error)
		Exists(ctx context.Context, id uuid.UUID) (bool, error)
		ExistsActive(ctx context.Context, id uuid.UUID) (bool, error)
		// ListEligible returns every active doctor of the specialty with no
		// appointment at the exact requested instant.
		ListEligible(ctx context.Context, specialty model.Specialty, at time.Time) ([]*model.Doctor, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Deactivate(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
		Exists(ctx context.Context, id uuid.UUID) (bool, error)
		ExistsActive(ctx context.Context, id uuid.UUID) (bool, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Exists(ctx context.Context, id uuid.UUID) (bool, error)
		SetCancelReason(ctx context.Context, id uuid.UUID, reason model.CancelReason) error
		ExistsForPatientBetween(ctx context.Context, patientID uuid.UUID, start, end time.Time) (bool, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		GetByEmail(ctx context.Context, email string) (*model.User, error)
	}

	// TxManager runs a function inside one database transaction; repository
	// calls made with the inner context join that transaction.
	TxManager interface {
		WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	}
)
