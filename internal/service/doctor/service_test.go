package doctor

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

type fakeRepo struct {
	doctors map[uuid.UUID]*model.Doctor
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{doctors: make(map[uuid.UUID]*model.Doctor)}
}

func (f *fakeRepo) Create(_ context.Context, doctor *model.Doctor) error {
	f.doctors[doctor.ID] = doctor
	return nil
}

func (f *fakeRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	if d, ok := f.doctors[id]; ok {
		return d, nil
	}
	return nil, apperrors.NotFound("doctor")
}

func (f *fakeRepo) Update(_ context.Context, doctor *model.Doctor) error {
	if _, ok := f.doctors[doctor.ID]; !ok {
		return apperrors.NotFound("doctor")
	}
	f.doctors[doctor.ID] = doctor
	return nil
}

func (f *fakeRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	d, ok := f.doctors[id]
	if !ok {
		return apperrors.NotFound("doctor")
	}
	d.Active = false
	return nil
}

func (f *fakeRepo) List(_ context.Context, _ *model.DoctorFilters) ([]*model.Doctor, error) {
	var out []*model.Doctor
	for _, d := range f.doctors {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.doctors[id]
	return ok, nil
}

func (f *fakeRepo) ExistsActive(_ context.Context, id uuid.UUID) (bool, error) {
	d, ok := f.doctors[id]
	return ok && d.Active, nil
}

func (f *fakeRepo) ListEligible(_ context.Context, _ model.Specialty, _ time.Time) ([]*model.Doctor, error) {
	return nil, nil
}

func TestCreateDoctor(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, zerolog.Nop())

	created, err := svc.CreateDoctor(context.Background(), &model.CreateDoctorRequest{
		Name:          "Greg House",
		Email:         "house@vollmed.example",
		Phone:         "555-0100",
		LicenseNumber: "CRM-12345",
		Specialty:     model.SpecialtyCardiology,
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.True(t, created.Active)
	assert.Equal(t, model.SpecialtyCardiology, created.Specialty)
	assert.Contains(t, repo.doctors, created.ID)
}

func TestUpdateDoctorOnlyTouchesProvidedFields(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, zerolog.Nop())

	created, err := svc.CreateDoctor(context.Background(), &model.CreateDoctorRequest{
		Name:          "Greg House",
		Email:         "house@vollmed.example",
		Phone:         "555-0100",
		LicenseNumber: "CRM-12345",
		Specialty:     model.SpecialtyCardiology,
	})
	require.NoError(t, err)

	newPhone := "555-0199"
	updated, err := svc.UpdateDoctor(context.Background(), created.ID, &model.UpdateDoctorRequest{
		Phone: &newPhone,
	})

	require.NoError(t, err)
	assert.Equal(t, "Greg House", updated.Name)
	assert.Equal(t, newPhone, updated.Phone)
	assert.Equal(t, model.SpecialtyCardiology, updated.Specialty)
}

func TestUpdateUnknownDoctor(t *testing.T) {
	svc := NewService(newFakeRepo(), zerolog.Nop())

	name := "Nobody"
	_, err := svc.UpdateDoctor(context.Background(), uuid.New(), &model.UpdateDoctorRequest{Name: &name})

	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteDoctorDeactivates(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, zerolog.Nop())

	created, err := svc.CreateDoctor(context.Background(), &model.CreateDoctorRequest{
		Name:          "Greg House",
		Email:         "house@vollmed.example",
		Phone:         "555-0100",
		LicenseNumber: "CRM-12345",
		Specialty:     model.SpecialtyCardiology,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDoctor(context.Background(), created.ID))

	stored, err := svc.GetDoctor(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}
