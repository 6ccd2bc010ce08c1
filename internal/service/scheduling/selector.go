package scheduling

import (
	"context"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/vollmed/clinic-api/internal/model"
	"github.com/vollmed/clinic-api/internal/repository"
	apperrors "github.com/vollmed/clinic-api/pkg/errors"
)

// DoctorSelector resolves which doctor a scheduling request binds to: the
// explicitly chosen one, or a uniformly random pick among the eligible
// doctors of the requested specialty.
type DoctorSelector struct {
	doctors repository.DoctorRepository
	intn    func(n int) int
}

// NewDoctorSelector builds a selector. intn is the randomness source for the
// uniform pick; pass nil for the default, or a deterministic function in
// tests.
func NewDoctorSelector(doctors repository.DoctorRepository, intn func(n int) int) *DoctorSelector {
	if intn == nil {
		intn = rand.IntN
	}
	return &DoctorSelector{doctors: doctors, intn: intn}
}

// Select returns the chosen doctor's id. uuid.Nil with a nil error means no
// doctor is available for the requested specialty and time; the caller
// decides how to surface that. When the request names a doctor explicitly the
// id is returned as-is: existence was already checked upstream and activity
// is the active-doctor rule's concern.
func (s *DoctorSelector) Select(ctx context.Context, req *model.ScheduleAppointmentRequest) (uuid.UUID, error) {
	if req.DoctorID != nil {
		return *req.DoctorID, nil
	}

	if req.Specialty == nil {
		return uuid.Nil, apperrors.Validation("specialty is required when no doctor is chosen")
	}

	candidates, err := s.doctors.ListEligible(ctx, *req.Specialty, req.ScheduledAt)
	if err != nil {
		return uuid.Nil, err
	}
	if len(candidates) == 0 {
		return uuid.Nil, nil
	}

	return candidates[s.intn(len(candidates))].ID, nil
}
