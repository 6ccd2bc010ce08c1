package model

import (
	"time"

	"github.com/google/uuid"
)

// CancelReason is the enumerated reason an appointment was cancelled.
type CancelReason string

const (
	CancelReasonPatientWithdrew CancelReason = "patient_withdrew"
	CancelReasonDoctorCancelled CancelReason = "doctor_cancelled"
	CancelReasonOther           CancelReason = "other"
)

var CancelReasons = []CancelReason{
	CancelReasonPatientWithdrew,
	CancelReasonDoctorCancelled,
	CancelReasonOther,
}

func (r CancelReason) Valid() bool {
	for _, known := range CancelReasons {
		if r == known {
			return true
		}
	}
	return false
}

// Appointment links one patient to one doctor at a point in time.
// CancelReason is nil while the appointment is active; once set the
// appointment is terminal.
type Appointment struct {
	ID           uuid.UUID     `db:"id" json:"id"`
	DoctorID     uuid.UUID     `db:"doctor_id" json:"doctor_id"`
	PatientID    uuid.UUID     `db:"patient_id" json:"patient_id"`
	ScheduledAt  time.Time     `db:"scheduled_at" json:"scheduled_at"`
	CancelReason *CancelReason `db:"cancel_reason" json:"cancel_reason,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}

// Cancelled reports whether the appointment has reached its terminal state.
func (a *Appointment) Cancelled() bool {
	return a.CancelReason != nil
}

// ScheduleAppointmentRequest asks for a new booking. DoctorID is optional;
// Specialty is required exactly when DoctorID is absent.
type ScheduleAppointmentRequest struct {
	PatientID   uuid.UUID  `json:"patient_id" binding:"required"`
	DoctorID    *uuid.UUID `json:"doctor_id"`
	Specialty   *Specialty `json:"specialty" binding:"omitempty,specialty"`
	ScheduledAt time.Time  `json:"scheduled_at" binding:"required"`
}

type CancelAppointmentRequest struct {
	AppointmentID uuid.UUID    `json:"appointment_id"`
	Reason        CancelReason `json:"reason" binding:"required,cancel_reason"`
}

// AppointmentDetail is the view returned after a successful booking.
type AppointmentDetail struct {
	ID          uuid.UUID `json:"id"`
	DoctorID    uuid.UUID `json:"doctor_id"`
	PatientID   uuid.UUID `json:"patient_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

type AppointmentFilters struct {
	Pagination
	DoctorID  uuid.UUID
	PatientID uuid.UUID
}
