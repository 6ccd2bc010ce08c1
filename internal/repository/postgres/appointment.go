package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vollmed/clinic-api/internal/model"
	apperrors "github.com/vollmed/clinic-api/pkg/errors"
)

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, doctor_id, patient_id, scheduled_at, cancel_reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := ext(ctx, r.db).ExecContext(ctx, query,
		appointment.ID,
		appointment.DoctorID,
		appointment.PatientID,
		appointment.ScheduledAt,
		appointment.CancelReason,
		appointment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, scheduled_at, cancel_reason, created_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &appointment, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("appointment")
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM appointments WHERE id = $1)`

	var exists bool
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &exists, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to check appointment existence: %w", err)
	}
	return exists, nil
}

func (r *appointmentRepository) SetCancelReason(ctx context.Context, id uuid.UUID, reason model.CancelReason) error {
	// cancel_reason IS NULL guards the one-way transition at the database
	// level as well
	query := `
		UPDATE appointments
		SET cancel_reason = $1
		WHERE id = $2 AND cancel_reason IS NULL
	`
	result, err := ext(ctx, r.db).ExecContext(ctx, query, reason, id)
	if err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.Validation("appointment is already cancelled")
	}
	return nil
}

func (r *appointmentRepository) ExistsForPatientBetween(ctx context.Context, patientID uuid.UUID, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE patient_id = $1
			AND scheduled_at BETWEEN $2 AND $3
			AND cancel_reason IS NULL
		)
	`
	var exists bool
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &exists, query, patientID, start, end)
	if err != nil {
		return false, fmt.Errorf("failed to check patient appointments: %w", err)
	}
	return exists, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	filters.Normalize()

	query := `
		SELECT id, doctor_id, patient_id, scheduled_at, cancel_reason, created_at
		FROM appointments
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.DoctorID != uuid.Nil {
		query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
		args = append(args, filters.DoctorID)
		argCount++
	}

	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}

	query += fmt.Sprintf(" ORDER BY scheduled_at ASC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filters.PageSize, filters.Offset())

	var appointments []*model.Appointment
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}
