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

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (
			id, name, email, phone, license_number, specialty, active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := ext(ctx, r.db).ExecContext(ctx, query,
		doctor.ID,
		doctor.Name,
		doctor.Email,
		doctor.Phone,
		doctor.LicenseNumber,
		doctor.Specialty,
		doctor.Active,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT id, name, email, phone, license_number, specialty, active,
			   created_at, updated_at
		FROM doctors
		WHERE id = $1
	`
	var doctor model.Doctor
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &doctor, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("doctor")
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	query := `
		UPDATE doctors
		SET name = $1, phone = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := ext(ctx, r.db).ExecContext(ctx, query,
		doctor.Name,
		doctor.Phone,
		doctor.UpdatedAt,
		doctor.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update doctor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("doctor")
	}
	return nil
}

func (r *doctorRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE doctors
		SET active = false, updated_at = $1
		WHERE id = $2
	`
	result, err := ext(ctx, r.db).ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate doctor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("doctor")
	}
	return nil
}

func (r *doctorRepository) List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error) {
	filters.Normalize()

	query := `
		SELECT id, name, email, phone, license_number, specialty, active,
			   created_at, updated_at
		FROM doctors
		WHERE active = true
	`
	args := []interface{}{}
	argCount := 1

	if filters.Specialty != "" {
		query += fmt.Sprintf(" AND specialty = $%d", argCount)
		args = append(args, filters.Specialty)
		argCount++
	}

	query += fmt.Sprintf(" ORDER BY name ASC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filters.PageSize, filters.Offset())

	var doctors []*model.Doctor
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &doctors, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM doctors WHERE id = $1)`

	var exists bool
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &exists, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to check doctor existence: %w", err)
	}
	return exists, nil
}

func (r *doctorRepository) ExistsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM doctors WHERE id = $1 AND active = true)`

	var exists bool
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &exists, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to check doctor existence: %w", err)
	}
	return exists, nil
}

func (r *doctorRepository) ListEligible(ctx context.Context, specialty model.Specialty, at time.Time) ([]*model.Doctor, error) {
	query := `
		SELECT d.id, d.name, d.email, d.phone, d.license_number, d.specialty,
			   d.active, d.created_at, d.updated_at
		FROM doctors d
		WHERE d.active = true
		AND d.specialty = $1
		AND NOT EXISTS (
			SELECT 1 FROM appointments a
			WHERE a.doctor_id = d.id
			AND a.scheduled_at = $2
			AND a.cancel_reason IS NULL
		)
	`
	var doctors []*model.Doctor
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &doctors, query, specialty, at)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible doctors: %w", err)
	}
	return doctors, nil
}
