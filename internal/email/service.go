package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/vollmed/clinic-api/internal/config"
	"github.com/vollmed/clinic-api/internal/model"
	"github.com/vollmed/clinic-api/internal/repository"
)

// Service sends booking notices to patients over SMTP.
type Service struct {
	dialer   *gomail.Dialer
	from     string
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	logger   zerolog.Logger
}

func NewService(
	cfg config.SMTPConfig,
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	logger zerolog.Logger,
) *Service {
	return &Service{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		patients: patients,
		doctors:  doctors,
		logger:   logger,
	}
}

func (s *Service) AppointmentScheduled(ctx context.Context, detail *model.AppointmentDetail) error {
	patient, err := s.patients.Get(ctx, detail.PatientID)
	if err != nil {
		return fmt.Errorf("failed to load patient for notification: %w", err)
	}
	doctor, err := s.doctors.Get(ctx, detail.DoctorID)
	if err != nil {
		return fmt.Errorf("failed to load doctor for notification: %w", err)
	}

	body := fmt.Sprintf(
		"Hello %s,\n\nYour appointment with Dr. %s is confirmed for %s.\n\nVollMed Clinic",
		patient.Name,
		doctor.Name,
		detail.ScheduledAt.Format("Monday, 02 Jan 2006 at 15:04"),
	)
	return s.send(patient.Email, "Appointment confirmed", body)
}

func (s *Service) AppointmentCancelled(ctx context.Context, appointment *model.Appointment) error {
	patient, err := s.patients.Get(ctx, appointment.PatientID)
	if err != nil {
		return fmt.Errorf("failed to load patient for notification: %w", err)
	}

	body := fmt.Sprintf(
		"Hello %s,\n\nYour appointment scheduled for %s has been cancelled.\n\nVollMed Clinic",
		patient.Name,
		appointment.ScheduledAt.Format("Monday, 02 Jan 2006 at 15:04"),
	)
	return s.send(patient.Email, "Appointment cancelled", body)
}

func (s *Service) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Debug().Str("to", to).Str("subject", subject).Msg("notification sent")
	return nil
}
