package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vollmed/clinic-api/internal/model"
	"github.com/vollmed/clinic-api/internal/repository"
	apperrors "github.com/vollmed/clinic-api/pkg/errors"
	"github.com/vollmed/clinic-api/pkg/messaging"
	"github.com/vollmed/clinic-api/pkg/metrics"
)

// Notifier delivers booking notices to the patient. Failures are logged and
// never fail the operation.
type Notifier interface {
	AppointmentScheduled(ctx context.Context, detail *model.AppointmentDetail) error
	AppointmentCancelled(ctx context.Context, appointment *model.Appointment) error
}

// Hooks are best-effort side effects run after a successful commit. Any of
// the fields may be nil.
type Hooks struct {
	Metrics  *metrics.Metrics
	Broker   messaging.Broker
	Notifier Notifier
}

// Service orchestrates appointment scheduling and cancellation. Each public
// operation runs inside one transaction: either every read and write commits
// or none do.
type Service struct {
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
	tx           repository.TxManager
	selector     *DoctorSelector
	scheduling   *Pipeline[*model.ScheduleAppointmentRequest]
	cancellation *Pipeline[*model.CancelAppointmentRequest]
	hooks        Hooks
	logger       zerolog.Logger
	now          func() time.Time
}

func NewService(
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	appointments repository.AppointmentRepository,
	tx repository.TxManager,
	selector *DoctorSelector,
	hooks Hooks,
	logger zerolog.Logger,
	now func() time.Time,
) *Service {
	if now == nil {
		now = time.Now
	}

	s := &Service{
		doctors:      doctors,
		patients:     patients,
		appointments: appointments,
		tx:           tx,
		selector:     selector,
		hooks:        hooks,
		logger:       logger,
		now:          now,
	}

	s.scheduling = NewPipeline(NewSchedulingRules(doctors, patients, appointments, now)...).
		OnReject(s.countRejection)
	s.cancellation = NewPipeline(NewCancellationRules(appointments, now)...).
		OnReject(s.countRejection)

	return s
}

// Schedule books a new appointment and returns its detail view.
func (s *Service) Schedule(ctx context.Context, req *model.ScheduleAppointmentRequest) (*model.AppointmentDetail, error) {
	start := s.now()

	var appointment *model.Appointment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.patients.Exists(ctx, req.PatientID)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.Validation("patient id does not exist")
		}

		if req.DoctorID != nil {
			exists, err := s.doctors.Exists(ctx, *req.DoctorID)
			if err != nil {
				return err
			}
			if !exists {
				return apperrors.Validation("doctor id does not exist")
			}
		}

		if err := s.scheduling.Run(ctx, req); err != nil {
			return err
		}

		doctorID, err := s.selector.Select(ctx, req)
		if err != nil {
			return err
		}
		if doctorID == uuid.Nil {
			return apperrors.Validation("no doctor available on that date")
		}

		appointment = &model.Appointment{
			ID:          uuid.New(),
			DoctorID:    doctorID,
			PatientID:   req.PatientID,
			ScheduledAt: req.ScheduledAt,
			CreatedAt:   s.now(),
		}
		return s.appointments.Create(ctx, appointment)
	})
	if err != nil {
		s.logger.Warn().Err(err).
			Str("patient_id", req.PatientID.String()).
			Time("scheduled_at", req.ScheduledAt).
			Msg("scheduling rejected")
		return nil, err
	}

	detail := &model.AppointmentDetail{
		ID:          appointment.ID,
		DoctorID:    appointment.DoctorID,
		PatientID:   appointment.PatientID,
		ScheduledAt: appointment.ScheduledAt,
	}

	s.logger.Info().
		Str("appointment_id", detail.ID.String()).
		Str("doctor_id", detail.DoctorID.String()).
		Str("patient_id", detail.PatientID.String()).
		Time("scheduled_at", detail.ScheduledAt).
		Msg("appointment scheduled")

	if s.hooks.Metrics != nil {
		s.hooks.Metrics.AppointmentsScheduled.Inc()
		s.hooks.Metrics.SchedulingLatency.Observe(s.now().Sub(start).Seconds())
	}
	s.publish(ctx, messaging.ChannelAppointmentScheduled, appointmentEvent{
		AppointmentID: appointment.ID,
		DoctorID:      appointment.DoctorID,
		PatientID:     appointment.PatientID,
		ScheduledAt:   appointment.ScheduledAt,
	})
	if s.hooks.Notifier != nil {
		if err := s.hooks.Notifier.AppointmentScheduled(ctx, detail); err != nil {
			s.logger.Warn().Err(err).Msg("failed to send booking confirmation")
		}
	}

	return detail, nil
}

// Cancel moves an appointment to its terminal cancelled state. The
// transition is one-way: cancelling an already-cancelled appointment is
// rejected.
func (s *Service) Cancel(ctx context.Context, req *model.CancelAppointmentRequest) error {
	var appointment *model.Appointment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.appointments.Exists(ctx, req.AppointmentID)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.Validation("appointment id does not exist")
		}

		appointment, err = s.appointments.Get(ctx, req.AppointmentID)
		if err != nil {
			return err
		}
		if appointment.Cancelled() {
			return apperrors.Validation("appointment is already cancelled")
		}

		if err := s.cancellation.Run(ctx, req); err != nil {
			return err
		}

		return s.appointments.SetCancelReason(ctx, req.AppointmentID, req.Reason)
	})
	if err != nil {
		s.logger.Warn().Err(err).
			Str("appointment_id", req.AppointmentID.String()).
			Msg("cancellation rejected")
		return err
	}

	appointment.CancelReason = &req.Reason

	s.logger.Info().
		Str("appointment_id", req.AppointmentID.String()).
		Str("reason", string(req.Reason)).
		Msg("appointment cancelled")

	if s.hooks.Metrics != nil {
		s.hooks.Metrics.AppointmentsCancelled.Inc()
	}
	s.publish(ctx, messaging.ChannelAppointmentCancelled, appointmentEvent{
		AppointmentID: appointment.ID,
		DoctorID:      appointment.DoctorID,
		PatientID:     appointment.PatientID,
		ScheduledAt:   appointment.ScheduledAt,
		Reason:        appointment.CancelReason,
	})
	if s.hooks.Notifier != nil {
		if err := s.hooks.Notifier.AppointmentCancelled(ctx, appointment); err != nil {
			s.logger.Warn().Err(err).Msg("failed to send cancellation notice")
		}
	}

	return nil
}

// Get returns one appointment.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.appointments.Get(ctx, id)
}

// List returns appointments matching the filters.
func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.appointments.List(ctx, filters)
}

func (s *Service) countRejection(rule string) {
	if s.hooks.Metrics != nil {
		s.hooks.Metrics.RuleRejections.WithLabelValues(rule).Inc()
	}
}

type appointmentEvent struct {
	AppointmentID uuid.UUID           `json:"appointment_id"`
	DoctorID      uuid.UUID           `json:"doctor_id"`
	PatientID     uuid.UUID           `json:"patient_id"`
	ScheduledAt   time.Time           `json:"scheduled_at"`
	Reason        *model.CancelReason `json:"reason,omitempty"`
}

func (s *Service) publish(ctx context.Context, channel string, event appointmentEvent) {
	if s.hooks.Broker == nil {
		return
	}
	if err := s.hooks.Broker.Publish(ctx, channel, event); err != nil {
		if s.hooks.Metrics != nil {
			s.hooks.Metrics.EventsFailed.Inc()
		}
		s.logger.Warn().Err(err).Str("channel", channel).Msg("failed to publish appointment event")
		return
	}
	if s.hooks.Metrics != nil {
		s.hooks.Metrics.EventsPublished.Inc()
	}
}
