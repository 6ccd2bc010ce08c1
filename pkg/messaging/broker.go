package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Close() error
}

// Event channels for appointment lifecycle notifications.
const (
	ChannelAppointmentScheduled = "appointment.scheduled"
	ChannelAppointmentCancelled = "appointment.cancelled"
)
