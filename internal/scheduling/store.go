package scheduling

import (
	"context"

	"carexpert-server/internal/models"
)

// SideEffects are records persisted atomically with a status transition, so a
// crash between the status write and the notification write cannot lose the
// notification.
type SideEffects struct {
	Notification *models.Notification
	Prescription *models.Prescription
}

// Store is the persistence surface the lifecycle engine and query service
// need. Implementations return *apperr.NotFoundError for unknown ids.
type Store interface {
	CreateAppointment(ctx context.Context, appt *models.Appointment) error
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)

	// ListByPatient and ListByDoctor return the appointments with the
	// counterpart user preloaded.
	ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error)

	// Transition atomically moves the appointment out of status `from`:
	// the row is locked, the prescription side effect (if any) is created,
	// mutate is applied, the row is saved and the notification side effect
	// (if any) is created — all in one transaction. It returns ok=false,
	// with the record unchanged, when the appointment is no longer in
	// `from` (a concurrent transition won).
	Transition(ctx context.Context, id string, from models.AppointmentStatus, mutate func(*models.Appointment), effects *SideEffects) (*models.Appointment, bool, error)

	// GetDoctor returns the user with the given id only if it has the
	// doctor role.
	GetDoctor(ctx context.Context, id string) (*models.User, error)
}
