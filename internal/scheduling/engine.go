package scheduling

import (
	"context"
	"time"

	"carexpert-server/internal/apperr"
	"carexpert-server/internal/models"
	"carexpert-server/internal/notify"
)

// Respond actions
const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

// Engine enforces the appointment status state machine. Every operation takes
// the acting user explicitly so authorization is checked here, not in some
// ambient session state.
type Engine struct {
	store Store
	now   func() time.Time
}

// NewEngine creates an Engine backed by the given store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// BookRequest carries the patient-supplied booking fields. Date is a
// "2006-01-02" calendar date and TimeSlot a "15:04" local clinic time.
type BookRequest struct {
	DoctorID        string
	Date            string
	TimeSlot        string
	AppointmentType models.AppointmentType
	Notes           string
}

// Book creates a new pending appointment for the patient. The doctor's
// current consultation fee is snapshotted onto the record. No notification is
// emitted on booking; only responses to requests notify.
func (e *Engine) Book(ctx context.Context, patientID string, req BookRequest) (*models.Appointment, error) {
	if req.DoctorID == "" {
		return nil, apperr.Validation("doctorId is required")
	}
	date, err := time.ParseInLocation(dateLayout, req.Date, time.Local)
	if err != nil {
		return nil, apperr.Validation("date must be in %s format", dateLayout)
	}
	if _, err := time.Parse(timeLayout, req.TimeSlot); err != nil {
		return nil, apperr.Validation("time must be in %s format", timeLayout)
	}
	switch req.AppointmentType {
	case models.TypeOnline, models.TypeOffline:
	default:
		return nil, apperr.Validation("appointmentType must be %q or %q", models.TypeOnline, models.TypeOffline)
	}
	if !CombineDateTime(date, req.TimeSlot).After(e.now()) {
		return nil, apperr.Validation("appointment date and time must be in the future")
	}

	doctor, err := e.store.GetDoctor(ctx, req.DoctorID)
	if err != nil {
		if _, ok := err.(*apperr.NotFoundError); ok {
			return nil, apperr.Validation("unknown doctor")
		}
		return nil, err
	}

	appt := &models.Appointment{
		PatientID:       patientID,
		DoctorID:        doctor.ID,
		Date:            date,
		TimeSlot:        req.TimeSlot,
		AppointmentType: req.AppointmentType,
		Status:          models.StatusPending,
		Notes:           req.Notes,
		ConsultationFee: doctor.ConsultationFee,
	}
	if err := e.store.CreateAppointment(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// RespondRequest carries a doctor's decision on a pending request.
type RespondRequest struct {
	Action           string
	RejectionReason  string
	AlternativeSlots []string
}

// Respond lets the assigned doctor accept or reject a pending appointment
// request. Exactly one notification to the patient is persisted in the same
// transaction as the status change. A concurrent transition on the same
// record makes the loser fail with InvalidStateError, record unchanged.
func (e *Engine) Respond(ctx context.Context, doctorID, appointmentID string, req RespondRequest) (*models.Appointment, error) {
	if req.Action != ActionAccept && req.Action != ActionReject {
		return nil, apperr.Validation("action must be %q or %q", ActionAccept, ActionReject)
	}

	appt, err := e.store.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != doctorID {
		return nil, apperr.Forbidden("appointment is assigned to a different doctor")
	}
	if appt.Status != models.StatusPending {
		return nil, apperr.InvalidState("appointment is %s, only pending requests can be responded to", appt.Status)
	}

	doctor, err := e.store.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	var notification *models.Notification
	var mutate func(*models.Appointment)
	if req.Action == ActionAccept {
		notification = notify.AppointmentAccepted(appt, doctor)
		mutate = func(a *models.Appointment) {
			a.Status = models.StatusConfirmed
		}
	} else {
		notification = notify.AppointmentRejected(appt, doctor, req.RejectionReason, req.AlternativeSlots)
		reason := req.RejectionReason
		mutate = func(a *models.Appointment) {
			a.Status = models.StatusRejected
			a.RejectionReason = &reason
		}
	}

	updated, ok, err := e.store.Transition(ctx, appointmentID, models.StatusPending, mutate, &SideEffects{Notification: notification})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidState("appointment status already changed")
	}
	return updated, nil
}

// PrescriptionInput is the optional prescription attached when completing an
// appointment.
type PrescriptionInput struct {
	Medications  string
	Instructions string
	FileName     string
	FileType     string
	FileData     []byte
}

// CompleteRequest carries the completion fields.
type CompleteRequest struct {
	Notes        string
	Prescription *PrescriptionInput
}

// Complete marks a confirmed appointment as completed. When a prescription is
// supplied it is created in the same transaction and linked on the record.
func (e *Engine) Complete(ctx context.Context, doctorID, appointmentID string, req CompleteRequest) (*models.Appointment, error) {
	appt, err := e.store.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != doctorID {
		return nil, apperr.Forbidden("appointment is assigned to a different doctor")
	}
	if appt.Status != models.StatusConfirmed {
		return nil, apperr.InvalidState("appointment is %s, only confirmed appointments can be completed", appt.Status)
	}

	var rx *models.Prescription
	if req.Prescription != nil {
		rx = &models.Prescription{
			AppointmentID: appt.ID,
			PatientID:     appt.PatientID,
			DoctorID:      appt.DoctorID,
			Medications:   req.Prescription.Medications,
			Instructions:  req.Prescription.Instructions,
			FileName:      req.Prescription.FileName,
			FileType:      req.Prescription.FileType,
			FileData:      req.Prescription.FileData,
		}
	}
	mutate := func(a *models.Appointment) {
		a.Status = models.StatusCompleted
		if req.Notes != "" {
			a.Notes = req.Notes
		}
		if rx != nil {
			// The store creates the prescription before mutate runs,
			// so its id is populated here.
			a.PrescriptionID = &rx.ID
		}
	}

	updated, ok, err := e.store.Transition(ctx, appointmentID, models.StatusConfirmed, mutate, &SideEffects{Prescription: rx})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidState("appointment status already changed")
	}
	return updated, nil
}

// Cancel cancels a pending or confirmed appointment. Either party on the
// record may cancel; rebooking is the only way to change a slot.
func (e *Engine) Cancel(ctx context.Context, actorID, appointmentID string) (*models.Appointment, error) {
	appt, err := e.store.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != actorID && appt.DoctorID != actorID {
		return nil, apperr.Forbidden("you are not a party to this appointment")
	}
	if appt.Status != models.StatusPending && appt.Status != models.StatusConfirmed {
		return nil, apperr.InvalidState("appointment is %s and can no longer be cancelled", appt.Status)
	}

	updated, ok, err := e.store.Transition(ctx, appointmentID, appt.Status, func(a *models.Appointment) {
		a.Status = models.StatusCancelled
	}, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidState("appointment status already changed")
	}
	return updated, nil
}
