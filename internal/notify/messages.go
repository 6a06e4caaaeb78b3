package notify

import (
	"encoding/json"
	"fmt"
	"strings"

	"carexpert-server/internal/models"
)

const dateLayout = "2006-01-02"

// AppointmentAccepted builds the notification sent to the patient when a
// doctor accepts their appointment request.
func AppointmentAccepted(appt *models.Appointment, doctor *models.User) *models.Notification {
	apptID := appt.ID
	return &models.Notification{
		RecipientID:   appt.PatientID,
		AppointmentID: &apptID,
		Type:          models.NotificationAppointmentAccepted,
		Title:         "Appointment confirmed",
		Message: fmt.Sprintf("Dr. %s accepted your appointment on %s at %s.",
			doctor.FullName, appt.Date.Format(dateLayout), appt.TimeSlot),
	}
}

// AppointmentRejected builds the notification sent to the patient when a
// doctor rejects their appointment request. Suggested alternative slots are
// appended to the message and carried in the data payload; they are not
// persisted on the appointment itself.
func AppointmentRejected(appt *models.Appointment, doctor *models.User, reason string, alternativeSlots []string) *models.Notification {
	apptID := appt.ID
	var b strings.Builder
	fmt.Fprintf(&b, "Dr. %s declined your appointment request for %s at %s.",
		doctor.FullName, appt.Date.Format(dateLayout), appt.TimeSlot)
	if reason != "" {
		fmt.Fprintf(&b, " Reason: %s.", reason)
	}
	if len(alternativeSlots) > 0 {
		fmt.Fprintf(&b, " Suggested alternative slots: %s.", strings.Join(alternativeSlots, ", "))
	}

	n := &models.Notification{
		RecipientID:   appt.PatientID,
		AppointmentID: &apptID,
		Type:          models.NotificationAppointmentRejected,
		Title:         "Appointment request declined",
		Message:       b.String(),
	}
	if len(alternativeSlots) > 0 {
		data, err := json.Marshal(map[string][]string{"alternativeSlots": alternativeSlots})
		if err == nil {
			n.Data = data
		}
	}
	return n
}
