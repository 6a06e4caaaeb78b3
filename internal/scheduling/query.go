package scheduling

import (
	"context"
	"sort"
	"strings"
	"time"

	"carexpert-server/internal/apperr"
	"carexpert-server/internal/models"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// CombineDateTime merges the calendar date with the "15:04" time slot. When
// the slot does not parse the bare date is returned.
func CombineDateTime(date time.Time, slot string) time.Time {
	t, err := time.Parse(timeLayout, slot)
	if err != nil {
		return date
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
}

// Upcoming reports whether the appointment still lies ahead. The combined
// date+time is compared, not the date alone, so a same-day appointment later
// than now counts as upcoming. Cancelled and rejected appointments are never
// upcoming.
func Upcoming(appt models.Appointment, now time.Time) bool {
	if appt.Status == models.StatusCancelled || appt.Status == models.StatusRejected {
		return false
	}
	return !CombineDateTime(appt.Date, appt.TimeSlot).Before(now)
}

// SplitUpcomingPast partitions appointments into upcoming and past. Every
// appointment lands in exactly one of the two slices.
func SplitUpcomingPast(appts []models.Appointment, now time.Time) (upcoming, past []models.Appointment) {
	upcoming = make([]models.Appointment, 0, len(appts))
	past = make([]models.Appointment, 0, len(appts))
	for _, a := range appts {
		if Upcoming(a, now) {
			upcoming = append(upcoming, a)
		} else {
			past = append(past, a)
		}
	}
	return upcoming, past
}

// StatusCounts summarizes appointments for the dashboard tiles.
type StatusCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Rejected  int `json:"rejected"`
}

// CountsByStatus tallies appointments per status.
func CountsByStatus(appts []models.Appointment) StatusCounts {
	counts := StatusCounts{Total: len(appts)}
	for _, a := range appts {
		switch a.Status {
		case models.StatusPending:
			counts.Pending++
		case models.StatusConfirmed:
			counts.Confirmed++
		case models.StatusCompleted:
			counts.Completed++
		case models.StatusCancelled:
			counts.Cancelled++
		case models.StatusRejected:
			counts.Rejected++
		}
	}
	return counts
}

// Filter narrows an appointment history listing.
type Filter struct {
	Status models.AppointmentStatus
	// Search matches the counterpart's name, and for doctors their
	// specialty, case-insensitively.
	Search string
	// From and To bound the appointment calendar date, inclusive.
	From *time.Time
	To   *time.Time
}

// Query serves the appointment history views shared by the patient and doctor
// dashboards.
type Query struct {
	store Store
}

// NewQuery creates a Query backed by the given store.
func NewQuery(store Store) *Query {
	return &Query{store: store}
}

// List returns the actor's appointments, filtered, newest-created first.
func (q *Query) List(ctx context.Context, actorID string, role models.Role, filter Filter) ([]models.Appointment, error) {
	var appts []models.Appointment
	var err error
	switch role {
	case models.RolePatient:
		appts, err = q.store.ListByPatient(ctx, actorID)
	case models.RoleDoctor:
		appts, err = q.store.ListByDoctor(ctx, actorID)
	default:
		return nil, apperr.Forbidden("role %s cannot list appointments", role)
	}
	if err != nil {
		return nil, err
	}

	filtered := appts[:0]
	for _, a := range appts {
		if matches(a, role, filter) {
			filtered = append(filtered, a)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	return filtered, nil
}

// PendingForDoctor returns the doctor's open request queue, newest first.
func (q *Query) PendingForDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	return q.List(ctx, doctorID, models.RoleDoctor, Filter{Status: models.StatusPending})
}

func matches(a models.Appointment, role models.Role, f Filter) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.From != nil && a.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && a.Date.After(*f.To) {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		var haystack string
		if role == models.RolePatient {
			haystack = strings.ToLower(a.Doctor.FullName + " " + a.Doctor.Specialty)
		} else {
			haystack = strings.ToLower(a.Patient.FullName)
		}
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}
