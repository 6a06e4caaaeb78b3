package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carexpert-server/internal/apperr"
	"carexpert-server/internal/handlers"
	"carexpert-server/internal/models"
	"carexpert-server/internal/notify"
	"carexpert-server/internal/scheduling"
)

// stubStores backs both the scheduling and notify store interfaces with one
// in-memory "database", the way the real stores share one MySQL schema.
type stubStores struct {
	mu            sync.Mutex
	appointments  map[string]*models.Appointment
	users         map[string]*models.User
	notifications map[string]*models.Notification
}

func newStubStores() *stubStores {
	return &stubStores{
		appointments:  make(map[string]*models.Appointment),
		users:         make(map[string]*models.User),
		notifications: make(map[string]*models.Notification),
	}
}

func (s *stubStores) addUser(u *models.User) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.users[u.ID] = u
}

func (s *stubStores) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	now := time.Now()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	cp := *appt
	s.appointments[appt.ID] = &cp
	return nil
}

func (s *stubStores) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, apperr.NotFound("appointment")
	}
	cp := *a
	return &cp, nil
}

func (s *stubStores) ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Appointment
	for _, a := range s.appointments {
		if a.PatientID == patientID {
			cp := *a
			if doctor, ok := s.users[a.DoctorID]; ok {
				cp.Doctor = *doctor
			}
			out = append(out, cp)
		}
	}
	return out, nil
}

func (s *stubStores) ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Appointment
	for _, a := range s.appointments {
		if a.DoctorID == doctorID {
			cp := *a
			if patient, ok := s.users[a.PatientID]; ok {
				cp.Patient = *patient
			}
			out = append(out, cp)
		}
	}
	return out, nil
}

func (s *stubStores) Transition(ctx context.Context, id string, from models.AppointmentStatus, mutate func(*models.Appointment), effects *scheduling.SideEffects) (*models.Appointment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, false, apperr.NotFound("appointment")
	}
	if a.Status != from {
		return nil, false, nil
	}
	cp := *a
	mutate(&cp)
	cp.UpdatedAt = time.Now()
	s.appointments[id] = &cp
	if effects != nil && effects.Notification != nil {
		n := *effects.Notification
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		n.CreatedAt = time.Now()
		s.notifications[n.ID] = &n
	}
	out := cp
	return &out, true, nil
}

func (s *stubStores) GetDoctor(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.Role != models.RoleDoctor {
		return nil, apperr.NotFound("doctor")
	}
	cp := *u
	return &cp, nil
}

func (s *stubStores) Create(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	cp := *n
	s.notifications[n.ID] = &cp
	return nil
}

func (s *stubStores) Get(ctx context.Context, id string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, apperr.NotFound("notification")
	}
	cp := *n
	return &cp, nil
}

func (s *stubStores) ListForRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (s *stubStores) MarkRead(ctx context.Context, id string, readAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.notifications[id]; ok {
		n.IsRead = true
		n.ReadAt = &readAt
	}
	return nil
}

func (s *stubStores) MarkAllRead(ctx context.Context, recipientID string, readAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &readAt
			count++
		}
	}
	return count, nil
}

// envelope mirrors utils.ResponseData for decoding.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
}

func injectSession(userID string, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("userRole", role)
		c.Next()
	}
}

// testRouter mounts the patient and doctor surfaces with a stubbed session
// for the given identity.
func testRouter(s *stubStores, userID string, role models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := scheduling.NewEngine(s)
	query := scheduling.NewQuery(s)
	dispatcher := notify.NewDispatcher(s)

	patientHandler := handlers.NewPatientHandler(nil, engine, query, nil)
	doctorHandler := handlers.NewDoctorHandler(nil, engine, query)
	notificationHandler := handlers.NewNotificationHandler(dispatcher)

	r := gin.New()
	r.Use(injectSession(userID, role))
	r.POST("/api/patient/book-direct-appointment", patientHandler.BookDirectAppointment)
	r.GET("/api/patient/all-appointments", patientHandler.AllAppointments)
	r.PATCH("/api/patient/appointments/:id/cancel", patientHandler.CancelAppointment)
	r.GET("/api/patient/notifications", notificationHandler.List)
	r.PATCH("/api/patient/notifications/mark-all-read", notificationHandler.MarkAllRead)
	r.PATCH("/api/patient/notifications/:id/read", notificationHandler.MarkRead)
	r.GET("/api/doctor/pending-requests", doctorHandler.PendingRequests)
	r.PATCH("/api/doctor/appointment-requests/:id/respond", doctorHandler.RespondToRequest)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestBookAndRespondFlow(t *testing.T) {
	stores := newStubStores()
	doctor := &models.User{FullName: "Asha Rao", Role: models.RoleDoctor, Specialty: "Orthopedics", ConsultationFee: 150}
	stores.addUser(doctor)
	patient := &models.User{FullName: "Ravi Kumar", Role: models.RolePatient}
	stores.addUser(patient)

	patientAPI := testRouter(stores, patient.ID, models.RolePatient)
	doctorAPI := testRouter(stores, doctor.ID, models.RoleDoctor)

	// Patient books.
	w, env := doJSON(t, patientAPI, http.MethodPost, "/api/patient/book-direct-appointment", gin.H{
		"doctorId":        doctor.ID,
		"date":            time.Now().Add(48 * time.Hour).Format("2006-01-02"),
		"time":            "14:00",
		"appointmentType": "offline",
		"notes":           "knee pain",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	var booked models.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &booked))
	assert.Equal(t, models.StatusPending, booked.Status)
	assert.Equal(t, 150.0, booked.ConsultationFee)

	// Doctor sees it in the pending queue.
	w, env = doJSON(t, doctorAPI, http.MethodGet, "/api/doctor/pending-requests", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var queue []models.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &queue))
	require.Len(t, queue, 1)

	// Doctor accepts.
	respondPath := fmt.Sprintf("/api/doctor/appointment-requests/%s/respond", booked.ID)
	w, env = doJSON(t, doctorAPI, http.MethodPatch, respondPath, gin.H{"action": "accept"})
	require.Equal(t, http.StatusOK, w.Code)
	var confirmed models.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &confirmed))
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	// The patient got exactly one acceptance notification.
	w, env = doJSON(t, patientAPI, http.MethodGet, "/api/patient/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var notifications []models.Notification
	require.NoError(t, json.Unmarshal(env.Data, &notifications))
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationAppointmentAccepted, notifications[0].Type)
	assert.False(t, notifications[0].IsRead)

	// Accepting again conflicts and changes nothing.
	w, env = doJSON(t, doctorAPI, http.MethodPatch, respondPath, gin.H{"action": "accept"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)

	// A different doctor is forbidden outright.
	otherDoctor := &models.User{FullName: "Meera Nair", Role: models.RoleDoctor, Specialty: "Cardiology"}
	stores.addUser(otherDoctor)
	otherAPI := testRouter(stores, otherDoctor.ID, models.RoleDoctor)
	w, _ = doJSON(t, otherAPI, http.MethodPatch, respondPath, gin.H{"action": "reject"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBookPastDateRejected(t *testing.T) {
	stores := newStubStores()
	doctor := &models.User{FullName: "Asha Rao", Role: models.RoleDoctor}
	stores.addUser(doctor)
	patient := &models.User{FullName: "Ravi Kumar", Role: models.RolePatient}
	stores.addUser(patient)
	patientAPI := testRouter(stores, patient.ID, models.RolePatient)

	w, env := doJSON(t, patientAPI, http.MethodPost, "/api/patient/book-direct-appointment", gin.H{
		"doctorId":        doctor.ID,
		"date":            time.Now().Add(-48 * time.Hour).Format("2006-01-02"),
		"time":            "14:00",
		"appointmentType": "online",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
}

func TestRejectionFlowAndNotificationReads(t *testing.T) {
	stores := newStubStores()
	doctor := &models.User{FullName: "Asha Rao", Role: models.RoleDoctor, ConsultationFee: 100}
	stores.addUser(doctor)
	patient := &models.User{FullName: "Ravi Kumar", Role: models.RolePatient}
	stores.addUser(patient)
	patientAPI := testRouter(stores, patient.ID, models.RolePatient)
	doctorAPI := testRouter(stores, doctor.ID, models.RoleDoctor)

	_, env := doJSON(t, patientAPI, http.MethodPost, "/api/patient/book-direct-appointment", gin.H{
		"doctorId":        doctor.ID,
		"date":            time.Now().Add(48 * time.Hour).Format("2006-01-02"),
		"time":            "10:00",
		"appointmentType": "online",
	})
	var booked models.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &booked))

	w, env := doJSON(t, doctorAPI, http.MethodPatch,
		fmt.Sprintf("/api/doctor/appointment-requests/%s/respond", booked.ID), gin.H{
			"action":           "reject",
			"rejectionReason":  "fully booked",
			"alternativeSlots": []string{"2025-03-02 10:00"},
		})
	require.Equal(t, http.StatusOK, w.Code)
	var rejected models.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &rejected))
	assert.Equal(t, models.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "fully booked", *rejected.RejectionReason)

	// Mark everything read, twice; the second pass finds nothing.
	w, env = doJSON(t, patientAPI, http.MethodPatch, "/api/patient/notifications/mark-all-read", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result map[string]int64
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, int64(1), result["updated"])

	_, env = doJSON(t, patientAPI, http.MethodPatch, "/api/patient/notifications/mark-all-read", nil)
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, int64(0), result["updated"])
}

func TestAllAppointmentsListingShape(t *testing.T) {
	stores := newStubStores()
	doctor := &models.User{FullName: "Asha Rao", Role: models.RoleDoctor, ConsultationFee: 100}
	stores.addUser(doctor)
	patient := &models.User{FullName: "Ravi Kumar", Role: models.RolePatient}
	stores.addUser(patient)
	patientAPI := testRouter(stores, patient.ID, models.RolePatient)

	_, env := doJSON(t, patientAPI, http.MethodPost, "/api/patient/book-direct-appointment", gin.H{
		"doctorId":        doctor.ID,
		"date":            time.Now().Add(48 * time.Hour).Format("2006-01-02"),
		"time":            "09:30",
		"appointmentType": "offline",
	})
	var booked models.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &booked))

	w, env := doJSON(t, patientAPI, http.MethodGet, "/api/patient/all-appointments", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listing struct {
		Appointments []models.Appointment `json:"appointments"`
		Upcoming     []models.Appointment `json:"upcoming"`
		Past         []models.Appointment `json:"past"`
		Counts       struct {
			Total   int `json:"total"`
			Pending int `json:"pending"`
		} `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	require.Len(t, listing.Appointments, 1)
	assert.Len(t, listing.Upcoming, 1)
	assert.Empty(t, listing.Past)
	assert.Equal(t, 1, listing.Counts.Total)
	assert.Equal(t, 1, listing.Counts.Pending)

	// Cancel, then the appointment is past and no longer pending.
	w, _ = doJSON(t, patientAPI, http.MethodPatch,
		fmt.Sprintf("/api/patient/appointments/%s/cancel", booked.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, env = doJSON(t, patientAPI, http.MethodGet, "/api/patient/all-appointments", nil)
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	assert.Empty(t, listing.Upcoming)
	assert.Len(t, listing.Past, 1)
}
