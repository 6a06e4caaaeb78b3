package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"carexpert-server/internal/middleware"
	"carexpert-server/internal/models"
	"carexpert-server/internal/scheduling"
	"carexpert-server/internal/storage"
	"carexpert-server/internal/utils"
)

// PatientHandler handles the patient dashboard requests.
type PatientHandler struct {
	DB            *gorm.DB
	Engine        *scheduling.Engine
	Query         *scheduling.Query
	Prescriptions *storage.PrescriptionStore
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB, engine *scheduling.Engine, query *scheduling.Query, prescriptions *storage.PrescriptionStore) *PatientHandler {
	return &PatientHandler{DB: db, Engine: engine, Query: query, Prescriptions: prescriptions}
}

// FetchAllDoctors lists doctors for the booking page, optionally narrowed by
// specialty or a search term.
func (h *PatientHandler) FetchAllDoctors(c *gin.Context) {
	query := h.DB.Where("role = ?", models.RoleDoctor)
	if specialty := c.Query("specialty"); specialty != "" {
		query = query.Where("specialty = ?", specialty)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("full_name LIKE ? OR specialty LIKE ?", like, like)
	}

	var doctors []models.User
	if err := query.Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	sanitized := make([]models.UserSanitized, len(doctors))
	for i, doctor := range doctors {
		sanitized[i] = doctor.Sanitize()
	}

	utils.Success(c, "Doctors fetched successfully", sanitized)
}

// BookAppointmentRequest represents the request body for booking.
type BookAppointmentRequest struct {
	DoctorID        string `json:"doctorId" binding:"required,uuid"`
	Date            string `json:"date" binding:"required"`
	Time            string `json:"time" binding:"required"`
	AppointmentType string `json:"appointmentType" binding:"required,oneof=online offline"`
	Notes           string `json:"notes"`
}

// BookDirectAppointment creates a pending appointment request for a doctor.
func (h *PatientHandler) BookDirectAppointment(c *gin.Context) {
	var req BookAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patientID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appt, err := h.Engine.Book(c.Request.Context(), patientID, scheduling.BookRequest{
		DoctorID:        req.DoctorID,
		Date:            req.Date,
		TimeSlot:        req.Time,
		AppointmentType: models.AppointmentType(req.AppointmentType),
		Notes:           req.Notes,
	})
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Created(c, "Appointment request created", appt)
}

// AllAppointments returns the patient's appointment history with the
// upcoming/past split and per-status counts the dashboard tiles use.
func (h *PatientHandler) AllAppointments(c *gin.Context) {
	patientID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	listAppointments(c, h.Query, patientID, models.RolePatient)
}

// CancelAppointment cancels one of the patient's own appointments.
func (h *PatientHandler) CancelAppointment(c *gin.Context) {
	appointmentID := c.Param("id")
	if _, err := uuid.Parse(appointmentID); err != nil {
		utils.BadRequest(c, "Invalid Appointment ID format")
		return
	}

	patientID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appt, err := h.Engine.Cancel(c.Request.Context(), patientID, appointmentID)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Success(c, "Appointment cancelled", appt)
}

// ViewPrescriptions lists the patient's prescriptions.
func (h *PatientHandler) ViewPrescriptions(c *gin.Context) {
	patientID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	prescriptions, err := h.Prescriptions.ListByPatient(c.Request.Context(), patientID)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch prescriptions: "+err.Error())
		return
	}

	utils.Success(c, "Prescriptions fetched successfully", prescriptions)
}

// PrescriptionPDF streams the stored prescription PDF to its patient.
func (h *PatientHandler) PrescriptionPDF(c *gin.Context) {
	prescriptionID := c.Param("id")
	if _, err := uuid.Parse(prescriptionID); err != nil {
		utils.BadRequest(c, "Invalid Prescription ID format")
		return
	}

	patientID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	rx, err := h.Prescriptions.Get(c.Request.Context(), prescriptionID)
	if err != nil {
		utils.DomainError(c, err)
		return
	}
	if rx.PatientID != patientID {
		utils.Forbidden(c, "You are not authorized to download this prescription")
		return
	}
	if len(rx.FileData) == 0 {
		utils.NotFound(c, "No PDF stored for this prescription")
		return
	}

	fileType := rx.FileType
	if fileType == "" {
		fileType = "application/pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+rx.FileName+`"`)
	c.Data(http.StatusOK, fileType, rx.FileData)
}

// GetProfile returns the patient's own profile.
func (h *PatientHandler) GetProfile(c *gin.Context) {
	getProfile(c, h.DB)
}

// UpdatePatientProfileRequest represents the editable patient profile fields.
type UpdatePatientProfileRequest struct {
	FullName       string `json:"fullName"`
	ProfileImage   string `json:"profileImage"`
	MedicalHistory string `json:"medicalHistory"`
}

// UpdateProfile updates the patient's own profile.
func (h *PatientHandler) UpdateProfile(c *gin.Context) {
	var req UpdatePatientProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil { // partial update
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.ProfileImage != "" {
		user.ProfileImage = req.ProfileImage
	}
	if req.MedicalHistory != "" {
		user.MedicalHistory = req.MedicalHistory
	}

	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update profile: "+err.Error())
		return
	}

	utils.Success(c, "Profile updated successfully", user.Sanitize())
}

// appointmentListing is the payload shape both dashboards consume.
type appointmentListing struct {
	Appointments []models.Appointment    `json:"appointments"`
	Upcoming     []models.Appointment    `json:"upcoming"`
	Past         []models.Appointment    `json:"past"`
	Counts       scheduling.StatusCounts `json:"counts"`
}

func listAppointments(c *gin.Context, q *scheduling.Query, actorID string, role models.Role) {
	filter := scheduling.Filter{
		Status: models.AppointmentStatus(c.Query("status")),
		Search: c.Query("search"),
	}
	if from := c.Query("from"); from != "" {
		t, err := time.ParseInLocation("2006-01-02", from, time.Local)
		if err != nil {
			utils.BadRequest(c, "from must be a 2006-01-02 date")
			return
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.ParseInLocation("2006-01-02", to, time.Local)
		if err != nil {
			utils.BadRequest(c, "to must be a 2006-01-02 date")
			return
		}
		filter.To = &t
	}

	appts, err := q.List(c.Request.Context(), actorID, role, filter)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	upcoming, past := scheduling.SplitUpcomingPast(appts, time.Now())
	utils.Success(c, "Appointments fetched successfully", appointmentListing{
		Appointments: appts,
		Upcoming:     upcoming,
		Past:         past,
		Counts:       scheduling.CountsByStatus(appts),
	})
}

func getProfile(c *gin.Context, db *gorm.DB) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Profile fetched successfully", user.Sanitize())
}
