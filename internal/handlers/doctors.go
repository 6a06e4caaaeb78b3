package handlers

import (
	"encoding/base64"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"carexpert-server/internal/middleware"
	"carexpert-server/internal/models"
	"carexpert-server/internal/scheduling"
	"carexpert-server/internal/utils"
)

// DoctorHandler handles the doctor dashboard requests.
type DoctorHandler struct {
	DB     *gorm.DB
	Engine *scheduling.Engine
	Query  *scheduling.Query
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(db *gorm.DB, engine *scheduling.Engine, query *scheduling.Query) *DoctorHandler {
	return &DoctorHandler{DB: db, Engine: engine, Query: query}
}

// PendingRequests lists the doctor's open appointment requests.
func (h *DoctorHandler) PendingRequests(c *gin.Context) {
	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	requests, err := h.Query.PendingForDoctor(c.Request.Context(), doctorID)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Success(c, "Pending requests fetched successfully", requests)
}

// AllAppointments returns the doctor's appointment history with the
// upcoming/past split and per-status counts.
func (h *DoctorHandler) AllAppointments(c *gin.Context) {
	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	listAppointments(c, h.Query, doctorID, models.RoleDoctor)
}

// RespondToRequestRequest represents the doctor's decision payload.
type RespondToRequestRequest struct {
	Action           string   `json:"action" binding:"required,oneof=accept reject"`
	RejectionReason  string   `json:"rejectionReason"`
	AlternativeSlots []string `json:"alternativeSlots"`
}

// RespondToRequest accepts or rejects a pending appointment request.
func (h *DoctorHandler) RespondToRequest(c *gin.Context) {
	appointmentID := c.Param("id")
	if _, err := uuid.Parse(appointmentID); err != nil {
		utils.BadRequest(c, "Invalid Appointment ID format")
		return
	}

	var req RespondToRequestRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appt, err := h.Engine.Respond(c.Request.Context(), doctorID, appointmentID, scheduling.RespondRequest{
		Action:           req.Action,
		RejectionReason:  req.RejectionReason,
		AlternativeSlots: req.AlternativeSlots,
	})
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Success(c, "Appointment request updated", appt)
}

// CompleteAppointmentRequest represents the completion payload. The
// prescription PDF travels base64-encoded in the JSON body.
type CompleteAppointmentRequest struct {
	Notes        string                    `json:"notes"`
	Prescription *PrescriptionAttachedBody `json:"prescription"`
}

// PrescriptionAttachedBody is the prescription attached on completion.
type PrescriptionAttachedBody struct {
	Medications  string `json:"medications" binding:"required"`
	Instructions string `json:"instructions"`
	FileName     string `json:"fileName"`
	FileType     string `json:"fileType"`
	FileData     string `json:"fileData"` // base64
}

// CompleteAppointment marks a confirmed appointment as completed, optionally
// attaching a prescription.
func (h *DoctorHandler) CompleteAppointment(c *gin.Context) {
	appointmentID := c.Param("id")
	if _, err := uuid.Parse(appointmentID); err != nil {
		utils.BadRequest(c, "Invalid Appointment ID format")
		return
	}

	var req CompleteAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	complete := scheduling.CompleteRequest{Notes: req.Notes}
	if req.Prescription != nil {
		var fileData []byte
		if req.Prescription.FileData != "" {
			decoded, err := base64.StdEncoding.DecodeString(req.Prescription.FileData)
			if err != nil {
				utils.BadRequest(c, "Prescription fileData must be base64 encoded")
				return
			}
			fileData = decoded
		}
		complete.Prescription = &scheduling.PrescriptionInput{
			Medications:  req.Prescription.Medications,
			Instructions: req.Prescription.Instructions,
			FileName:     req.Prescription.FileName,
			FileType:     req.Prescription.FileType,
			FileData:     fileData,
		}
	}

	appt, err := h.Engine.Complete(c.Request.Context(), doctorID, appointmentID, complete)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Success(c, "Appointment completed", appt)
}

// CancelAppointment cancels one of the doctor's own appointments.
func (h *DoctorHandler) CancelAppointment(c *gin.Context) {
	appointmentID := c.Param("id")
	if _, err := uuid.Parse(appointmentID); err != nil {
		utils.BadRequest(c, "Invalid Appointment ID format")
		return
	}

	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appt, err := h.Engine.Cancel(c.Request.Context(), doctorID, appointmentID)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Success(c, "Appointment cancelled", appt)
}

// GetProfile returns the doctor's own profile.
func (h *DoctorHandler) GetProfile(c *gin.Context) {
	getProfile(c, h.DB)
}

// UpdateDoctorProfileRequest represents the editable doctor profile fields.
type UpdateDoctorProfileRequest struct {
	FullName        string   `json:"fullName"`
	ProfileImage    string   `json:"profileImage"`
	Specialty       string   `json:"specialty"`
	ClinicLocation  string   `json:"clinicLocation"`
	Experience      int      `json:"experience"`
	Education       string   `json:"education"`
	Bio             string   `json:"bio"`
	Languages       []string `json:"languages"`
	ConsultationFee float64  `json:"consultationFee"`
}

// UpdateProfile updates the doctor's own profile. Fee changes only affect
// future bookings; existing appointments keep their snapshot.
func (h *DoctorHandler) UpdateProfile(c *gin.Context) {
	var req UpdateDoctorProfileRequest
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
	if req.Specialty != "" {
		user.Specialty = req.Specialty
	}
	if req.ClinicLocation != "" {
		user.ClinicLocation = req.ClinicLocation
	}
	if req.Experience > 0 {
		user.Experience = req.Experience
	}
	if req.Education != "" {
		user.Education = req.Education
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if len(req.Languages) > 0 {
		user.Languages = req.Languages
	}
	if req.ConsultationFee > 0 {
		user.ConsultationFee = req.ConsultationFee
	}

	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update profile: "+err.Error())
		return
	}

	utils.Success(c, "Profile updated successfully", user.Sanitize())
}
