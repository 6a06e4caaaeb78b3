package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// User represents a user in the system. Doctors and patients share the table;
// role-specific columns are simply empty for the other role.
type User struct {
	BaseModel
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password     string `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FullName     string `gorm:"size:200" json:"fullName"`
	Role         Role   `gorm:"size:20;default:'patient'" json:"role"`
	ProfileImage string `json:"profileImage,omitempty"`

	// Doctor profile fields
	Specialty       string   `gorm:"size:100" json:"specialty,omitempty"`
	ClinicLocation  string   `gorm:"size:255" json:"clinicLocation,omitempty"`
	Experience      int      `json:"experience,omitempty"`
	Education       string   `gorm:"size:255" json:"education,omitempty"`
	Bio             string   `gorm:"type:text" json:"bio,omitempty"`
	Languages       []string `gorm:"serializer:json" json:"languages,omitempty"`
	ConsultationFee float64  `json:"consultationFee,omitempty"`

	// Patient profile fields
	MedicalHistory string `gorm:"type:text" json:"medicalHistory,omitempty"`

	// Relations (not always preloaded)
	RefreshTokens       []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
	DoctorAppointments  []Appointment  `gorm:"foreignKey:DoctorID" json:"-"`
	PatientAppointments []Appointment  `gorm:"foreignKey:PatientID" json:"-"`
	Notifications       []Notification `gorm:"foreignKey:RecipientID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FullName        string    `json:"fullName"`
	Role            Role      `json:"role"`
	ProfileImage    string    `json:"profileImage,omitempty"`
	Specialty       string    `json:"specialty,omitempty"`
	ClinicLocation  string    `json:"clinicLocation,omitempty"`
	Experience      int       `json:"experience,omitempty"`
	Education       string    `json:"education,omitempty"`
	Bio             string    `json:"bio,omitempty"`
	Languages       []string  `json:"languages,omitempty"`
	ConsultationFee float64   `json:"consultationFee,omitempty"`
	MedicalHistory  string    `json:"medicalHistory,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:              u.ID,
		Email:           u.Email,
		FullName:        u.FullName,
		Role:            u.Role,
		ProfileImage:    u.ProfileImage,
		Specialty:       u.Specialty,
		ClinicLocation:  u.ClinicLocation,
		Experience:      u.Experience,
		Education:       u.Education,
		Bio:             u.Bio,
		Languages:       u.Languages,
		ConsultationFee: u.ConsultationFee,
		MedicalHistory:  u.MedicalHistory,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
