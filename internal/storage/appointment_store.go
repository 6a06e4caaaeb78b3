package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carexpert-server/internal/apperr"
	"carexpert-server/internal/models"
	"carexpert-server/internal/scheduling"
)

// AppointmentStore is the gorm-backed implementation of scheduling.Store.
type AppointmentStore struct {
	DB *gorm.DB
}

// NewAppointmentStore creates a new AppointmentStore.
func NewAppointmentStore(db *gorm.DB) *AppointmentStore {
	return &AppointmentStore{DB: db}
}

// CreateAppointment inserts a new appointment record.
func (s *AppointmentStore) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	return s.DB.WithContext(ctx).Omit(clause.Associations).Create(appt).Error
}

// GetAppointment fetches an appointment by id.
func (s *AppointmentStore) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.DB.WithContext(ctx).First(&appt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("appointment")
		}
		return nil, err
	}
	return &appt, nil
}

// ListByPatient returns the patient's appointments with the doctor preloaded.
func (s *AppointmentStore) ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := s.DB.WithContext(ctx).Preload("Doctor").
		Where("patient_id = ?", patientID).
		Order("created_at desc").
		Find(&appts).Error
	return appts, err
}

// ListByDoctor returns the doctor's appointments with the patient preloaded.
func (s *AppointmentStore) ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := s.DB.WithContext(ctx).Preload("Patient").
		Where("doctor_id = ?", doctorID).
		Order("created_at desc").
		Find(&appts).Error
	return appts, err
}

// Transition performs the read-check-write under a row lock so that of two
// concurrent transitions exactly one wins; the loser sees ok=false and the
// record stays untouched. Side effects land in the same transaction.
func (s *AppointmentStore) Transition(ctx context.Context, id string, from models.AppointmentStatus, mutate func(*models.Appointment), effects *scheduling.SideEffects) (*models.Appointment, bool, error) {
	var appt models.Appointment
	var won bool
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&appt, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("appointment")
			}
			return err
		}
		if appt.Status != from {
			return nil // lost the race, report via won=false
		}
		if effects != nil && effects.Prescription != nil {
			if err := tx.Omit(clause.Associations).Create(effects.Prescription).Error; err != nil {
				return err
			}
		}
		mutate(&appt)
		if err := tx.Omit(clause.Associations).Save(&appt).Error; err != nil {
			return err
		}
		if effects != nil && effects.Notification != nil {
			if err := tx.Omit(clause.Associations).Create(effects.Notification).Error; err != nil {
				return err
			}
		}
		won = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if !won {
		return nil, false, nil
	}
	return &appt, true, nil
}

// GetDoctor fetches a user by id, requiring the doctor role.
func (s *AppointmentStore) GetDoctor(ctx context.Context, id string) (*models.User, error) {
	var doctor models.User
	if err := s.DB.WithContext(ctx).
		Where("id = ? AND role = ?", id, models.RoleDoctor).
		First(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("doctor")
		}
		return nil, err
	}
	return &doctor, nil
}
