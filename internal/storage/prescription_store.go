package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"carexpert-server/internal/apperr"
	"carexpert-server/internal/models"
)

// PrescriptionStore provides read access to stored prescriptions. Creation
// happens inside the completion transaction in AppointmentStore.Transition.
type PrescriptionStore struct {
	DB *gorm.DB
}

// NewPrescriptionStore creates a new PrescriptionStore.
func NewPrescriptionStore(db *gorm.DB) *PrescriptionStore {
	return &PrescriptionStore{DB: db}
}

// Get fetches a prescription by id, including the PDF bytes.
func (s *PrescriptionStore) Get(ctx context.Context, id string) (*models.Prescription, error) {
	var rx models.Prescription
	if err := s.DB.WithContext(ctx).First(&rx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("prescription")
		}
		return nil, err
	}
	return &rx, nil
}

// ListByPatient returns the patient's prescriptions, newest first, without
// the file bytes (those are fetched per-id through the download endpoint).
func (s *PrescriptionStore) ListByPatient(ctx context.Context, patientID string) ([]models.Prescription, error) {
	var prescriptions []models.Prescription
	err := s.DB.WithContext(ctx).
		Omit("file_data").
		Where("patient_id = ?", patientID).
		Order("created_at desc").
		Find(&prescriptions).Error
	return prescriptions, err
}
