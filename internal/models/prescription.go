package models

// Prescription represents the prescription a doctor issues when completing an
// appointment. The uploaded PDF is stored inline as binary data and served
// back through the download endpoint.
type Prescription struct {
	BaseModel
	AppointmentID string `gorm:"size:36;uniqueIndex" json:"appointmentId"`
	PatientID     string `gorm:"size:36;index" json:"patientId"`
	DoctorID      string `gorm:"size:36;index" json:"doctorId"`
	Medications   string `gorm:"type:text" json:"medications"`
	Instructions  string `gorm:"type:text" json:"instructions,omitempty"`
	FileName      string `json:"fileName,omitempty"`
	FileType      string `json:"fileType,omitempty"`
	FileData      []byte `json:"-" gorm:"type:longblob"` // PDF content as binary data

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
}
