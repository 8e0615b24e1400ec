package models

import "time"

// MedicalRecord is a timestamped clinical note (prontuário) tied to a
// patient and the doctor who wrote it
type MedicalRecord struct {
	BaseModel
	PatientID string   `gorm:"size:36;index;not null" json:"patient_id"`
	Patient   *Patient `gorm:"foreignKey:PatientID" json:"-"`
	DoctorID  string   `gorm:"size:36;index;not null" json:"doctor_id"`
	Doctor    *Doctor  `gorm:"foreignKey:DoctorID" json:"-"`

	RecordedAt time.Time `gorm:"index" json:"recorded_at"`
	Content    string    `gorm:"type:text;not null" json:"content"`
}
