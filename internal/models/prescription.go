package models

// Prescription status values
const (
	PrescriptionActive    = "active"
	PrescriptionCompleted = "completed"
	PrescriptionCancelled = "cancelled"
	PrescriptionExpired   = "expired"
)

// Prescription groups the medications a doctor prescribed to a patient
// on a given date
type Prescription struct {
	BaseModel
	PatientID string   `gorm:"size:36;index;not null" json:"patient_id"`
	Patient   *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	DoctorID  string   `gorm:"size:36;index;not null" json:"doctor_id"`
	Doctor    *Doctor  `gorm:"foreignKey:DoctorID" json:"-"`

	Date   string `gorm:"size:10;index" json:"date"` // YYYY-MM-DD
	Status string `gorm:"size:20;default:'active';index" json:"status"`
	Notes  string `gorm:"type:text" json:"notes,omitempty"`

	Items []PrescriptionItem `gorm:"foreignKey:PrescriptionID" json:"items"`
}

// PrescriptionItem is one medication line, kept in display order
type PrescriptionItem struct {
	BaseModel
	PrescriptionID string `gorm:"size:36;index;not null" json:"prescription_id"`

	MedicationName string `gorm:"size:200;not null" json:"medication_name"`
	Quantity       string `gorm:"size:100" json:"quantity"`
	Dosage         string `gorm:"type:text" json:"dosage"`
	Notes          string `gorm:"type:text" json:"notes,omitempty"`
	Position       int    `gorm:"default:0" json:"position"`
}
