package models

// Waiting list entry status values
const (
	WaitlistWaiting   = "waiting"
	WaitlistScheduled = "scheduled"
	WaitlistRemoved   = "removed"
)

// Preferred period values for waiting list entries
const (
	PeriodMorning   = "morning"
	PeriodAfternoon = "afternoon"
	PeriodAny       = "any"
)

// WaitingListEntry queues a patient for the next free slot with a
// doctor; promoting an entry books an appointment through the regular
// conflict guard
type WaitingListEntry struct {
	BaseModel
	PatientID string   `gorm:"size:36;index;not null" json:"patient_id"`
	Patient   *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	DoctorID  string   `gorm:"size:36;index;not null" json:"doctor_id"`
	Doctor    *Doctor  `gorm:"foreignKey:DoctorID" json:"-"`

	PreferredPeriod string `gorm:"size:20;default:'any'" json:"preferred_period"`
	Priority        int    `gorm:"default:0;index" json:"priority"`
	Status          string `gorm:"size:20;default:'waiting';index" json:"status"`
	Notes           string `gorm:"type:text" json:"notes,omitempty"`

	AppointmentID string `gorm:"size:36" json:"appointment_id,omitempty"`
}
