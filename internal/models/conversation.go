package models

import "time"

// Conversation states. The flow only moves forward through these; the
// single backward edge is Reset, triggered by the cancel keywords.
const (
	ConvStateInitial           = "initial"
	ConvStateSelectingDoctor   = "selecting_doctor"
	ConvStateSelectingDate     = "selecting_date"
	ConvStateSelectingTime     = "selecting_time"
	ConvStateCollectingPatient = "collecting_patient_info"
	ConvStateCompleted         = "completed"
	ConvStateCancelled         = "cancelled"
)

// Conversation is the per-phone-number record driving the WhatsApp
// booking flow, advanced one inbound message at a time
type Conversation struct {
	BaseModel
	PhoneNumber string `gorm:"size:20;uniqueIndex;not null" json:"phone_number"`
	State       string `gorm:"size:30;default:'initial'" json:"state"`

	SelectedDoctorID string  `gorm:"size:36" json:"selected_doctor_id,omitempty"`
	SelectedDoctor   *Doctor `gorm:"foreignKey:SelectedDoctorID" json:"-"`
	SelectedDate     string  `gorm:"size:10" json:"selected_date,omitempty"` // YYYY-MM-DD
	SelectedTime     string  `gorm:"size:5" json:"selected_time,omitempty"`  // HH:MM

	PatientName  string `gorm:"size:200" json:"patient_name,omitempty"`
	PatientPhone string `gorm:"size:20" json:"patient_phone,omitempty"`

	AppointmentID string       `gorm:"size:36" json:"appointment_id,omitempty"`
	Appointment   *Appointment `gorm:"foreignKey:AppointmentID" json:"-"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Reset returns the conversation to the initial state and clears every
// stored selection
func (c *Conversation) Reset() {
	c.State = ConvStateInitial
	c.SelectedDoctorID = ""
	c.SelectedDoctor = nil
	c.SelectedDate = ""
	c.SelectedTime = ""
	c.PatientName = ""
	c.PatientPhone = ""
	c.AppointmentID = ""
	c.Appointment = nil
	c.CompletedAt = nil
}
