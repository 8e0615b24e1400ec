package models

import "time"

// Appointment status values
const (
	AppointmentScheduled   = "scheduled"
	AppointmentConfirmed   = "confirmed"
	AppointmentInProgress  = "in_progress"
	AppointmentCompleted   = "completed"
	AppointmentCancelled   = "cancelled"
	AppointmentNoShow      = "no_show"
	AppointmentRescheduled = "rescheduled"
)

// Appointment type values
const (
	TypeConsultation = "consultation"
	TypeFollowUp     = "follow_up"
	TypeCheckup      = "checkup"
	TypeEmergency    = "emergency"
	TypeProcedure    = "procedure"
	TypeTherapy      = "therapy"
	TypeOther        = "other"
)

// Payment type values
const (
	PaymentConvenio   = "convenio"
	PaymentParticular = "particular"
)

// DefaultDurationMinutes is applied when a booking does not specify one.
const DefaultDurationMinutes = 30

// ValidAppointmentStatuses for request validation
var ValidAppointmentStatuses = map[string]bool{
	AppointmentScheduled:   true,
	AppointmentConfirmed:   true,
	AppointmentInProgress:  true,
	AppointmentCompleted:   true,
	AppointmentCancelled:   true,
	AppointmentNoShow:      true,
	AppointmentRescheduled: true,
}

// ValidAppointmentTypes for request validation
var ValidAppointmentTypes = map[string]bool{
	TypeConsultation: true,
	TypeFollowUp:     true,
	TypeCheckup:      true,
	TypeEmergency:    true,
	TypeProcedure:    true,
	TypeTherapy:      true,
	TypeOther:        true,
}

// Appointment occupies a doctor's calendar slot. Every non-cancelled
// appointment for a doctor must have a unique (date, start_time); the
// database store enforces this with a partial unique index.
type Appointment struct {
	BaseModel
	PatientID string   `gorm:"size:36;index;not null" json:"patient_id"`
	Patient   *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	DoctorID  string   `gorm:"size:36;index;not null" json:"doctor_id"`
	Doctor    *Doctor  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`

	Date            string `gorm:"size:10;index;not null" json:"date"`       // YYYY-MM-DD
	StartTime       string `gorm:"size:5;not null" json:"start_time"`        // HH:MM
	DurationMinutes int    `gorm:"default:30" json:"duration_minutes"`

	Type        string `gorm:"size:20;default:'consultation'" json:"type"`
	PaymentType string `gorm:"size:20;default:'particular'" json:"payment_type"`
	Status      string `gorm:"size:20;default:'scheduled';index" json:"status"`

	Reason   string   `gorm:"type:text" json:"reason,omitempty"`
	Notes    string   `gorm:"type:text" json:"notes,omitempty"`
	Location string   `gorm:"size:200" json:"location,omitempty"`
	Value    *float64 `json:"value,omitempty"`

	ReminderSent bool       `gorm:"default:false" json:"reminder_sent"`
	ReminderAt   *time.Time `json:"reminder_at,omitempty"`

	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancellationReason string     `gorm:"type:text" json:"cancellation_reason,omitempty"`

	Incomes []Income `gorm:"foreignKey:AppointmentID" json:"-"`
}

// IsActive reports whether the appointment still occupies its slot.
func (a *Appointment) IsActive() bool {
	return a.Status != AppointmentCancelled
}

// StartsAt combines date and start time into a wall-clock instant.
func (a *Appointment) StartsAt() (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+ClockLayout, a.Date+" "+a.StartTime, time.Local)
}

// EndTime returns the HH:MM boundary where the appointment ends.
// Durations that run past midnight are clamped to 23:59.
func (a *Appointment) EndTime() string {
	start, err := time.Parse(ClockLayout, a.StartTime)
	if err != nil {
		return a.StartTime
	}
	end := start.Add(time.Duration(a.DurationMinutes) * time.Minute)
	if end.Day() != start.Day() {
		return "23:59"
	}
	return end.Format(ClockLayout)
}
