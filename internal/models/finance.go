package models

// Income categories mirror the appointment types that generate them
const (
	IncomeConsultation = "consultation"
	IncomeFollowUp     = "follow_up"
	IncomeCheckup      = "checkup"
	IncomeEmergency    = "emergency"
	IncomeProcedure    = "procedure"
	IncomeTherapy      = "therapy"
	IncomeOther        = "other"
)

// Expense categories
const (
	ExpenseOfficeSupplies       = "office_supplies"
	ExpenseMedicalSupplies      = "medical_supplies"
	ExpenseEquipment            = "equipment"
	ExpenseUtilities            = "utilities"
	ExpenseRent                 = "rent"
	ExpenseInsurance            = "insurance"
	ExpenseMarketing            = "marketing"
	ExpenseProfessionalServices = "professional_services"
	ExpenseTravel               = "travel"
	ExpenseEducation            = "education"
	ExpenseOther                = "other"
)

// Income is a doctor's earning, usually generated from an appointment.
// Cancelling an appointment deletes its linked income rows.
type Income struct {
	BaseModel
	DoctorID      string       `gorm:"size:36;index;not null" json:"doctor_id"`
	Doctor        *Doctor      `gorm:"foreignKey:DoctorID" json:"-"`
	AppointmentID string       `gorm:"size:36;index" json:"appointment_id,omitempty"`
	Appointment   *Appointment `gorm:"foreignKey:AppointmentID" json:"-"`

	Amount        float64 `gorm:"not null" json:"amount"`
	Description   string  `gorm:"size:200" json:"description"`
	Category      string  `gorm:"size:30;index" json:"category"`
	Date          string  `gorm:"size:10;index" json:"date"` // YYYY-MM-DD
	PaymentMethod string  `gorm:"size:20" json:"payment_method,omitempty"`
	Notes         string  `gorm:"type:text" json:"notes,omitempty"`
}

// Expense is a doctor's cost entry
type Expense struct {
	BaseModel
	DoctorID string  `gorm:"size:36;index;not null" json:"doctor_id"`
	Doctor   *Doctor `gorm:"foreignKey:DoctorID" json:"-"`

	Amount        float64 `gorm:"not null" json:"amount"`
	Description   string  `gorm:"size:200;not null" json:"description"`
	Category      string  `gorm:"size:30;index" json:"category"`
	Date          string  `gorm:"size:10;index" json:"date"` // YYYY-MM-DD
	ReceiptNumber string  `gorm:"size:100" json:"receipt_number,omitempty"`
	Vendor        string  `gorm:"size:200" json:"vendor,omitempty"`
	Notes         string  `gorm:"type:text" json:"notes,omitempty"`
}
