package models

import "time"

// Gender values accepted on patient records
const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderOther  = "O"
)

// Patient belongs to the doctor that owns the record; the booking bot
// creates minimal patients on the fly when a phone number is unknown
type Patient struct {
	BaseModel
	DoctorID  string  `gorm:"size:36;index" json:"doctor_id"`
	Doctor    *Doctor `gorm:"foreignKey:DoctorID" json:"-"`
	FirstName string  `gorm:"size:100;not null" json:"first_name"`
	LastName  string  `gorm:"size:100" json:"last_name"`
	Email     string  `gorm:"size:255" json:"email,omitempty"`
	Phone     string  `gorm:"size:20;index" json:"phone,omitempty"`

	DateOfBirth string `gorm:"size:10" json:"date_of_birth"` // YYYY-MM-DD
	Gender      string `gorm:"size:1" json:"gender"`

	Address string `gorm:"size:255" json:"address,omitempty"`
	City    string `gorm:"size:100" json:"city,omitempty"`
	State   string `gorm:"size:100" json:"state,omitempty"`
	ZipCode string `gorm:"size:20" json:"zip_code,omitempty"`

	EmergencyContactName  string `gorm:"size:200" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string `gorm:"size:20" json:"emergency_contact_phone,omitempty"`
	MedicalInsurance      string `gorm:"size:200" json:"medical_insurance,omitempty"`

	IsActive bool `gorm:"default:true" json:"is_active"`
}

// FullName returns the patient's display name
func (p *Patient) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Age returns the patient's age in whole years, or -1 when the birth
// date is missing or malformed
func (p *Patient) Age() int {
	birth, err := time.Parse(DateLayout, p.DateOfBirth)
	if err != nil {
		return -1
	}
	now := time.Now()
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}
