package models

// Doctor is a reference entity consumed by the scheduler and the booking bot
type Doctor struct {
	BaseModel
	UserID         string `gorm:"size:36;index" json:"user_id"`
	User           *User  `gorm:"foreignKey:UserID" json:"-"`
	FirstName      string `gorm:"size:100;not null" json:"first_name"`
	LastName       string `gorm:"size:100" json:"last_name"`
	MedicalLicense string `gorm:"size:50;uniqueIndex" json:"medical_license"`
	Specialization string `gorm:"size:100" json:"specialization"`
	Phone          string `gorm:"size:20" json:"phone"`
	IsActive       bool   `gorm:"default:true;index" json:"is_active"`

	Patients     []Patient     `gorm:"foreignKey:DoctorID" json:"-"`
	Appointments []Appointment `gorm:"foreignKey:DoctorID" json:"-"`
}

// FullName returns the doctor's display name with the honorific
func (d *Doctor) FullName() string {
	if d.LastName == "" {
		return "Dr. " + d.FirstName
	}
	return "Dr. " + d.FirstName + " " + d.LastName
}
