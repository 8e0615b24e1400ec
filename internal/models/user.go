package models

import "golang.org/x/crypto/bcrypt"

// Role identifies what a staff account can see and do
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDoctor    Role = "doctor"
	RoleSecretary Role = "secretary"
)

// User is a staff account (admins, doctors and secretaries log in;
// patients never do)
type User struct {
	BaseModel
	Email     string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string `gorm:"size:255;not null" json:"-"`
	FirstName string `gorm:"size:100" json:"first_name"`
	LastName  string `gorm:"size:100" json:"last_name"`
	Role      Role   `gorm:"size:20;not null" json:"role"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`
}

// SetPassword hashes and stores the password
func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword compares a plaintext password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// FullName returns the display name
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Admin links an admin user to the doctors it manages
type Admin struct {
	BaseModel
	UserID  string    `gorm:"size:36;uniqueIndex" json:"user_id"`
	User    *User     `gorm:"foreignKey:UserID" json:"-"`
	Doctors []*Doctor `gorm:"many2many:admin_doctors" json:"doctors,omitempty"`
}

// Secretary links a secretary user to the single doctor it works for
type Secretary struct {
	BaseModel
	UserID   string  `gorm:"size:36;uniqueIndex" json:"user_id"`
	User     *User   `gorm:"foreignKey:UserID" json:"-"`
	DoctorID string  `gorm:"size:36;index" json:"doctor_id"`
	Doctor   *Doctor `gorm:"foreignKey:DoctorID" json:"-"`
	IsActive bool    `gorm:"default:true" json:"is_active"`
}
