package storage

import (
	"errors"
	"sync"

	"github.com/caiotravain/consultorio/internal/models"
)

// Domain errors surfaced by store implementations
var (
	ErrNotFound  = errors.New("record not found")
	ErrSlotTaken = errors.New("slot already booked")
	ErrDuplicate = errors.New("record already exists")
)

var (
	storeInstance Store
	storeMu       sync.RWMutex
)

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeMu.Lock()
	defer storeMu.Unlock()
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	storeMu.RLock()
	defer storeMu.RUnlock()
	return storeInstance
}

// Store defines the interface for storage operations
type Store interface {
	// User operations
	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	CreateAdmin(admin *models.Admin) error
	GetAdminByUserID(userID string) (*models.Admin, error)
	CreateSecretary(secretary *models.Secretary) error
	GetSecretaryByUserID(userID string) (*models.Secretary, error)

	// Doctor operations
	CreateDoctor(doctor *models.Doctor) error
	GetDoctor(id string) (*models.Doctor, error)
	GetDoctorByUserID(userID string) (*models.Doctor, error)
	GetActiveDoctors() ([]*models.Doctor, error)

	// Patient operations
	CreatePatient(patient *models.Patient) error
	GetPatient(id string) (*models.Patient, error)
	UpdatePatient(patient *models.Patient) error
	FindPatientByPhone(fragment string) (*models.Patient, error)
	FindPatientByIdentity(firstName, lastName, dateOfBirth string) (*models.Patient, error)
	GetPatientsByDoctors(doctorIDs []string) ([]*models.Patient, error)

	// Appointment operations. CreateAppointment returns ErrSlotTaken when a
	// non-cancelled appointment already holds the exact (doctor, date,
	// start time) slot; the check and the insert are atomic.
	CreateAppointment(appointment *models.Appointment) error
	GetAppointment(id string) (*models.Appointment, error)
	UpdateAppointment(appointment *models.Appointment) error
	SlotTaken(doctorID, date, startTime, excludeID string) (bool, error)
	GetAppointmentsByDoctorAndDate(doctorID, date string) ([]*models.Appointment, error)
	GetAppointmentsByDoctorAndRange(doctorID, from, to string) ([]*models.Appointment, error)
	GetAppointmentsDueReminder(date string) ([]*models.Appointment, error)

	// Conversation operations
	GetOrCreateConversation(phoneNumber string) (*models.Conversation, error)
	UpdateConversation(conversation *models.Conversation) error

	// Finance operations
	CreateIncome(income *models.Income) error
	DeleteIncomesByAppointment(appointmentID string) error
	GetIncomesByDoctorAndRange(doctorID, from, to string) ([]*models.Income, error)
	CreateExpense(expense *models.Expense) error
	GetExpensesByDoctorAndRange(doctorID, from, to string) ([]*models.Expense, error)

	// Medical record operations
	CreateMedicalRecord(record *models.MedicalRecord) error
	GetMedicalRecords(patientID, doctorID string, offset, limit int) ([]*models.MedicalRecord, int64, error)

	// Prescription operations
	CreatePrescription(prescription *models.Prescription) error
	GetPrescription(id string) (*models.Prescription, error)
	GetPrescriptionsByDoctor(doctorID string) ([]*models.Prescription, error)

	// Waiting list operations
	CreateWaitingListEntry(entry *models.WaitingListEntry) error
	GetWaitingListEntry(id string) (*models.WaitingListEntry, error)
	GetWaitingListByDoctor(doctorID string) ([]*models.WaitingListEntry, error)
	UpdateWaitingListEntry(entry *models.WaitingListEntry) error
}
