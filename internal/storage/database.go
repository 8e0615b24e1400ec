package storage

import (
	"errors"

	"gorm.io/gorm"

	"github.com/caiotravain/consultorio/internal/models"
)

// DatabaseStore implements Store backed by PostgreSQL via GORM
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a new database-backed storage
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// User operations

func (s *DatabaseStore) CreateUser(user *models.User) error {
	return translate(s.db.Create(user).Error)
}

func (s *DatabaseStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *DatabaseStore) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *DatabaseStore) CreateAdmin(admin *models.Admin) error {
	return translate(s.db.Create(admin).Error)
}

func (s *DatabaseStore) GetAdminByUserID(userID string) (*models.Admin, error) {
	var admin models.Admin
	if err := s.db.Preload("Doctors").First(&admin, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

func (s *DatabaseStore) CreateSecretary(secretary *models.Secretary) error {
	return translate(s.db.Create(secretary).Error)
}

func (s *DatabaseStore) GetSecretaryByUserID(userID string) (*models.Secretary, error) {
	var secretary models.Secretary
	if err := s.db.Preload("Doctor").First(&secretary, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &secretary, nil
}

// Doctor operations

func (s *DatabaseStore) CreateDoctor(doctor *models.Doctor) error {
	return translate(s.db.Create(doctor).Error)
}

func (s *DatabaseStore) GetDoctor(id string) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.db.First(&doctor, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &doctor, nil
}

func (s *DatabaseStore) GetDoctorByUserID(userID string) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.db.First(&doctor, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &doctor, nil
}

func (s *DatabaseStore) GetActiveDoctors() ([]*models.Doctor, error) {
	var doctors []*models.Doctor
	err := s.db.Where("is_active = ?", true).
		Order("first_name, last_name").
		Find(&doctors).Error
	return doctors, translate(err)
}

// Patient operations

func (s *DatabaseStore) CreatePatient(patient *models.Patient) error {
	return translate(s.db.Create(patient).Error)
}

func (s *DatabaseStore) GetPatient(id string) (*models.Patient, error) {
	var patient models.Patient
	if err := s.db.First(&patient, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &patient, nil
}

func (s *DatabaseStore) UpdatePatient(patient *models.Patient) error {
	return translate(s.db.Save(patient).Error)
}

func (s *DatabaseStore) FindPatientByPhone(fragment string) (*models.Patient, error) {
	if fragment == "" {
		return nil, ErrNotFound
	}
	var patient models.Patient
	err := s.db.Where("is_active = ? AND phone LIKE ?", true, "%"+fragment+"%").
		Order("created_at").
		First(&patient).Error
	if err != nil {
		return nil, translate(err)
	}
	return &patient, nil
}

func (s *DatabaseStore) FindPatientByIdentity(firstName, lastName, dateOfBirth string) (*models.Patient, error) {
	var patient models.Patient
	err := s.db.Where("LOWER(first_name) = LOWER(?) AND LOWER(last_name) = LOWER(?) AND date_of_birth = ?",
		firstName, lastName, dateOfBirth).
		First(&patient).Error
	if err != nil {
		return nil, translate(err)
	}
	return &patient, nil
}

func (s *DatabaseStore) GetPatientsByDoctors(doctorIDs []string) ([]*models.Patient, error) {
	if len(doctorIDs) == 0 {
		return nil, nil
	}
	var patients []*models.Patient
	err := s.db.Where("doctor_id IN ?", doctorIDs).
		Order("first_name, last_name").
		Find(&patients).Error
	return patients, translate(err)
}

// Appointment operations

// CreateAppointment re-checks the slot inside a transaction; the partial
// unique index on (doctor_id, date, start_time) for non-cancelled rows
// closes the remaining race between concurrent bookings.
func (s *DatabaseStore) CreateAppointment(appointment *models.Appointment) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Appointment{}).
			Where("doctor_id = ? AND date = ? AND start_time = ? AND status <> ?",
				appointment.DoctorID, appointment.Date, appointment.StartTime, models.AppointmentCancelled).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrSlotTaken
		}
		return tx.Create(appointment).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSlotTaken
	}
	return translate(err)
}

func (s *DatabaseStore) GetAppointment(id string) (*models.Appointment, error) {
	var appointment models.Appointment
	err := s.db.Preload("Patient").Preload("Doctor").
		First(&appointment, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &appointment, nil
}

func (s *DatabaseStore) UpdateAppointment(appointment *models.Appointment) error {
	err := s.db.Save(appointment).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSlotTaken
	}
	return translate(err)
}

func (s *DatabaseStore) SlotTaken(doctorID, date, startTime, excludeID string) (bool, error) {
	var count int64
	q := s.db.Model(&models.Appointment{}).
		Where("doctor_id = ? AND date = ? AND start_time = ? AND status <> ?",
			doctorID, date, startTime, models.AppointmentCancelled)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (s *DatabaseStore) GetAppointmentsByDoctorAndDate(doctorID, date string) ([]*models.Appointment, error) {
	var appointments []*models.Appointment
	err := s.db.Preload("Patient").
		Where("doctor_id = ? AND date = ?", doctorID, date).
		Order("start_time").
		Find(&appointments).Error
	return appointments, translate(err)
}

func (s *DatabaseStore) GetAppointmentsByDoctorAndRange(doctorID, from, to string) ([]*models.Appointment, error) {
	var appointments []*models.Appointment
	q := s.db.Preload("Patient").Where("doctor_id = ?", doctorID)
	if from != "" {
		q = q.Where("date >= ?", from)
	}
	if to != "" {
		q = q.Where("date <= ?", to)
	}
	err := q.Order("date, start_time").Find(&appointments).Error
	return appointments, translate(err)
}

func (s *DatabaseStore) GetAppointmentsDueReminder(date string) ([]*models.Appointment, error) {
	var appointments []*models.Appointment
	err := s.db.Preload("Patient").Preload("Doctor").
		Where("date = ? AND reminder_sent = ? AND status IN ?",
			date, false, []string{models.AppointmentScheduled, models.AppointmentConfirmed}).
		Order("start_time").
		Find(&appointments).Error
	return appointments, translate(err)
}

// Conversation operations

func (s *DatabaseStore) GetOrCreateConversation(phoneNumber string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.Where(models.Conversation{PhoneNumber: phoneNumber}).
		Attrs(models.Conversation{State: models.ConvStateInitial}).
		FirstOrCreate(&conv).Error
	if err != nil {
		return nil, translate(err)
	}
	return &conv, nil
}

func (s *DatabaseStore) UpdateConversation(conversation *models.Conversation) error {
	return translate(s.db.Save(conversation).Error)
}

// Finance operations

func (s *DatabaseStore) CreateIncome(income *models.Income) error {
	return translate(s.db.Create(income).Error)
}

func (s *DatabaseStore) DeleteIncomesByAppointment(appointmentID string) error {
	return translate(s.db.Where("appointment_id = ?", appointmentID).Delete(&models.Income{}).Error)
}

func (s *DatabaseStore) GetIncomesByDoctorAndRange(doctorID, from, to string) ([]*models.Income, error) {
	var incomes []*models.Income
	q := s.db.Where("doctor_id = ?", doctorID)
	if from != "" {
		q = q.Where("date >= ?", from)
	}
	if to != "" {
		q = q.Where("date <= ?", to)
	}
	err := q.Order("date").Find(&incomes).Error
	return incomes, translate(err)
}

func (s *DatabaseStore) CreateExpense(expense *models.Expense) error {
	return translate(s.db.Create(expense).Error)
}

func (s *DatabaseStore) GetExpensesByDoctorAndRange(doctorID, from, to string) ([]*models.Expense, error) {
	var expenses []*models.Expense
	q := s.db.Where("doctor_id = ?", doctorID)
	if from != "" {
		q = q.Where("date >= ?", from)
	}
	if to != "" {
		q = q.Where("date <= ?", to)
	}
	err := q.Order("date").Find(&expenses).Error
	return expenses, translate(err)
}

// Medical record operations

func (s *DatabaseStore) CreateMedicalRecord(record *models.MedicalRecord) error {
	return translate(s.db.Create(record).Error)
}

func (s *DatabaseStore) GetMedicalRecords(patientID, doctorID string, offset, limit int) ([]*models.MedicalRecord, int64, error) {
	q := s.db.Model(&models.MedicalRecord{}).Where("patient_id = ?", patientID)
	if doctorID != "" {
		q = q.Where("doctor_id = ?", doctorID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var records []*models.MedicalRecord
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Offset(offset).Order("recorded_at DESC").Find(&records).Error
	return records, total, translate(err)
}

// Prescription operations

func (s *DatabaseStore) CreatePrescription(prescription *models.Prescription) error {
	for i := range prescription.Items {
		prescription.Items[i].Position = i
	}
	return translate(s.db.Create(prescription).Error)
}

func (s *DatabaseStore) GetPrescription(id string) (*models.Prescription, error) {
	var prescription models.Prescription
	err := s.db.Preload("Patient").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&prescription, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &prescription, nil
}

func (s *DatabaseStore) GetPrescriptionsByDoctor(doctorID string) ([]*models.Prescription, error) {
	var prescriptions []*models.Prescription
	err := s.db.Preload("Patient").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("doctor_id = ?", doctorID).
		Order("date DESC, created_at DESC").
		Find(&prescriptions).Error
	return prescriptions, translate(err)
}

// Waiting list operations

func (s *DatabaseStore) CreateWaitingListEntry(entry *models.WaitingListEntry) error {
	return translate(s.db.Create(entry).Error)
}

func (s *DatabaseStore) GetWaitingListEntry(id string) (*models.WaitingListEntry, error) {
	var entry models.WaitingListEntry
	if err := s.db.Preload("Patient").First(&entry, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &entry, nil
}

func (s *DatabaseStore) GetWaitingListByDoctor(doctorID string) ([]*models.WaitingListEntry, error) {
	var entries []*models.WaitingListEntry
	err := s.db.Preload("Patient").
		Where("doctor_id = ? AND status = ?", doctorID, models.WaitlistWaiting).
		Order("priority DESC, created_at").
		Find(&entries).Error
	return entries, translate(err)
}

func (s *DatabaseStore) UpdateWaitingListEntry(entry *models.WaitingListEntry) error {
	return translate(s.db.Save(entry).Error)
}
