package storage

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/caiotravain/consultorio/internal/models"
)

// MemoryStore holds all data in memory, for local development and tests
type MemoryStore struct {
	users         map[string]*models.User
	admins        map[string]*models.Admin
	secretaries   map[string]*models.Secretary
	doctors       map[string]*models.Doctor
	patients      map[string]*models.Patient
	appointments  map[string]*models.Appointment
	conversations map[string]*models.Conversation // keyed by phone number
	incomes       map[string]*models.Income
	expenses      map[string]*models.Expense
	records       map[string]*models.MedicalRecord
	prescriptions map[string]*models.Prescription
	waitlist      map[string]*models.WaitingListEntry

	// Mutexes for thread safety
	userMu         sync.RWMutex
	doctorMu       sync.RWMutex
	patientMu      sync.RWMutex
	appointmentMu  sync.RWMutex
	conversationMu sync.RWMutex
	financeMu      sync.RWMutex
	recordMu       sync.RWMutex
	prescriptionMu sync.RWMutex
	waitlistMu     sync.RWMutex
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]*models.User),
		admins:        make(map[string]*models.Admin),
		secretaries:   make(map[string]*models.Secretary),
		doctors:       make(map[string]*models.Doctor),
		patients:      make(map[string]*models.Patient),
		appointments:  make(map[string]*models.Appointment),
		conversations: make(map[string]*models.Conversation),
		incomes:       make(map[string]*models.Income),
		expenses:      make(map[string]*models.Expense),
		records:       make(map[string]*models.MedicalRecord),
		prescriptions: make(map[string]*models.Prescription),
		waitlist:      make(map[string]*models.WaitingListEntry),
	}
}

func stamp(base *models.BaseModel) {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	now := time.Now()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}

// User operations

func (m *MemoryStore) CreateUser(user *models.User) error {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicate
		}
	}
	stamp(&user.BaseModel)
	m.users[user.ID] = user
	return nil
}

func (m *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUserByID(id string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	return user, nil
}

func (m *MemoryStore) CreateAdmin(admin *models.Admin) error {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	stamp(&admin.BaseModel)
	m.admins[admin.ID] = admin
	return nil
}

func (m *MemoryStore) GetAdminByUserID(userID string) (*models.Admin, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	for _, a := range m.admins {
		if a.UserID == userID {
			return a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) CreateSecretary(secretary *models.Secretary) error {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	stamp(&secretary.BaseModel)
	m.secretaries[secretary.ID] = secretary
	return nil
}

func (m *MemoryStore) GetSecretaryByUserID(userID string) (*models.Secretary, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	for _, s := range m.secretaries {
		if s.UserID == userID {
			return s, nil
		}
	}
	return nil, ErrNotFound
}

// Doctor operations

func (m *MemoryStore) CreateDoctor(doctor *models.Doctor) error {
	m.doctorMu.Lock()
	defer m.doctorMu.Unlock()

	stamp(&doctor.BaseModel)
	m.doctors[doctor.ID] = doctor
	return nil
}

func (m *MemoryStore) GetDoctor(id string) (*models.Doctor, error) {
	m.doctorMu.RLock()
	defer m.doctorMu.RUnlock()

	doctor, exists := m.doctors[id]
	if !exists {
		return nil, ErrNotFound
	}
	return doctor, nil
}

func (m *MemoryStore) GetDoctorByUserID(userID string) (*models.Doctor, error) {
	m.doctorMu.RLock()
	defer m.doctorMu.RUnlock()

	for _, d := range m.doctors {
		if d.UserID == userID {
			return d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetActiveDoctors() ([]*models.Doctor, error) {
	m.doctorMu.RLock()
	defer m.doctorMu.RUnlock()

	var doctors []*models.Doctor
	for _, d := range m.doctors {
		if d.IsActive {
			doctors = append(doctors, d)
		}
	}
	sort.Slice(doctors, func(i, j int) bool {
		if doctors[i].FirstName != doctors[j].FirstName {
			return doctors[i].FirstName < doctors[j].FirstName
		}
		return doctors[i].LastName < doctors[j].LastName
	})
	return doctors, nil
}

// Patient operations

func (m *MemoryStore) CreatePatient(patient *models.Patient) error {
	m.patientMu.Lock()
	defer m.patientMu.Unlock()

	stamp(&patient.BaseModel)
	m.patients[patient.ID] = patient
	return nil
}

func (m *MemoryStore) GetPatient(id string) (*models.Patient, error) {
	m.patientMu.RLock()
	defer m.patientMu.RUnlock()

	patient, exists := m.patients[id]
	if !exists {
		return nil, ErrNotFound
	}
	return patient, nil
}

func (m *MemoryStore) UpdatePatient(patient *models.Patient) error {
	m.patientMu.Lock()
	defer m.patientMu.Unlock()

	if _, exists := m.patients[patient.ID]; !exists {
		return ErrNotFound
	}
	patient.UpdatedAt = time.Now()
	m.patients[patient.ID] = patient
	return nil
}

func (m *MemoryStore) FindPatientByPhone(fragment string) (*models.Patient, error) {
	m.patientMu.RLock()
	defer m.patientMu.RUnlock()

	if fragment == "" {
		return nil, ErrNotFound
	}
	var match *models.Patient
	for _, p := range m.patients {
		if !p.IsActive || !strings.Contains(p.Phone, fragment) {
			continue
		}
		if match == nil || p.CreatedAt.Before(match.CreatedAt) {
			match = p
		}
	}
	if match == nil {
		return nil, ErrNotFound
	}
	return match, nil
}

func (m *MemoryStore) FindPatientByIdentity(firstName, lastName, dateOfBirth string) (*models.Patient, error) {
	m.patientMu.RLock()
	defer m.patientMu.RUnlock()

	for _, p := range m.patients {
		if strings.EqualFold(p.FirstName, firstName) &&
			strings.EqualFold(p.LastName, lastName) &&
			p.DateOfBirth == dateOfBirth {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetPatientsByDoctors(doctorIDs []string) ([]*models.Patient, error) {
	m.patientMu.RLock()
	defer m.patientMu.RUnlock()

	allowed := make(map[string]bool, len(doctorIDs))
	for _, id := range doctorIDs {
		allowed[id] = true
	}
	var patients []*models.Patient
	for _, p := range m.patients {
		if allowed[p.DoctorID] {
			patients = append(patients, p)
		}
	}
	sort.Slice(patients, func(i, j int) bool {
		if patients[i].FirstName != patients[j].FirstName {
			return patients[i].FirstName < patients[j].FirstName
		}
		return patients[i].LastName < patients[j].LastName
	})
	return patients, nil
}

// Appointment operations

func (m *MemoryStore) CreateAppointment(appointment *models.Appointment) error {
	m.appointmentMu.Lock()
	defer m.appointmentMu.Unlock()

	if m.slotTakenLocked(appointment.DoctorID, appointment.Date, appointment.StartTime, "") {
		return ErrSlotTaken
	}
	stamp(&appointment.BaseModel)
	if appointment.DurationMinutes == 0 {
		appointment.DurationMinutes = models.DefaultDurationMinutes
	}
	m.appointments[appointment.ID] = appointment
	return nil
}

func (m *MemoryStore) GetAppointment(id string) (*models.Appointment, error) {
	m.appointmentMu.RLock()
	defer m.appointmentMu.RUnlock()

	appointment, exists := m.appointments[id]
	if !exists {
		return nil, ErrNotFound
	}
	return appointment, nil
}

func (m *MemoryStore) UpdateAppointment(appointment *models.Appointment) error {
	m.appointmentMu.Lock()
	defer m.appointmentMu.Unlock()

	if _, exists := m.appointments[appointment.ID]; !exists {
		return ErrNotFound
	}
	appointment.UpdatedAt = time.Now()
	m.appointments[appointment.ID] = appointment
	return nil
}

func (m *MemoryStore) SlotTaken(doctorID, date, startTime, excludeID string) (bool, error) {
	m.appointmentMu.RLock()
	defer m.appointmentMu.RUnlock()

	return m.slotTakenLocked(doctorID, date, startTime, excludeID), nil
}

// slotTakenLocked requires appointmentMu to be held
func (m *MemoryStore) slotTakenLocked(doctorID, date, startTime, excludeID string) bool {
	for _, a := range m.appointments {
		if a.ID == excludeID || !a.IsActive() {
			continue
		}
		if a.DoctorID == doctorID && a.Date == date && a.StartTime == startTime {
			return true
		}
	}
	return false
}

func (m *MemoryStore) GetAppointmentsByDoctorAndDate(doctorID, date string) ([]*models.Appointment, error) {
	m.appointmentMu.RLock()
	defer m.appointmentMu.RUnlock()

	var appointments []*models.Appointment
	for _, a := range m.appointments {
		if a.DoctorID == doctorID && a.Date == date {
			appointments = append(appointments, a)
		}
	}
	sort.Slice(appointments, func(i, j int) bool {
		return appointments[i].StartTime < appointments[j].StartTime
	})
	return appointments, nil
}

func (m *MemoryStore) GetAppointmentsByDoctorAndRange(doctorID, from, to string) ([]*models.Appointment, error) {
	m.appointmentMu.RLock()
	defer m.appointmentMu.RUnlock()

	var appointments []*models.Appointment
	for _, a := range m.appointments {
		if a.DoctorID != doctorID {
			continue
		}
		if (from != "" && a.Date < from) || (to != "" && a.Date > to) {
			continue
		}
		appointments = append(appointments, a)
	}
	sort.Slice(appointments, func(i, j int) bool {
		if appointments[i].Date != appointments[j].Date {
			return appointments[i].Date < appointments[j].Date
		}
		return appointments[i].StartTime < appointments[j].StartTime
	})
	return appointments, nil
}

func (m *MemoryStore) GetAppointmentsDueReminder(date string) ([]*models.Appointment, error) {
	m.appointmentMu.RLock()
	defer m.appointmentMu.RUnlock()

	var due []*models.Appointment
	for _, a := range m.appointments {
		if a.Date != date || a.ReminderSent {
			continue
		}
		if a.Status == models.AppointmentScheduled || a.Status == models.AppointmentConfirmed {
			due = append(due, a)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].StartTime < due[j].StartTime
	})
	return due, nil
}

// Conversation operations

func (m *MemoryStore) GetOrCreateConversation(phoneNumber string) (*models.Conversation, error) {
	m.conversationMu.Lock()
	defer m.conversationMu.Unlock()

	if conv, exists := m.conversations[phoneNumber]; exists {
		return conv, nil
	}
	conv := &models.Conversation{
		PhoneNumber: phoneNumber,
		State:       models.ConvStateInitial,
	}
	stamp(&conv.BaseModel)
	m.conversations[phoneNumber] = conv
	return conv, nil
}

func (m *MemoryStore) UpdateConversation(conversation *models.Conversation) error {
	m.conversationMu.Lock()
	defer m.conversationMu.Unlock()

	if _, exists := m.conversations[conversation.PhoneNumber]; !exists {
		return ErrNotFound
	}
	conversation.UpdatedAt = time.Now()
	m.conversations[conversation.PhoneNumber] = conversation
	return nil
}

// Finance operations

func (m *MemoryStore) CreateIncome(income *models.Income) error {
	m.financeMu.Lock()
	defer m.financeMu.Unlock()

	stamp(&income.BaseModel)
	m.incomes[income.ID] = income
	return nil
}

func (m *MemoryStore) DeleteIncomesByAppointment(appointmentID string) error {
	m.financeMu.Lock()
	defer m.financeMu.Unlock()

	for id, income := range m.incomes {
		if income.AppointmentID == appointmentID {
			delete(m.incomes, id)
		}
	}
	return nil
}

func (m *MemoryStore) GetIncomesByDoctorAndRange(doctorID, from, to string) ([]*models.Income, error) {
	m.financeMu.RLock()
	defer m.financeMu.RUnlock()

	var incomes []*models.Income
	for _, income := range m.incomes {
		if income.DoctorID != doctorID {
			continue
		}
		if (from != "" && income.Date < from) || (to != "" && income.Date > to) {
			continue
		}
		incomes = append(incomes, income)
	}
	sort.Slice(incomes, func(i, j int) bool {
		return incomes[i].Date < incomes[j].Date
	})
	return incomes, nil
}

func (m *MemoryStore) CreateExpense(expense *models.Expense) error {
	m.financeMu.Lock()
	defer m.financeMu.Unlock()

	stamp(&expense.BaseModel)
	m.expenses[expense.ID] = expense
	return nil
}

func (m *MemoryStore) GetExpensesByDoctorAndRange(doctorID, from, to string) ([]*models.Expense, error) {
	m.financeMu.RLock()
	defer m.financeMu.RUnlock()

	var expenses []*models.Expense
	for _, expense := range m.expenses {
		if expense.DoctorID != doctorID {
			continue
		}
		if (from != "" && expense.Date < from) || (to != "" && expense.Date > to) {
			continue
		}
		expenses = append(expenses, expense)
	}
	sort.Slice(expenses, func(i, j int) bool {
		return expenses[i].Date < expenses[j].Date
	})
	return expenses, nil
}

// Medical record operations

func (m *MemoryStore) CreateMedicalRecord(record *models.MedicalRecord) error {
	m.recordMu.Lock()
	defer m.recordMu.Unlock()

	stamp(&record.BaseModel)
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now()
	}
	m.records[record.ID] = record
	return nil
}

func (m *MemoryStore) GetMedicalRecords(patientID, doctorID string, offset, limit int) ([]*models.MedicalRecord, int64, error) {
	m.recordMu.RLock()
	defer m.recordMu.RUnlock()

	var matched []*models.MedicalRecord
	for _, r := range m.records {
		if r.PatientID != patientID {
			continue
		}
		if doctorID != "" && r.DoctorID != doctorID {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].RecordedAt.After(matched[j].RecordedAt)
	})

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

// Prescription operations

func (m *MemoryStore) CreatePrescription(prescription *models.Prescription) error {
	m.prescriptionMu.Lock()
	defer m.prescriptionMu.Unlock()

	stamp(&prescription.BaseModel)
	for i := range prescription.Items {
		stamp(&prescription.Items[i].BaseModel)
		prescription.Items[i].PrescriptionID = prescription.ID
		prescription.Items[i].Position = i
	}
	m.prescriptions[prescription.ID] = prescription
	return nil
}

func (m *MemoryStore) GetPrescription(id string) (*models.Prescription, error) {
	m.prescriptionMu.RLock()
	defer m.prescriptionMu.RUnlock()

	prescription, exists := m.prescriptions[id]
	if !exists {
		return nil, ErrNotFound
	}
	return prescription, nil
}

func (m *MemoryStore) GetPrescriptionsByDoctor(doctorID string) ([]*models.Prescription, error) {
	m.prescriptionMu.RLock()
	defer m.prescriptionMu.RUnlock()

	var prescriptions []*models.Prescription
	for _, p := range m.prescriptions {
		if p.DoctorID == doctorID {
			prescriptions = append(prescriptions, p)
		}
	}
	sort.Slice(prescriptions, func(i, j int) bool {
		return prescriptions[i].Date > prescriptions[j].Date
	})
	return prescriptions, nil
}

// Waiting list operations

func (m *MemoryStore) CreateWaitingListEntry(entry *models.WaitingListEntry) error {
	m.waitlistMu.Lock()
	defer m.waitlistMu.Unlock()

	stamp(&entry.BaseModel)
	if entry.Status == "" {
		entry.Status = models.WaitlistWaiting
	}
	m.waitlist[entry.ID] = entry
	return nil
}

func (m *MemoryStore) GetWaitingListEntry(id string) (*models.WaitingListEntry, error) {
	m.waitlistMu.RLock()
	defer m.waitlistMu.RUnlock()

	entry, exists := m.waitlist[id]
	if !exists {
		return nil, ErrNotFound
	}
	return entry, nil
}

func (m *MemoryStore) GetWaitingListByDoctor(doctorID string) ([]*models.WaitingListEntry, error) {
	m.waitlistMu.RLock()
	defer m.waitlistMu.RUnlock()

	var entries []*models.WaitingListEntry
	for _, e := range m.waitlist {
		if e.DoctorID == doctorID && e.Status == models.WaitlistWaiting {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

func (m *MemoryStore) UpdateWaitingListEntry(entry *models.WaitingListEntry) error {
	m.waitlistMu.Lock()
	defer m.waitlistMu.Unlock()

	if _, exists := m.waitlist[entry.ID]; !exists {
		return ErrNotFound
	}
	entry.UpdatedAt = time.Now()
	m.waitlist[entry.ID] = entry
	return nil
}
