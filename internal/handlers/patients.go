package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/caiotravain/consultorio/internal/models"
	"github.com/caiotravain/consultorio/internal/storage"
)

// PatientHandler handles the patient API
type PatientHandler struct {
	store storage.Store
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(store storage.Store) *PatientHandler {
	return &PatientHandler{store: store}
}

type patientRequest struct {
	DoctorID         string `json:"doctor_id"`
	FirstName        string `json:"first_name" validate:"required"`
	LastName         string `json:"last_name"`
	Email            string `json:"email" validate:"omitempty,email"`
	Phone            string `json:"phone"`
	DateOfBirth      string `json:"date_of_birth" validate:"required"`
	Gender           string `json:"gender" validate:"omitempty,oneof=M F O"`
	Address          string `json:"address"`
	City             string `json:"city"`
	State            string `json:"state"`
	ZipCode          string `json:"zip_code"`
	EmergencyContact string `json:"emergency_contact"`
	EmergencyPhone   string `json:"emergency_phone"`
	MedicalInsurance string `json:"medical_insurance"`
}

// CreatePatient registers a patient under a doctor. Duplicate identity
// (first name, last name, birth date) is rejected.
func (h *PatientHandler) CreatePatient(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	var req patientRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "first_name and date_of_birth are required"})
	}
	if _, err := time.Parse(models.DateLayout, req.DateOfBirth); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date_of_birth, expected YYYY-MM-DD"})
	}

	doctorID, err := targetDoctorID(c, policy, req.DoctorID)
	if err != nil {
		return err
	}

	if existing, err := h.store.FindPatientByIdentity(req.FirstName, req.LastName, req.DateOfBirth); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":      "A patient with this name and birth date already exists",
			"patient_id": existing.ID,
		})
	} else if !errors.Is(err, storage.ErrNotFound) {
		return storeError(c, err)
	}

	gender := req.Gender
	if gender == "" {
		gender = models.GenderOther
	}

	patient := &models.Patient{
		DoctorID:              doctorID,
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		Email:                 req.Email,
		Phone:                 req.Phone,
		DateOfBirth:           req.DateOfBirth,
		Gender:                gender,
		Address:               req.Address,
		City:                  req.City,
		State:                 req.State,
		ZipCode:               req.ZipCode,
		EmergencyContactName:  req.EmergencyContact,
		EmergencyContactPhone: req.EmergencyPhone,
		MedicalInsurance:      req.MedicalInsurance,
		IsActive:              true,
	}
	if err := h.store.CreatePatient(patient); err != nil {
		return storeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(patient)
}

// ListPatients returns the patients of every accessible doctor; the
// phone query filters by substring match
func (h *PatientHandler) ListPatients(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	if phone := c.Query("phone"); phone != "" {
		patient, err := h.store.FindPatientByPhone(phone)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return c.JSON(fiber.Map{"patients": []*models.Patient{}, "count": 0})
			}
			return storeError(c, err)
		}
		if !policy.CanAccessDoctor(patient.DoctorID) {
			return c.JSON(fiber.Map{"patients": []*models.Patient{}, "count": 0})
		}
		return c.JSON(fiber.Map{"patients": []*models.Patient{patient}, "count": 1})
	}

	patients, err := h.store.GetPatientsByDoctors(policy.AccessibleDoctorIDs())
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{
		"patients": patients,
		"count":    len(patients),
	})
}

// GetPatient retrieves one patient
func (h *PatientHandler) GetPatient(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	patient, err := h.store.GetPatient(c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	if !policy.CanAccessDoctor(patient.DoctorID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No access to this patient"})
	}
	return c.JSON(patient)
}

// UpdatePatient updates a patient's demographic data
func (h *PatientHandler) UpdatePatient(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	patient, err := h.store.GetPatient(c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	if !policy.CanAccessDoctor(patient.DoctorID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No access to this patient"})
	}

	var req patientRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "first_name and date_of_birth are required"})
	}
	if _, err := time.Parse(models.DateLayout, req.DateOfBirth); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date_of_birth, expected YYYY-MM-DD"})
	}

	patient.FirstName = req.FirstName
	patient.LastName = req.LastName
	patient.Email = req.Email
	patient.Phone = req.Phone
	patient.DateOfBirth = req.DateOfBirth
	if req.Gender != "" {
		patient.Gender = req.Gender
	}
	patient.Address = req.Address
	patient.City = req.City
	patient.State = req.State
	patient.ZipCode = req.ZipCode
	patient.EmergencyContactName = req.EmergencyContact
	patient.EmergencyContactPhone = req.EmergencyPhone
	patient.MedicalInsurance = req.MedicalInsurance

	if err := h.store.UpdatePatient(patient); err != nil {
		return storeError(c, err)
	}
	return c.JSON(patient)
}
