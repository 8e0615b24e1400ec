package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/caiotravain/consultorio/internal/models"
	"github.com/caiotravain/consultorio/internal/storage"
)

// PrescriptionHandler handles prescriptions and their medication items
type PrescriptionHandler struct {
	store storage.Store
}

// NewPrescriptionHandler creates a new prescription handler
func NewPrescriptionHandler(store storage.Store) *PrescriptionHandler {
	return &PrescriptionHandler{store: store}
}

// CreatePrescription records a prescription with its ordered items
func (h *PrescriptionHandler) CreatePrescription(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	var req struct {
		PatientID string `json:"patient_id" validate:"required"`
		DoctorID  string `json:"doctor_id"`
		Date      string `json:"date"`
		Notes     string `json:"notes"`
		Items     []struct {
			MedicationName string `json:"medication_name" validate:"required"`
			Quantity       string `json:"quantity"`
			Dosage         string `json:"dosage"`
			Notes          string `json:"notes"`
		} `json:"items" validate:"required,min=1,dive"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "patient_id and at least one item with medication_name are required"})
	}

	doctorID, err := targetDoctorID(c, policy, req.DoctorID)
	if err != nil {
		return err
	}

	patient, err := h.store.GetPatient(req.PatientID)
	if err != nil {
		return storeError(c, err)
	}
	if !policy.CanAccessDoctor(patient.DoctorID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No access to this patient"})
	}

	date := req.Date
	if date == "" {
		date = time.Now().Format(models.DateLayout)
	} else if _, err := time.Parse(models.DateLayout, date); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
	}

	prescription := &models.Prescription{
		PatientID: patient.ID,
		DoctorID:  doctorID,
		Date:      date,
		Status:    models.PrescriptionActive,
		Notes:     req.Notes,
	}
	for i, item := range req.Items {
		prescription.Items = append(prescription.Items, models.PrescriptionItem{
			MedicationName: item.MedicationName,
			Quantity:       item.Quantity,
			Dosage:         item.Dosage,
			Notes:          item.Notes,
			Position:       i,
		})
	}

	if err := h.store.CreatePrescription(prescription); err != nil {
		return storeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(prescription)
}

// GetPrescription retrieves one prescription with its items in order
func (h *PrescriptionHandler) GetPrescription(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	prescription, err := h.store.GetPrescription(c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	if !policy.CanAccessDoctor(prescription.DoctorID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No access to this prescription"})
	}
	return c.JSON(prescription)
}

// ListPrescriptions returns a doctor's prescriptions, newest first
func (h *PrescriptionHandler) ListPrescriptions(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	doctorID, err := targetDoctorID(c, policy, c.Query("doctor_id"))
	if err != nil {
		return err
	}

	prescriptions, err := h.store.GetPrescriptionsByDoctor(doctorID)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{
		"prescriptions": prescriptions,
		"count":         len(prescriptions),
	})
}
