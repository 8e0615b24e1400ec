package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/caiotravain/consultorio/internal/models"
	"github.com/caiotravain/consultorio/internal/storage"
)

const defaultRecordPageSize = 20

// MedicalRecordHandler handles clinical notes
type MedicalRecordHandler struct {
	store storage.Store
}

// NewMedicalRecordHandler creates a new medical record handler
func NewMedicalRecordHandler(store storage.Store) *MedicalRecordHandler {
	return &MedicalRecordHandler{store: store}
}

// CreateRecord adds a clinical note to a patient's history
func (h *MedicalRecordHandler) CreateRecord(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	var req struct {
		PatientID string `json:"patient_id" validate:"required"`
		DoctorID  string `json:"doctor_id"`
		Content   string `json:"content" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "patient_id and content are required"})
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

	record := &models.MedicalRecord{
		PatientID:  patient.ID,
		DoctorID:   doctorID,
		RecordedAt: time.Now(),
		Content:    req.Content,
	}
	if err := h.store.CreateMedicalRecord(record); err != nil {
		return storeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

// ListRecords pages through a patient's history, newest first
func (h *MedicalRecordHandler) ListRecords(c *fiber.Ctx) error {
	policy, _, err := resolvePolicy(c, h.store)
	if err != nil {
		return err
	}

	patientID := c.Params("patientID")
	patient, err := h.store.GetPatient(patientID)
	if err != nil {
		return storeError(c, err)
	}
	if !policy.CanAccessDoctor(patient.DoctorID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No access to this patient"})
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("page_size", defaultRecordPageSize)
	if pageSize < 1 || pageSize > 100 {
		pageSize = defaultRecordPageSize
	}

	records, total, err := h.store.GetMedicalRecords(patientID, c.Query("doctor_id"), (page-1)*pageSize, pageSize)
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(fiber.Map{
		"records":   records,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
