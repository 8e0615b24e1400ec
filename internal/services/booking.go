package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caiotravain/consultorio/internal/models"
	"github.com/caiotravain/consultorio/internal/storage"
)

// BookingService owns the appointment lifecycle: creation behind the
// conflict guard, the income side effect, cancellation and rescheduling
type BookingService struct {
	store         storage.Store
	noShowKeyword string
}

// NewBookingService creates a new booking service. noShowKeyword routes
// cancellations to the no_show status when the reason contains it.
func NewBookingService(store storage.Store, noShowKeyword string) *BookingService {
	return &BookingService{store: store, noShowKeyword: noShowKeyword}
}

// Create books an appointment. A non-cancelled appointment on the same
// (doctor, date, start time) slot rejects the booking with
// storage.ErrSlotTaken.
func (b *BookingService) Create(appointment *models.Appointment) error {
	if appointment.DurationMinutes <= 0 {
		appointment.DurationMinutes = models.DefaultDurationMinutes
	}
	if appointment.Type == "" {
		appointment.Type = models.TypeConsultation
	}
	if appointment.Status == "" {
		appointment.Status = models.AppointmentScheduled
	}
	if !models.ValidAppointmentStatuses[appointment.Status] {
		return fmt.Errorf("invalid appointment status %q", appointment.Status)
	}
	if !models.ValidAppointmentTypes[appointment.Type] {
		return fmt.Errorf("invalid appointment type %q", appointment.Type)
	}
	if _, err := time.Parse(models.DateLayout, appointment.Date); err != nil {
		return fmt.Errorf("invalid date %q", appointment.Date)
	}
	if _, err := parseClock(appointment.StartTime); err != nil {
		return err
	}

	if err := b.store.CreateAppointment(appointment); err != nil {
		return err
	}

	b.maybeCreateIncome(appointment)
	return nil
}

// maybeCreateIncome records the appointment's value as income when the
// visit is already paid for: value set, status confirmed or completed,
// date not in the future
func (b *BookingService) maybeCreateIncome(appointment *models.Appointment) {
	if appointment.Value == nil {
		return
	}
	if appointment.Status != models.AppointmentConfirmed && appointment.Status != models.AppointmentCompleted {
		return
	}
	today := time.Now().Format(models.DateLayout)
	if appointment.Date > today {
		return
	}

	income := &models.Income{
		DoctorID:      appointment.DoctorID,
		AppointmentID: appointment.ID,
		Amount:        *appointment.Value,
		Description:   fmt.Sprintf("Consulta %s %s", appointment.Date, appointment.StartTime),
		Category:      incomeCategoryFor(appointment.Type),
		Date:          appointment.Date,
		PaymentMethod: appointment.PaymentType,
	}
	if err := b.store.CreateIncome(income); err != nil {
		log.Printf("❌ Failed to create income for appointment %s: %v", appointment.ID, err)
	}
}

func incomeCategoryFor(appointmentType string) string {
	if models.ValidAppointmentTypes[appointmentType] {
		return appointmentType
	}
	return models.IncomeOther
}

// Cancel releases an appointment's slot. Linked income rows are deleted
// first. The status becomes no_show instead of cancelled when the
// reason contains the configured keyword.
func (b *BookingService) Cancel(id, reason string) (*models.Appointment, error) {
	appointment, err := b.store.GetAppointment(id)
	if err != nil {
		return nil, err
	}
	if appointment.Status == models.AppointmentCancelled {
		return appointment, nil
	}

	if err := b.store.DeleteIncomesByAppointment(id); err != nil {
		return nil, err
	}

	status := models.AppointmentCancelled
	if b.noShowKeyword != "" &&
		strings.Contains(strings.ToLower(reason), strings.ToLower(b.noShowKeyword)) {
		status = models.AppointmentNoShow
	}

	now := time.Now()
	appointment.Status = status
	appointment.CancelledAt = &now
	appointment.CancellationReason = reason
	if err := b.store.UpdateAppointment(appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

// Complete marks an appointment as completed
func (b *BookingService) Complete(id string) (*models.Appointment, error) {
	appointment, err := b.store.GetAppointment(id)
	if err != nil {
		return nil, err
	}
	appointment.Status = models.AppointmentCompleted
	if err := b.store.UpdateAppointment(appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

// Reschedule moves an appointment to a new slot, re-running the
// conflict guard against the target
func (b *BookingService) Reschedule(id, date, startTime string) (*models.Appointment, error) {
	appointment, err := b.store.GetAppointment(id)
	if err != nil {
		return nil, err
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date %q", date)
	}
	if _, err := parseClock(startTime); err != nil {
		return nil, err
	}

	taken, err := b.store.SlotTaken(appointment.DoctorID, date, startTime, appointment.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, storage.ErrSlotTaken
	}

	appointment.Date = date
	appointment.StartTime = startTime
	appointment.Status = models.AppointmentRescheduled
	if err := b.store.UpdateAppointment(appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}
