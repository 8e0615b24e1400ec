package services

import (
	"errors"
	"testing"
	"time"

	"github.com/caiotravain/consultorio/internal/models"
	"github.com/caiotravain/consultorio/internal/storage"
)

func newBookingFixture(t *testing.T) (*BookingService, storage.Store, *models.Doctor, *models.Patient) {
	t.Helper()
	store := storage.NewMemoryStore()
	doctor := seedDoctor(t, store)
	patient := seedPatient(t, store, doctor.ID)
	return NewBookingService(store, "faltou"), store, doctor, patient
}

func TestCreateRejectsDoubleBooking(t *testing.T) {
	booking, _, doctor, patient := newBookingFixture(t)

	first := &models.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      "2026-09-01",
		StartTime: "09:00",
	}
	if err := booking.Create(first); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	second := &models.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      "2026-09-01",
		StartTime: "09:00",
	}
	if err := booking.Create(second); !errors.Is(err, storage.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestCancelledSlotIsRebookable(t *testing.T) {
	booking, _, doctor, patient := newBookingFixture(t)

	first := &models.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      "2026-09-01",
		StartTime: "09:00",
	}
	if err := booking.Create(first); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := booking.Cancel(first.ID, "paciente desmarcou"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	second := &models.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      "2026-09-01",
		StartTime: "09:00",
	}
	if err := booking.Create(second); err != nil {
		t.Fatalf("rebooking cancelled slot: %v", err)
	}
}

func TestConflictGuardIgnoresOverlap(t *testing.T) {
	booking, _, doctor, patient := newBookingFixture(t)

	long := &models.Appointment{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		Date:            "2026-09-01",
		StartTime:       "09:00",
		DurationMinutes: 60,
	}
	if err := booking.Create(long); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	// Only identical start times conflict; staff may deliberately
	// overlap appointments
	overlapping := &models.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      "2026-09-01",
		StartTime: "09:30",
	}
	if err := booking.Create(overlapping); err != nil {
		t.Fatalf("overlapping start time should be allowed, got %v", err)
	}
}

func TestCreateDefaults(t *testing.T) {
	booking, _, doctor, patient := newBookingFixture(t)

	appointment := &models.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      "2026-09-01",
		StartTime: "08:00",
	}
	if err := booking.Create(appointment); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if appointment.DurationMinutes != models.DefaultDurationMinutes {
		t.Errorf("duration not defaulted, got %d", appointment.DurationMinutes)
	}
	if appointment.Type != models.TypeConsultation {
		t.Errorf("type not defaulted, got %q", appointment.Type)
	}
	if appointment.Status != models.AppointmentScheduled {
		t.Errorf("status not defaulted, got %q", appointment.Status)
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name        string
		appointment models.Appointment
	}{
		{"bad date", models.Appointment{Date: "01/09/2026", StartTime: "09:00"}},
		{"bad time", models.Appointment{Date: "2026-09-01", StartTime: "9am"}},
		{"bad status", models.Appointment{Date: "2026-09-01", StartTime: "09:00", Status: "pending"}},
		{"bad type", models.Appointment{Date: "2026-09-01", StartTime: "09:00", Type: "surgery"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking, _, doctor, patient := newBookingFixture(t)
			a := tt.appointment
			a.PatientID = patient.ID
			a.DoctorID = doctor.ID
			if err := booking.Create(&a); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestIncomeSideEffect(t *testing.T) {
	today := time.Now().Format(models.DateLayout)
	future := time.Now().AddDate(0, 0, 7).Format(models.DateLayout)
	value := 250.0

	tests := []struct {
		name       string
		value      *float64
		status     string
		date       string
		wantIncome bool
	}{
		{"confirmed with value today", &value, models.AppointmentConfirmed, today, true},
		{"completed with value today", &value, models.AppointmentCompleted, today, true},
		{"scheduled with value", &value, models.AppointmentScheduled, today, false},
		{"confirmed without value", nil, models.AppointmentConfirmed, today, false},
		{"confirmed with value in the future", &value, models.AppointmentConfirmed, future, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking, store, doctor, patient := newBookingFixture(t)

			appointment := &models.Appointment{
				PatientID:   patient.ID,
				DoctorID:    doctor.ID,
				Date:        tt.date,
				StartTime:   "09:00",
				Status:      tt.status,
				Value:       tt.value,
				PaymentType: models.PaymentParticular,
			}
			if err := booking.Create(appointment); err != nil {
				t.Fatalf("Create: %v", err)
			}

			incomes, err := store.GetIncomesByDoctorAndRange(doctor.ID, tt.date, tt.date)
			if err != nil {
				t.Fatalf("GetIncomesByDoctorAndRange: %v", err)
			}
			if tt.wantIncome {
				if len(incomes) != 1 {
					t.Fatalf("expected 1 income, got %d", len(incomes))
				}
				if incomes[0].Amount != value {
					t.Errorf("income amount %v, want %v", incomes[0].Amount, value)
				}
				if incomes[0].AppointmentID != appointment.ID {
					t.Error("income not linked to appointment")
				}
			} else if len(incomes) != 0 {
				t.Errorf("expected no income, got %d", len(incomes))
			}
		})
	}
}

func TestCancelDeletesIncome(t *testing.T) {
	booking, store, doctor, patient := newBookingFixture(t)

	today := time.Now().Format(models.DateLayout)
	value := 180.0
	appointment := &models.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      today,
		StartTime: "09:00",
		Status:    models.AppointmentConfirmed,
		Value:     &value,
	}
	if err := booking.Create(appointment); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := booking.Cancel(appointment.ID, "paciente desmarcou"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	incomes, err := store.GetIncomesByDoctorAndRange(doctor.ID, today, today)
	if err != nil {
		t.Fatalf("GetIncomesByDoctorAndRange: %v", err)
	}
	if len(incomes) != 0 {
		t.Errorf("income should be deleted on cancel, got %d rows", len(incomes))
	}
}

func TestCancelNoShowKeyword(t *testing.T) {
	tests := []struct {
		name       string
		reason     string
		wantStatus string
	}{
		{"plain cancellation", "paciente desistiu", models.AppointmentCancelled},
		{"keyword routes to no show", "Paciente FALTOU à consulta", models.AppointmentNoShow},
		{"empty reason", "", models.AppointmentCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking, _, doctor, patient := newBookingFixture(t)

			appointment := &models.Appointment{
				PatientID: patient.ID,
				DoctorID:  doctor.ID,
				Date:      "2026-09-01",
				StartTime: "09:00",
			}
			if err := booking.Create(appointment); err != nil {
				t.Fatalf("Create: %v", err)
			}

			cancelled, err := booking.Cancel(appointment.ID, tt.reason)
			if err != nil {
				t.Fatalf("Cancel: %v", err)
			}
			if cancelled.Status != tt.wantStatus {
				t.Errorf("status %q, want %q", cancelled.Status, tt.wantStatus)
			}
			if cancelled.CancelledAt == nil {
				t.Error("CancelledAt not set")
			}
			if cancelled.CancellationReason != tt.reason {
				t.Errorf("reason %q, want %q", cancelled.CancellationReason, tt.reason)
			}
		})
	}
}

func TestRescheduleConflict(t *testing.T) {
	booking, _, doctor, patient := newBookingFixture(t)

	first := &models.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      "2026-09-01",
		StartTime: "09:00",
	}
	second := &models.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      "2026-09-01",
		StartTime: "10:00",
	}
	if err := booking.Create(first); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if err := booking.Create(second); err != nil {
		t.Fatalf("second booking: %v", err)
	}

	if _, err := booking.Reschedule(second.ID, "2026-09-01", "09:00"); !errors.Is(err, storage.ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}

	moved, err := booking.Reschedule(second.ID, "2026-09-02", "11:00")
	if err != nil {
		t.Fatalf("Reschedule to free slot: %v", err)
	}
	if moved.Date != "2026-09-02" || moved.StartTime != "11:00" {
		t.Errorf("slot not updated: %s %s", moved.Date, moved.StartTime)
	}
	if moved.Status != models.AppointmentRescheduled {
		t.Errorf("status %q, want %q", moved.Status, models.AppointmentRescheduled)
	}
}
