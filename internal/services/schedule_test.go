package services

import (
	"testing"
	"time"

	"github.com/caiotravain/consultorio/internal/models"
	"github.com/caiotravain/consultorio/internal/storage"
)

func seedDoctor(t *testing.T, store storage.Store) *models.Doctor {
	t.Helper()
	doctor := &models.Doctor{
		FirstName:      "Ana",
		LastName:       "Souza",
		MedicalLicense: "CRM-12345",
		IsActive:       true,
	}
	if err := store.CreateDoctor(doctor); err != nil {
		t.Fatalf("CreateDoctor: %v", err)
	}
	return doctor
}

func seedPatient(t *testing.T, store storage.Store, doctorID string) *models.Patient {
	t.Helper()
	patient := &models.Patient{
		DoctorID:    doctorID,
		FirstName:   "João",
		LastName:    "Pereira",
		Phone:       "11912345678",
		DateOfBirth: "1990-05-10",
		Gender:      models.GenderMale,
		IsActive:    true,
	}
	if err := store.CreatePatient(patient); err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}
	return patient
}

func mustBook(t *testing.T, store storage.Store, a *models.Appointment) {
	t.Helper()
	if a.Status == "" {
		a.Status = models.AppointmentScheduled
	}
	if err := store.CreateAppointment(a); err != nil {
		t.Fatalf("CreateAppointment at %s %s: %v", a.Date, a.StartTime, err)
	}
}

func TestAvailableTimesEmptyDay(t *testing.T) {
	store := storage.NewMemoryStore()
	doctor := seedDoctor(t, store)
	schedule := NewScheduleService(store)

	times, err := schedule.AvailableTimes(doctor.ID, "2026-09-01")
	if err != nil {
		t.Fatalf("AvailableTimes: %v", err)
	}
	if len(times) != 20 {
		t.Fatalf("expected 20 slots on an empty day, got %d", len(times))
	}
	if times[0] != "08:00" || times[len(times)-1] != "17:30" {
		t.Errorf("grid boundaries wrong: first %s, last %s", times[0], times[len(times)-1])
	}
}

func TestAvailableTimesBlocking(t *testing.T) {
	const date = "2026-09-01"

	tests := []struct {
		name         string
		startTime    string
		duration     int
		status       string
		blockedSlots []string
	}{
		{
			name:         "default duration blocks one slot",
			startTime:    "09:00",
			duration:     30,
			blockedSlots: []string{"09:00"},
		},
		{
			name:         "hour long appointment blocks two slots",
			startTime:    "10:00",
			duration:     60,
			blockedSlots: []string{"10:00", "10:30"},
		},
		{
			name:         "duration past closing blocks trailing slots",
			startTime:    "17:00",
			duration:     90,
			blockedSlots: []string{"17:00", "17:30"},
		},
		{
			name:         "cancelled appointment blocks nothing",
			startTime:    "11:00",
			duration:     60,
			status:       models.AppointmentCancelled,
			blockedSlots: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			doctor := seedDoctor(t, store)
			patient := seedPatient(t, store, doctor.ID)
			schedule := NewScheduleService(store)

			status := tt.status
			if status == "" {
				status = models.AppointmentScheduled
			}
			mustBook(t, store, &models.Appointment{
				PatientID:       patient.ID,
				DoctorID:        doctor.ID,
				Date:            date,
				StartTime:       tt.startTime,
				DurationMinutes: tt.duration,
				Status:          status,
			})

			times, err := schedule.AvailableTimes(doctor.ID, date)
			if err != nil {
				t.Fatalf("AvailableTimes: %v", err)
			}

			free := make(map[string]bool, len(times))
			for _, slot := range times {
				free[slot] = true
			}
			for _, blocked := range tt.blockedSlots {
				if free[blocked] {
					t.Errorf("slot %s should be blocked", blocked)
				}
			}
			if want := 20 - len(tt.blockedSlots); len(times) != want {
				t.Errorf("expected %d free slots, got %d", want, len(times))
			}
		})
	}
}

func TestHasAvailableSlotsFullDay(t *testing.T) {
	const date = "2026-09-01"
	store := storage.NewMemoryStore()
	doctor := seedDoctor(t, store)
	patient := seedPatient(t, store, doctor.ID)
	schedule := NewScheduleService(store)

	for slot := businessStartMinutes; slot < businessEndMinutes; slot += slotMinutes {
		mustBook(t, store, &models.Appointment{
			PatientID:       patient.ID,
			DoctorID:        doctor.ID,
			Date:            date,
			StartTime:       formatClock(slot),
			DurationMinutes: 30,
		})
	}

	free, err := schedule.HasAvailableSlots(doctor.ID, date)
	if err != nil {
		t.Fatalf("HasAvailableSlots: %v", err)
	}
	if free {
		t.Error("fully booked day reported as available")
	}

	times, err := schedule.AvailableTimes(doctor.ID, date)
	if err != nil {
		t.Fatalf("AvailableTimes: %v", err)
	}
	if len(times) != 0 {
		t.Errorf("fully booked day returned %d slots", len(times))
	}
}

func TestAvailableDatesSkipsWeekends(t *testing.T) {
	store := storage.NewMemoryStore()
	doctor := seedDoctor(t, store)
	schedule := NewScheduleService(store)

	// Monday 2026-08-31; scan starts on Tuesday
	from := time.Date(2026, 8, 31, 10, 0, 0, 0, time.Local)
	dates, err := schedule.AvailableDates(doctor.ID, from)
	if err != nil {
		t.Fatalf("AvailableDates: %v", err)
	}

	if len(dates) != maxOfferedDates {
		t.Fatalf("expected %d dates for a free calendar, got %d", maxOfferedDates, len(dates))
	}
	if dates[0] != "2026-09-01" {
		t.Errorf("scan should start the day after, got %s", dates[0])
	}
	for _, date := range dates {
		day, err := time.Parse(models.DateLayout, date)
		if err != nil {
			t.Fatalf("bad date %q: %v", date, err)
		}
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			t.Errorf("weekend date %s offered", date)
		}
	}
}

func TestAvailableDatesExcludesFullDays(t *testing.T) {
	store := storage.NewMemoryStore()
	doctor := seedDoctor(t, store)
	patient := seedPatient(t, store, doctor.ID)
	schedule := NewScheduleService(store)

	// Fill Tuesday 2026-09-01 completely
	for slot := businessStartMinutes; slot < businessEndMinutes; slot += slotMinutes {
		mustBook(t, store, &models.Appointment{
			PatientID:       patient.ID,
			DoctorID:        doctor.ID,
			Date:            "2026-09-01",
			StartTime:       formatClock(slot),
			DurationMinutes: 30,
		})
	}

	from := time.Date(2026, 8, 31, 10, 0, 0, 0, time.Local)
	dates, err := schedule.AvailableDates(doctor.ID, from)
	if err != nil {
		t.Fatalf("AvailableDates: %v", err)
	}
	for _, date := range dates {
		if date == "2026-09-01" {
			t.Error("fully booked date was offered")
		}
	}
}
