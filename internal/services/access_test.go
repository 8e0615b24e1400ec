package services

import (
	"testing"

	"github.com/caiotravain/consultorio/internal/models"
	"github.com/caiotravain/consultorio/internal/storage"
)

func seedUser(t *testing.T, store storage.Store, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Email:     string(role) + "@consultorio.test",
		FirstName: "Staff",
		Role:      role,
		IsActive:  true,
	}
	if err := user.SetPassword("secret123"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if err := store.CreateUser(user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func TestAdminPolicy(t *testing.T) {
	store := storage.NewMemoryStore()
	managed := seedDoctor(t, store)
	other := &models.Doctor{FirstName: "Bruno", LastName: "Costa", MedicalLicense: "CRM-99999", IsActive: true}
	if err := store.CreateDoctor(other); err != nil {
		t.Fatalf("CreateDoctor: %v", err)
	}

	user := seedUser(t, store, models.RoleAdmin)
	admin := &models.Admin{UserID: user.ID, Doctors: []*models.Doctor{managed}}
	if err := store.CreateAdmin(admin); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	policy, err := NewAccessPolicy(store, user)
	if err != nil {
		t.Fatalf("NewAccessPolicy: %v", err)
	}

	if ids := policy.AccessibleDoctorIDs(); len(ids) != 1 || ids[0] != managed.ID {
		t.Errorf("accessible doctors %v, want only %s", ids, managed.ID)
	}
	if policy.ActingDoctorID() != "" {
		t.Errorf("admin should not act as a doctor, got %q", policy.ActingDoctorID())
	}
	if !policy.CanAccessDoctor(managed.ID) {
		t.Error("managed doctor should be accessible")
	}
	if policy.CanAccessDoctor(other.ID) {
		t.Error("unmanaged doctor should not be accessible")
	}
}

func TestDoctorPolicy(t *testing.T) {
	store := storage.NewMemoryStore()
	user := seedUser(t, store, models.RoleDoctor)

	doctor := &models.Doctor{
		UserID:         user.ID,
		FirstName:      "Ana",
		LastName:       "Souza",
		MedicalLicense: "CRM-12345",
		IsActive:       true,
	}
	if err := store.CreateDoctor(doctor); err != nil {
		t.Fatalf("CreateDoctor: %v", err)
	}

	policy, err := NewAccessPolicy(store, user)
	if err != nil {
		t.Fatalf("NewAccessPolicy: %v", err)
	}

	if policy.ActingDoctorID() != doctor.ID {
		t.Errorf("acting doctor %q, want %q", policy.ActingDoctorID(), doctor.ID)
	}
	if !policy.CanAccessDoctor(doctor.ID) {
		t.Error("doctor should access their own data")
	}
	if policy.CanAccessDoctor("someone-else") {
		t.Error("doctor should not access another doctor")
	}
}

func TestSecretaryPolicy(t *testing.T) {
	store := storage.NewMemoryStore()
	doctor := seedDoctor(t, store)
	user := seedUser(t, store, models.RoleSecretary)

	secretary := &models.Secretary{UserID: user.ID, DoctorID: doctor.ID, IsActive: true}
	if err := store.CreateSecretary(secretary); err != nil {
		t.Fatalf("CreateSecretary: %v", err)
	}

	policy, err := NewAccessPolicy(store, user)
	if err != nil {
		t.Fatalf("NewAccessPolicy: %v", err)
	}

	if policy.ActingDoctorID() != doctor.ID {
		t.Errorf("acting doctor %q, want %q", policy.ActingDoctorID(), doctor.ID)
	}
	if ids := policy.AccessibleDoctorIDs(); len(ids) != 1 || ids[0] != doctor.ID {
		t.Errorf("accessible doctors %v", ids)
	}
}

func TestPolicyMissingProfile(t *testing.T) {
	store := storage.NewMemoryStore()
	user := seedUser(t, store, models.RoleDoctor)

	if _, err := NewAccessPolicy(store, user); err == nil {
		t.Error("expected error for user without a doctor profile")
	}
}
