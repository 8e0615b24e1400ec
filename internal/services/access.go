package services

import (
	"fmt"

	"github.com/caiotravain/consultorio/internal/models"
	"github.com/caiotravain/consultorio/internal/storage"
)

// AccessPolicy scopes what a staff member can see. Admins reach the
// doctors they manage, doctors reach themselves, secretaries reach
// their assigned doctor.
type AccessPolicy interface {
	// AccessibleDoctorIDs returns the doctors whose data is visible
	AccessibleDoctorIDs() []string
	// ActingDoctorID is the doctor the user acts as, empty for admins
	ActingDoctorID() string
	// CanAccessDoctor reports whether the doctor's data is visible
	CanAccessDoctor(doctorID string) bool
}

// NewAccessPolicy resolves the policy for a user from their role
func NewAccessPolicy(store storage.Store, user *models.User) (AccessPolicy, error) {
	switch user.Role {
	case models.RoleAdmin:
		admin, err := store.GetAdminByUserID(user.ID)
		if err != nil {
			return nil, fmt.Errorf("admin profile not found for user %s: %w", user.ID, err)
		}
		ids := make([]string, 0, len(admin.Doctors))
		for _, d := range admin.Doctors {
			ids = append(ids, d.ID)
		}
		return &doctorSetPolicy{doctorIDs: ids}, nil

	case models.RoleDoctor:
		doctor, err := store.GetDoctorByUserID(user.ID)
		if err != nil {
			return nil, fmt.Errorf("doctor profile not found for user %s: %w", user.ID, err)
		}
		return &doctorSetPolicy{doctorIDs: []string{doctor.ID}, actingDoctorID: doctor.ID}, nil

	case models.RoleSecretary:
		secretary, err := store.GetSecretaryByUserID(user.ID)
		if err != nil {
			return nil, fmt.Errorf("secretary profile not found for user %s: %w", user.ID, err)
		}
		return &doctorSetPolicy{doctorIDs: []string{secretary.DoctorID}, actingDoctorID: secretary.DoctorID}, nil

	default:
		return nil, fmt.Errorf("unknown role %q", user.Role)
	}
}

type doctorSetPolicy struct {
	doctorIDs      []string
	actingDoctorID string
}

func (p *doctorSetPolicy) AccessibleDoctorIDs() []string { return p.doctorIDs }

func (p *doctorSetPolicy) ActingDoctorID() string { return p.actingDoctorID }

func (p *doctorSetPolicy) CanAccessDoctor(doctorID string) bool {
	for _, id := range p.doctorIDs {
		if id == doctorID {
			return true
		}
	}
	return false
}
