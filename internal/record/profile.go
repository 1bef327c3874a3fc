package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// profileNamespace seeds the deterministic id of the default profile so that
// a wiped store always comes back with the same profile id.
var profileNamespace = uuid.MustParse("6f1c2a8e-4b7d-4f0a-9c3e-2d5b8a7e1f40")

// DefaultProfile is the profile a new store starts with and the one a full
// wipe resets to.
func DefaultProfile() PatientProfile {
	return PatientProfile{
		ID:          uuid.NewSHA1(profileNamespace, []byte("default-profile")).String(),
		Photo:       nil,
		FullName:    "Nabel Alsulaiman",
		DateOfBirth: "1997-03-28",
		Gender:      SexMale,
		BloodGroup:  "O+",
		Allergies:   []string{"Penicillin", "Peanuts"},
		EmergencyContact: EmergencyContact{
			Name:         "Jane Doe",
			Relationship: "Spouse",
			Phone:        "+1 (555) 123-4567",
		},
	}
}

func (p PatientProfile) Clone() PatientProfile {
	out := p
	out.Allergies = append([]string{}, p.Allergies...)
	if p.Photo != nil {
		photo := *p.Photo
		out.Photo = &photo
	}
	if p.EmergencyContact.BloodGroup != nil {
		bg := *p.EmergencyContact.BloodGroup
		out.EmergencyContact.BloodGroup = &bg
	}
	return out
}

// Validate checks the fields a caller is expected to supply before the
// profile is written.
func (p PatientProfile) Validate() error {
	if strings.TrimSpace(p.FullName) == "" {
		return fmt.Errorf("%w: fullName", ErrMissingField)
	}
	if p.DateOfBirth != "" {
		if _, err := time.Parse(DateLayout, p.DateOfBirth); err != nil {
			return fmt.Errorf("%w: dateOfBirth %q", ErrInvalidDate, p.DateOfBirth)
		}
	}
	if p.Gender != "" && !p.Gender.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSex, p.Gender)
	}
	if p.BloodGroup != "" && !p.BloodGroup.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidBloodGroup, p.BloodGroup)
	}
	if bg := p.EmergencyContact.BloodGroup; bg != nil && !bg.Valid() {
		return fmt.Errorf("%w: emergency contact %q", ErrInvalidBloodGroup, *bg)
	}
	return nil
}

// ProfilePatch is a partial profile. Nil fields are left untouched.
type ProfilePatch struct {
	// Photo set to the empty string removes the stored photo.
	Photo            *string           `json:"photo,omitempty"`
	FullName         *string           `json:"fullName,omitempty"`
	DateOfBirth      *string           `json:"dateOfBirth,omitempty"`
	Gender           *Sex              `json:"gender,omitempty"`
	BloodGroup       *BloodGroup       `json:"bloodGroup,omitempty"`
	Allergies        *[]string         `json:"allergies,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`
}

// Apply shallow-merges the patch into p and returns the result.
func (pp ProfilePatch) Apply(p PatientProfile) PatientProfile {
	out := p.Clone()
	if pp.Photo != nil {
		if *pp.Photo == "" {
			out.Photo = nil
		} else {
			photo := *pp.Photo
			out.Photo = &photo
		}
	}
	if pp.FullName != nil {
		out.FullName = *pp.FullName
	}
	if pp.DateOfBirth != nil {
		out.DateOfBirth = *pp.DateOfBirth
	}
	if pp.Gender != nil {
		out.Gender = *pp.Gender
	}
	if pp.BloodGroup != nil {
		out.BloodGroup = *pp.BloodGroup
	}
	if pp.Allergies != nil {
		out.Allergies = append([]string{}, (*pp.Allergies)...)
	}
	if pp.EmergencyContact != nil {
		out.EmergencyContact = *pp.EmergencyContact
	}
	return out
}
