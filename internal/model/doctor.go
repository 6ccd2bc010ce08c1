package model

// Specialty is the medical specialty a doctor practices.
type Specialty string

const (
	SpecialtyOrthopedics Specialty = "orthopedics"
	SpecialtyCardiology  Specialty = "cardiology"
	SpecialtyGynecology  Specialty = "gynecology"
	SpecialtyDermatology Specialty = "dermatology"
	SpecialtyNeurology   Specialty = "neurology"
	SpecialtyPediatrics  Specialty = "pediatrics"
)

// Specialties lists every accepted specialty.
var Specialties = []Specialty{
	SpecialtyOrthopedics,
	SpecialtyCardiology,
	SpecialtyGynecology,
	SpecialtyDermatology,
	SpecialtyNeurology,
	SpecialtyPediatrics,
}

func (s Specialty) Valid() bool {
	for _, known := range Specialties {
		if s == known {
			return true
		}
	}
	return false
}

type Doctor struct {
	Base
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	Phone         string    `db:"phone" json:"phone"`
	LicenseNumber string    `db:"license_number" json:"license_number"`
	Specialty     Specialty `db:"specialty" json:"specialty"`
	Active        bool      `db:"active" json:"active"`
}

type CreateDoctorRequest struct {
	Name          string    `json:"name" binding:"required"`
	Email         string    `json:"email" binding:"required,email"`
	Phone         string    `json:"phone" binding:"required"`
	LicenseNumber string    `json:"license_number" binding:"required"`
	Specialty     Specialty `json:"specialty" binding:"required,specialty"`
}

// UpdateDoctorRequest only covers contact fields; specialty and license
// number are immutable once registered.
type UpdateDoctorRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

type DoctorFilters struct {
	Pagination
	Specialty Specialty `form:"specialty"`
}
