package model

type Patient struct {
	Base
	Name       string `db:"name" json:"name"`
	Email      string `db:"email" json:"email"`
	Phone      string `db:"phone" json:"phone"`
	NationalID string `db:"national_id" json:"national_id"`
	Active     bool   `db:"active" json:"active"`
}

type CreatePatientRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone" binding:"required"`
	NationalID string `json:"national_id" binding:"required"`
}

type UpdatePatientRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

type PatientFilters struct {
	Pagination
}
