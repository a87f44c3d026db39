// Package types holds the data structures shared by handlers and storage.
// Keeping them in one place prevents import cycles: handlers, storage and
// utils can all import types without depending on each other.
package types

import "time"

// RegistrationStatus is the review state of an author registration.
type RegistrationStatus string

const (
	StatusPending  RegistrationStatus = "pending"
	StatusApproved RegistrationStatus = "approved"
	StatusRejected RegistrationStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// AuthorRegistration is a request to register authorship of a work.
//
// Struct tags serve two purposes:
//
//  1. json:"..."     : the field name on the wire (and in validation errors).
//  2. validate:"..." : rules checked by go-playground/validator. "cpf" is a
//     custom tag that runs the CPF checksum on the server, whatever the
//     client already checked.
//
// CPF is stored as digits only; handlers render it formatted.
type AuthorRegistration struct {
	ID         string             `json:"id"`
	WorkTitle  string             `json:"work_title"  validate:"required,max=200"`
	AuthorName string             `json:"author_name" validate:"required,max=120"`
	Email      string             `json:"email"       validate:"required,email"`
	CPF        string             `json:"cpf"         validate:"required,cpf"`
	Status     RegistrationStatus `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// RegistrationFilter narrows a registration listing. Zero values match all.
type RegistrationFilter struct {
	Status RegistrationStatus
	CPF    string
}

// StatusUpdate is the body of PATCH /api/registrations/{id}/status.
type StatusUpdate struct {
	Status RegistrationStatus `json:"status" validate:"required,oneof=pending approved rejected"`
}

// CPFCheckRequest is the body of POST /api/cpf/validate.
type CPFCheckRequest struct {
	CPF string `json:"cpf"`
}

// CPFCheckResponse reports the outcome of a CPF check. An invalid CPF is a
// normal answer (valid=false), not an error.
type CPFCheckResponse struct {
	Valid     bool   `json:"valid"`
	Digits    string `json:"digits"`
	Formatted string `json:"formatted"`
}
