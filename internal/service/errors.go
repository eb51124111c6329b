package service

import "errors"

// Typed failures surfaced at the mutation boundary. Validation and
// not-found conditions never escape as anything else.
var (
	ErrDuplicateEmail   = errors.New("email already exists")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrInvalidPhone     = errors.New("invalid phone number format")
	ErrInvalidPrice     = errors.New("price must be greater than zero")
	ErrInvalidStock     = errors.New("stock cannot be negative")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrNoValidProducts  = errors.New("no valid products found")
	ErrProductNotFound  = errors.New("product not found")
)
