package customer

import "errors"

// Module errors.
var (
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrEmailAlreadyExists = errors.New("customer with this email already exists")
	ErrUsernameExhausted  = errors.New("could not allocate a unique username")
	ErrInvalidSortField   = errors.New("invalid sort field")
)
