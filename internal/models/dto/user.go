package dto

import "github.com/hongminglow/barbershop-users/internal/models"

// RegisterRequest is the body of POST /users.
type RegisterRequest struct {
	Email       string  `json:"email"`
	Username    string  `json:"username"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
	Password    string  `json:"password"`
	IsBarber    bool    `json:"is_barber"`
}

// UpdateUserRequest is the body of PUT /users/{id}. Only keys present in the
// JSON document are applied.
type UpdateUserRequest struct {
	Email       models.Optional[string]  `json:"email"`
	Username    models.Optional[string]  `json:"username"`
	FirstName   models.Optional[*string] `json:"first_name"`
	LastName    models.Optional[*string] `json:"last_name"`
	PhoneNumber models.Optional[*string] `json:"phone_number"`
	Password    models.Optional[string]  `json:"password"`
	IsActive    models.Optional[bool]    `json:"is_active"`
	IsBarber    models.Optional[bool]    `json:"is_barber"`
}
