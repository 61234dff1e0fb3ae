package models

import "time"

// User captures application-facing fields for an account.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	FirstName    *string    `json:"first_name"`
	LastName     *string    `json:"last_name"`
	PhoneNumber  *string    `json:"phone_number"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	IsBarber     bool       `json:"is_barber"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

// UserPatch lists the attributes an update may replace. Fields that are not
// present are left untouched by the store.
type UserPatch struct {
	Email        Optional[string]
	Username     Optional[string]
	FirstName    Optional[*string]
	LastName     Optional[*string]
	PhoneNumber  Optional[*string]
	PasswordHash Optional[string]
	IsActive     Optional[bool]
	IsBarber     Optional[bool]
}

// Assignment is a single column update derived from a UserPatch.
type Assignment struct {
	Column string
	Value  any
}

// Assignments returns the column updates for every present field, in a
// stable order.
func (p UserPatch) Assignments() []Assignment {
	var out []Assignment
	add := func(column string, value any, present bool) {
		if present {
			out = append(out, Assignment{Column: column, Value: value})
		}
	}
	add("email", p.Email.value, p.Email.present)
	add("username", p.Username.value, p.Username.present)
	add("first_name", p.FirstName.value, p.FirstName.present)
	add("last_name", p.LastName.value, p.LastName.present)
	add("phone_number", p.PhoneNumber.value, p.PhoneNumber.present)
	add("hashed_password", p.PasswordHash.value, p.PasswordHash.present)
	add("is_active", p.IsActive.value, p.IsActive.present)
	add("is_barber", p.IsBarber.value, p.IsBarber.present)
	return out
}
