package models

// Role is the permission tier of a user.
type Role string

const (
	RegularUser Role = "regular"
	Barber      Role = "barber"
)

// Role derives the user's tier from the barber flag.
func (u User) Role() Role {
	if u.IsBarber {
		return Barber
	}
	return RegularUser
}

// CanModify reports whether actor may update the user identified by targetID:
// users may edit themselves, barbers may edit anyone.
func CanModify(actor User, targetID int64) bool {
	return actor.ID == targetID || actor.Role() == Barber
}

// CanDelete reports whether actor may delete users. Only barbers may, and
// there is no exception for deleting oneself.
func CanDelete(actor User) bool {
	return actor.Role() == Barber
}
