package model

// Owned is anything that belongs to exactly one user account.
// Ownership checks only ever go through this interface.
type Owned interface {
	OwnerUsername() string
}

// Username is a bare username taken from a request path. It owns itself,
// so account-level routes can be checked before the account is loaded.
type Username string

// OwnerUsername implements Owned
func (u Username) OwnerUsername() string {
	return string(u)
}

var (
	_ Owned = (*User)(nil)
	_ Owned = (*Feedback)(nil)
	_ Owned = Username("")
)
