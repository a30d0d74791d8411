package models

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered customer or administrator
type User struct {
	ID        string    `bson:"_id" json:"id"`
	Email     string    `bson:"email" json:"email"`
	Password  string    `bson:"password,omitempty" json:"-"`
	FirstName string    `bson:"first_name,omitempty" json:"firstName,omitempty"`
	LastName  string    `bson:"last_name,omitempty" json:"lastName,omitempty"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Role      string    `bson:"role" json:"role"` // "user" or "admin"
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// IsAdmin reports whether the user may manage the catalog
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Initials returns up to two uppercase letters for the avatar badge, taken
// from the first and last name, or from the email when both are empty.
func (u *User) Initials() string {
	var b strings.Builder
	for _, part := range []string{u.FirstName, u.LastName} {
		if r, _ := utf8.DecodeRuneInString(strings.TrimSpace(part)); r != utf8.RuneError {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	if b.Len() == 0 {
		if r, _ := utf8.DecodeRuneInString(u.Email); r != utf8.RuneError {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
