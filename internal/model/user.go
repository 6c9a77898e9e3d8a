// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents an account in the users table.
//
// An account is created either by password registration or by the first
// login through an external identity provider. Which of the two an account
// has is carried by Credential rather than by nullable fields, so callers
// never have to guess what an empty password hash means.
type User struct {
	ID         string     `json:"id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Username   string     `json:"username"`
	Email      string     `json:"email"` // empty when the identity provider supplied none
	Credential Credential `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// PublicUser is the shape returned to clients. It never includes the hash.
type PublicUser struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	ExternalID string `json:"external_id,omitempty"`
}

// Public returns the client-facing view of u.
func (u *User) Public() PublicUser {
	externalID, _ := ExternalIDOf(u.Credential)
	return PublicUser{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Username:   u.Username,
		Email:      u.Email,
		ExternalID: externalID,
	}
}
