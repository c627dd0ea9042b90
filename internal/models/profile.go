// Package models provides the data structures exchanged with the hosted backend
// and the dashboard: user profiles, auth sessions and monitor configuration rows.
package models

import (
	"strings"
	"time"

	"github.com/skout-hq/skout/internal/constants"
)

// Profile is a row of the users table. It is created on sign-up, read on login
// and changed by profile updates. This code never deletes it.
type Profile struct {
	// ID equals the hosted auth user id
	ID string `json:"id" db:"id"`

	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Email     string `json:"email" db:"email"`

	// Timestamps are filled in by the database
	CreatedAt *time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// NewProfile builds the row inserted right after a successful sign-up.
func NewProfile(id, email, firstName, lastName string) *Profile {
	return &Profile{
		ID:        id,
		Email:     strings.TrimSpace(email),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
	}
}

// TableName returns the database table name for the Profile model.
func (p *Profile) TableName() string {
	return constants.TableUsers
}

// FullName joins first and last name for greetings.
func (p *Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// ProfileUpdate is a partial profile update. Only non-nil fields are written.
type ProfileUpdate struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=100"`
}

// Fields returns the column/value pairs to write.
func (u *ProfileUpdate) Fields() map[string]interface{} {
	fields := make(map[string]interface{}, 2)
	if u.FirstName != nil {
		fields[constants.ColumnFirstName] = strings.TrimSpace(*u.FirstName)
	}
	if u.LastName != nil {
		fields[constants.ColumnLastName] = strings.TrimSpace(*u.LastName)
	}
	return fields
}

// IsEmpty reports whether the update would change nothing.
func (u *ProfileUpdate) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil
}
