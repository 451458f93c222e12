// ABOUTME: User identity record and registration/profile payloads
// ABOUTME: Includes client-side validation mirroring the server's binding rules

package model

import (
	"net/mail"
	"strings"
	"time"
)

// UserType is the role a user registered with.
type UserType string

const (
	UserTypeWorker   UserType = "worker"
	UserTypeEmployer UserType = "employer"
)

// Valid reports whether t is a known role.
func (t UserType) Valid() bool {
	return t == UserTypeWorker || t == UserTypeEmployer
}

// MinPasswordLength matches the server's registration rule.
const MinPasswordLength = 6

// User is the identity record owned by the server. The client keeps a
// read-mostly copy for the lifetime of a session.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	UserType  UserType  `json:"user_type"`
	Phone     string    `json:"phone,omitempty"`
	Location  string    `json:"location,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUser is the body of POST /register.
type NewUser struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	FullName string   `json:"full_name"`
	UserType UserType `json:"user_type"`
	Phone    string   `json:"phone,omitempty"`
	Location string   `json:"location,omitempty"`
}

// Validate checks the registration form before it is sent.
func (u NewUser) Validate() error {
	if strings.TrimSpace(u.FullName) == "" {
		return &FieldError{Field: "full_name", Message: "Full name is required"}
	}
	if err := validateEmail("email", u.Email, true); err != nil {
		return err
	}
	if len(u.Password) < MinPasswordLength {
		return &FieldError{Field: "password", Message: "Password must be at least 6 characters"}
	}
	if !u.UserType.Valid() {
		return &FieldError{Field: "user_type", Message: "User type must be worker or employer"}
	}
	return nil
}

// ProfileUpdate is the body of PUT /profile/{id}.
type ProfileUpdate struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Bio      string `json:"bio"`
}

// Validate checks the profile edit form.
func (p ProfileUpdate) Validate() error {
	if strings.TrimSpace(p.FullName) == "" {
		return &FieldError{Field: "full_name", Message: "Full name is required"}
	}
	return nil
}

// ProfileUpdateFrom seeds an edit form from the current profile.
func ProfileUpdateFrom(u User) ProfileUpdate {
	return ProfileUpdate{
		FullName: u.FullName,
		Phone:    u.Phone,
		Location: u.Location,
		Bio:      u.Bio,
	}
}

// FieldError reports a form field that failed client-side validation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

func validateEmail(field, value string, required bool) error {
	value = strings.TrimSpace(value)
	if value == "" {
		if required {
			return &FieldError{Field: field, Message: "Email is required"}
		}
		return nil
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return &FieldError{Field: field, Message: "Email address is not valid"}
	}
	return nil
}
