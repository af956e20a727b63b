package user

import (
	"errors"
	"fmt"
	"time"
)

// User is a row of the credential store. PasswordHash never leaves the service layer.
type User struct {
	ID           int64     `json:"usuario_id" db:"id"`
	Name         string    `json:"nome" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"-" db:"created_at"`
	UpdatedAt    time.Time `json:"-" db:"updated_at"`
}

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")

	// ErrWrongCurrentPassword is returned by UpdateProfile; it matches ErrInvalidCredentials.
	ErrWrongCurrentPassword = fmt.Errorf("%w: current password does not match", ErrInvalidCredentials)
)

// ValidationError describes malformed or incomplete input. It matches ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type UpdateProfileInput struct {
	UserID          int64
	Name            string
	Email           string
	CurrentPassword string
	NewPassword     string
}

// WantsPasswordChange reports whether either password field was supplied.
func (in UpdateProfileInput) WantsPasswordChange() bool {
	return in.CurrentPassword != "" || in.NewPassword != ""
}

type LoginResult struct {
	Token string
	User  User
}
