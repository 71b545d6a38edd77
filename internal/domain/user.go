// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrUsernameAlreadyExists indicates that the user with the given username already exists.
	ErrUsernameAlreadyExists = errors.New("username already exists")
	// ErrUserNotFound indicates that the user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidRole indicates an unsupported user role.
	ErrInvalidRole = errors.New("invalid user role")
)

// Role determines which side of a payment a user can be on.
type Role string

const (
	// RoleSender can create payments.
	RoleSender Role = "sender"
	// RoleReceiver can accept and confirm payments.
	RoleReceiver Role = "receiver"
)

// ParseRole converts a raw string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSender:
		return RoleSender, nil
	case RoleReceiver:
		return RoleReceiver, nil
	}

	return "", ErrInvalidRole
}

// Audit holds record tracking fields shared by all entities.
type Audit struct {
	CreatedAt  time.Time `json:"created_at,omitempty"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
	IsDeleted  bool      `json:"-"`
}

// User holds user data including the current balance.
type User struct {
	Username       string `json:"username"`
	HashedPassword string `json:"hashed_password"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Role           Role   `json:"role"`
	Balance        string `json:"balance"` // decimal string, scale 4
	Audit
}

// CreateUserParams is the input data to create a user.
type CreateUserParams struct {
	Username       string `json:"username"`
	HashedPassword string `json:"hashed_password"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Role           Role   `json:"role"`
	Balance        string `json:"balance"`
}

// UserWithoutPassword is User data excluding password data.
type UserWithoutPassword struct {
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      Role      `json:"role"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity describes the authenticated caller of an operation.
type Identity struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
