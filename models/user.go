// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User model
type User struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Username  string             `json:"username" bson:"username"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"`
	Role      string             `json:"role" bson:"role"` // "admin" or "user"
	Phone     string             `json:"phone,omitempty" bson:"phone,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserView is the public shape of a user returned by the API.
type UserView struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
	Role     string             `json:"role"`
	Phone    string             `json:"phone,omitempty"`
}

// View strips credentials from a user document.
func (u *User) View() UserView {
	return UserView{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		Phone:    u.Phone,
	}
}

// UserWithRentals is the admin listing shape: a user plus how many rental
// requests they own.
type UserWithRentals struct {
	UserView
	RentalCount int64 `json:"rentalCount"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
	Phone    string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe,omitempty"`
}

type RememberLoginRequest struct {
	Token string `json:"token" validate:"required"`
}

type LogoutRequest struct {
	RememberMeToken string `json:"rememberMeToken,omitempty"`
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Response is the uniform API envelope.
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}
