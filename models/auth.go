package models

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// User is the profile kept in the session next to the token.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanManageAttendance reports whether the user may view team attendance and
// register faces for other employees.
func (u User) CanManageAttendance() bool {
	return u.Role == RoleAdmin || u.Role == RoleManager
}

func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("user email is missing")
	}
	return nil
}

// Claims mirrors the payload the backend signs into access tokens.
type Claims struct {
	UserID int    `json:"id"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return NewValidationError("email", "Email and password are required")
	}
	return nil
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Token       string `json:"token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// SessionToken returns whichever token field the backend filled.
func (r *LoginResponse) SessionToken() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

func (r *LoginResponse) Validate() error {
	if r.SessionToken() == "" {
		return errors.New("login response has no token")
	}
	return nil
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return NewValidationError("name", "Name is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		return NewValidationError("email", "Email is required")
	}
	if r.Password == "" {
		return NewValidationError("password", "Password is required")
	}
	return nil
}

type AddEmployeeRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role,omitempty"`
}

func (r AddEmployeeRequest) Validate() error {
	return RegisterRequest{Name: r.Name, Email: r.Email, Password: r.Password}.Validate()
}

type AddEmployeeResponse struct {
	Message string   `json:"message"`
	User    Employee `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// MinPasswordLength is enforced locally before a reset is submitted.
const MinPasswordLength = 6

// ValidatePasswordReset checks the reset form: token present, long enough,
// and confirmed.
func ValidatePasswordReset(token, password, confirm string) error {
	if token == "" {
		return NewValidationError("token", "Invalid or missing reset token. Please request a new password reset.")
	}
	if len(password) < MinPasswordLength {
		return NewValidationError("password", "Password must be at least 6 characters")
	}
	if password != confirm {
		return NewValidationError("confirm_password", "Passwords do not match")
	}
	return nil
}
