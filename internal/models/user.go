package models

import (
	"time"

	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */

// User represents a registered account
type User struct {
	gorm.Model
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Username string `gorm:"not null" json:"username"`
	Password string `json:"-"` // bcrypt hash, never serialized
	IsAdmin  bool   `gorm:"default:false" json:"is_admin"`
}

// PendingRegistration holds an account that has not confirmed its email yet.
// The row is replaced on re-register and deleted once the code is confirmed.
type PendingRegistration struct {
	gorm.Model
	Email          string     `gorm:"uniqueIndex;not null" json:"email"`
	Username       string     `gorm:"not null" json:"username"`
	HashedPassword string     `gorm:"not null" json:"-"`
	Code           string     `gorm:"type:varchar(6);not null" json:"-"`
	ExpiresAt      time.Time  `gorm:"not null" json:"expires_at"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
}

/** -------------------- DTOs -------------------- */

// Request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=1,max=100"`
	Password string `json:"password" binding:"required,min=6"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

type ResendCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// LoginRequest represents the request for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Username *string `json:"username,omitempty" binding:"omitempty,min=1,max=100"`
}

type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// Response
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenResponse represents the response for a successful login or verification
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

// PendingResponse acknowledges a registration awaiting email confirmation.
type PendingResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}
