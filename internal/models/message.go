package models

import (
	"time"

	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */

// ChatMessage belongs to an assignment's discussion thread
type ChatMessage struct {
	gorm.Model
	AssignmentID uint   `gorm:"not null;index" json:"assignment_id"`
	UserID       uint   `gorm:"not null" json:"user_id"`
	Message      string `gorm:"type:text;not null" json:"message"`
	IsDeleted    bool   `gorm:"default:false" json:"is_deleted"`
}

/** -------------------- DTOs -------------------- */

type MessageCreateRequest struct {
	Message string `json:"message" binding:"required,max=5000"`
}

type MessageResponse struct {
	ID           uint      `json:"id"`
	AssignmentID uint      `json:"assignment_id"`
	UserID       uint      `json:"user_id"`
	Username     string    `json:"username"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
	IsDeleted    bool      `json:"is_deleted"`
}

func NewMessageResponse(m *ChatMessage, username string) MessageResponse {
	return MessageResponse{
		ID:           m.ID,
		AssignmentID: m.AssignmentID,
		UserID:       m.UserID,
		Username:     username,
		Message:      m.Message,
		CreatedAt:    m.CreatedAt,
		IsDeleted:    m.IsDeleted,
	}
}
