package postgres

import (
	"classroom-service/internal/models"

	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db}
}

func (r *MessageRepository) Create(message *models.ChatMessage) error {
	return r.db.Create(message).Error
}

func (r *MessageRepository) GetByID(messageID uint) (*models.ChatMessage, error) {
	var m models.ChatMessage
	err := r.db.First(&m, messageID).Error
	return &m, err
}

// ListByAssignment pages through the live thread, newest first.
func (r *MessageRepository) ListByAssignment(assignmentID uint, offset, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.Where("assignment_id = ? AND is_deleted = false", assignmentID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) Update(message *models.ChatMessage) error {
	return r.db.Save(message).Error
}
