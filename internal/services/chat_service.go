package services

import (
	"errors"
	"fmt"

	"classroom-service/internal/models"
	"classroom-service/internal/repositories/postgres"

	"gorm.io/gorm"
)

var (
	ErrMessageNotFound  = errors.New("message not found")
	ErrNotMessageAuthor = errors.New("only the author or course creator can delete a message")
)

const (
	chatDefaultLimit   = 10
	chatMaxLimit       = 50
	deletedMessageText = "[Deleted]"
)

type ChatService struct {
	messages    *postgres.MessageRepository
	assignments *AssignmentService
	courses     *CourseService
	users       *postgres.UserRepository
}

func NewChatService(messages *postgres.MessageRepository, assignments *AssignmentService, courses *CourseService, users *postgres.UserRepository) *ChatService {
	return &ChatService{
		messages:    messages,
		assignments: assignments,
		courses:     courses,
		users:       users,
	}
}

// Create posts a message into the assignment's thread. Any course
// member can post, including on archived courses.
func (s *ChatService) Create(assignmentID, userID uint, req *models.MessageCreateRequest) (*models.MessageResponse, error) {
	if _, _, err := s.assignments.getForMember(assignmentID, userID); err != nil {
		return nil, err
	}

	message := models.ChatMessage{
		AssignmentID: assignmentID,
		UserID:       userID,
		Message:      req.Message,
	}
	if err := s.messages.Create(&message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return s.respond(&message), nil
}

// List pages through the thread, newest first. The limit is clamped to
// 1..50 and falls back to 10 when unset.
func (s *ChatService) List(assignmentID, userID uint, offset, limit int) ([]models.MessageResponse, error) {
	if _, _, err := s.assignments.getForMember(assignmentID, userID); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = chatDefaultLimit
	}
	if limit > chatMaxLimit {
		limit = chatMaxLimit
	}

	messages, err := s.messages.ListByAssignment(assignmentID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	responses := make([]models.MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, *s.respond(&messages[i]))
	}
	return responses, nil
}

// Delete soft-deletes a message. The row survives with its text
// replaced so thread history keeps its shape.
func (s *ChatService) Delete(messageID, userID uint) (*models.MessageResponse, error) {
	message, err := s.messages.GetByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to load message: %w", err)
	}
	if message.IsDeleted {
		return nil, ErrMessageNotFound
	}

	assignment, err := s.assignments.get(message.AssignmentID)
	if err != nil {
		return nil, err
	}
	course, err := s.courses.get(assignment.CourseID)
	if err != nil {
		return nil, err
	}
	if message.UserID != userID && course.CreatorID != userID {
		return nil, ErrNotMessageAuthor
	}

	message.IsDeleted = true
	message.Message = deletedMessageText
	if err := s.messages.Update(message); err != nil {
		return nil, fmt.Errorf("failed to delete message: %w", err)
	}

	return s.respond(message), nil
}

func (s *ChatService) respond(m *models.ChatMessage) *models.MessageResponse {
	username := ""
	if user, err := s.users.GetByID(m.UserID); err == nil {
		username = user.Username
	}
	resp := models.NewMessageResponse(m, username)
	return &resp
}
