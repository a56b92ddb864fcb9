package services

import (
	"context"

	"classroom-service/internal/repositories/postgres"
	"classroom-service/internal/websocket"
)

// SubscriptionService answers the hub's authorization questions from
// the database. Failures deny rather than error; the hub treats a
// denial as silence.
type SubscriptionService struct {
	courses     *postgres.CourseRepository
	assignments *postgres.AssignmentRepository
}

var _ websocket.Authorizer = (*SubscriptionService)(nil)

func NewSubscriptionService(courses *postgres.CourseRepository, assignments *postgres.AssignmentRepository) *SubscriptionService {
	return &SubscriptionService{
		courses:     courses,
		assignments: assignments,
	}
}

func (s *SubscriptionService) AssignmentCourse(_ context.Context, assignmentID uint) (uint, bool) {
	assignment, err := s.assignments.GetByID(assignmentID)
	if err != nil {
		return 0, false
	}
	return assignment.CourseID, true
}

func (s *SubscriptionService) IsCourseMember(_ context.Context, courseID, userID uint) bool {
	course, err := s.courses.GetByID(courseID)
	if err != nil {
		return false
	}
	if course.CreatorID == userID {
		return true
	}
	member, err := s.courses.IsMember(courseID, userID)
	if err != nil {
		return false
	}
	return member
}
