package services

import (
	"errors"
	"fmt"

	"classroom-service/internal/models"
	"classroom-service/internal/repositories/postgres"
)

var ErrCannotDeleteSelf = errors.New("admins cannot delete their own account")

// AdminService covers the platform administration surface. Handlers gate
// every call behind the admin flag.
type AdminService struct {
	users       *postgres.UserRepository
	courses     *postgres.CourseRepository
	assignments *postgres.AssignmentRepository
}

func NewAdminService(users *postgres.UserRepository, courses *postgres.CourseRepository, assignments *postgres.AssignmentRepository) *AdminService {
	return &AdminService{
		users:       users,
		courses:     courses,
		assignments: assignments,
	}
}

func (s *AdminService) ListUsers() ([]models.UserResponse, error) {
	users, err := s.users.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]models.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, models.NewUserResponse(&users[i]))
	}
	return responses, nil
}

func (s *AdminService) DeleteUser(adminID, userID uint) error {
	if adminID == userID {
		return ErrCannotDeleteSelf
	}
	if _, err := s.users.GetByID(userID); err != nil {
		return ErrUserNotFound
	}
	if err := s.users.Delete(userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (s *AdminService) SetAdmin(userID uint, isAdmin bool) (*models.UserResponse, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	user.IsAdmin = isAdmin
	if err := s.users.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	resp := models.NewUserResponse(user)
	return &resp, nil
}

// ListCourses returns every course on the platform, not just the
// admin's own.
func (s *AdminService) ListCourses(adminID uint) ([]models.CourseResponse, error) {
	courses, err := s.courses.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	responses := make([]models.CourseResponse, 0, len(courses))
	for i := range courses {
		count, err := s.courses.CountMembers(courses[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count members: %w", err)
		}
		responses = append(responses, models.NewCourseResponse(&courses[i], adminID, count))
	}
	return responses, nil
}

func (s *AdminService) DeleteCourse(courseID uint) error {
	if _, err := s.courses.GetByID(courseID); err != nil {
		return ErrCourseNotFound
	}
	if err := s.courses.Delete(courseID); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return nil
}

func (s *AdminService) ListCourseMembers(courseID uint) ([]models.CourseMemberResponse, error) {
	if _, err := s.courses.GetByID(courseID); err != nil {
		return nil, ErrCourseNotFound
	}

	members, err := s.courses.ListMembers(courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	responses := make([]models.CourseMemberResponse, 0, len(members))
	for _, m := range members {
		user, err := s.users.GetByID(m.UserID)
		if err != nil {
			continue
		}
		responses = append(responses, models.CourseMemberResponse{
			ID:       m.ID,
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
			JoinedAt: m.CreatedAt,
		})
	}
	return responses, nil
}

func (s *AdminService) ListCourseAssignments(courseID uint) ([]models.AssignmentResponse, error) {
	if _, err := s.courses.GetByID(courseID); err != nil {
		return nil, ErrCourseNotFound
	}

	assignments, err := s.assignments.ListByCourse(courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	responses := make([]models.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		files, err := s.assignments.ListFiles(assignments[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}
		responses = append(responses, models.NewAssignmentResponse(&assignments[i], files))
	}
	return responses, nil
}
