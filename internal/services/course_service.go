package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"classroom-service/internal/models"
	"classroom-service/internal/repositories/postgres"

	"gorm.io/gorm"
)

var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrNotCourseMember    = errors.New("not a member of this course")
	ErrNotCourseCreator   = errors.New("only the course creator can do this")
	ErrAlreadyMember      = errors.New("already a member of this course")
	ErrCourseArchived     = errors.New("course is archived")
	ErrCreatorCannotLeave = errors.New("the creator cannot leave their own course")
	ErrInvalidJoinCode    = errors.New("invalid join code")
)

const joinCodeLength = 9

const joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

type CourseService struct {
	courses     *postgres.CourseRepository
	users       *postgres.UserRepository
	assignments *postgres.AssignmentRepository
	submissions *postgres.SubmissionRepository
}

func NewCourseService(courses *postgres.CourseRepository, users *postgres.UserRepository, assignments *postgres.AssignmentRepository, submissions *postgres.SubmissionRepository) *CourseService {
	return &CourseService{
		courses:     courses,
		users:       users,
		assignments: assignments,
		submissions: submissions,
	}
}

// generateJoinCode returns 9 random uppercase letters.
func generateJoinCode() (string, error) {
	code := make([]byte, joinCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(joinCodeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("failed to generate join code: %w", err)
		}
		code[i] = joinCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// Create makes a new course with a unique join code and enrolls the
// creator as its first member.
func (s *CourseService) Create(creatorID uint, req *models.CourseCreateRequest) (*models.CourseResponse, error) {
	var code string
	for {
		c, err := generateJoinCode()
		if err != nil {
			return nil, err
		}
		exists, err := s.courses.CodeExists(c)
		if err != nil {
			return nil, fmt.Errorf("failed to check join code: %w", err)
		}
		if !exists {
			code = c
			break
		}
	}

	course := models.Course{
		Title:       req.Title,
		Description: req.Description,
		Code:        code,
		CreatorID:   creatorID,
	}
	if err := s.courses.Create(&course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	if err := s.courses.AddMember(course.ID, creatorID); err != nil {
		return nil, fmt.Errorf("failed to enroll creator: %w", err)
	}

	resp := models.NewCourseResponse(&course, creatorID, 1)
	return &resp, nil
}

func (s *CourseService) Update(courseID, userID uint, req *models.CourseUpdateRequest) (*models.CourseResponse, error) {
	course, err := s.getOwned(courseID, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if err := s.courses.Update(course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	return s.respond(course, userID)
}

func (s *CourseService) SetArchived(courseID, userID uint, archived bool) (*models.CourseResponse, error) {
	course, err := s.getOwned(courseID, userID)
	if err != nil {
		return nil, err
	}

	course.IsArchived = archived
	if err := s.courses.Update(course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	return s.respond(course, userID)
}

func (s *CourseService) Delete(courseID, userID uint) error {
	if _, err := s.getOwned(courseID, userID); err != nil {
		return err
	}
	if err := s.courses.Delete(courseID); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return nil
}

// Join enrolls the caller into the course matching the code. Archived
// courses do not accept new members.
func (s *CourseService) Join(userID uint, req *models.CourseJoinRequest) (*models.CourseResponse, error) {
	course, err := s.courses.GetByCode(req.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidJoinCode
		}
		return nil, fmt.Errorf("failed to look up join code: %w", err)
	}
	if course.IsArchived {
		return nil, ErrCourseArchived
	}

	member, err := s.courses.IsMember(course.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if member {
		return nil, ErrAlreadyMember
	}

	if err := s.courses.AddMember(course.ID, userID); err != nil {
		return nil, fmt.Errorf("failed to join course: %w", err)
	}

	return s.respond(course, userID)
}

func (s *CourseService) Leave(courseID, userID uint) error {
	course, err := s.get(courseID)
	if err != nil {
		return err
	}
	if course.CreatorID == userID {
		return ErrCreatorCannotLeave
	}

	member, err := s.courses.IsMember(courseID, userID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return ErrNotCourseMember
	}

	if err := s.courses.RemoveMember(courseID, userID); err != nil {
		return fmt.Errorf("failed to leave course: %w", err)
	}
	return nil
}

// RemoveMember lets the creator kick a student out.
func (s *CourseService) RemoveMember(courseID, userID, memberID uint) error {
	course, err := s.getOwned(courseID, userID)
	if err != nil {
		return err
	}
	if memberID == course.CreatorID {
		return ErrCreatorCannotLeave
	}

	member, err := s.courses.IsMember(courseID, memberID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return ErrNotCourseMember
	}

	if err := s.courses.RemoveMember(courseID, memberID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

func (s *CourseService) Get(courseID, userID uint) (*models.CourseResponse, error) {
	course, err := s.get(courseID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(courseID, userID); err != nil {
		return nil, err
	}
	return s.respond(course, userID)
}

// ListMine returns every course the user belongs to. A non-nil archived
// flag keeps only courses whose archive state matches it.
func (s *CourseService) ListMine(userID uint, archived *bool) ([]models.CourseResponse, error) {
	memberships, err := s.courses.ListMembershipsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	responses := make([]models.CourseResponse, 0, len(memberships))
	for _, m := range memberships {
		course, err := s.courses.GetByID(m.CourseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load course: %w", err)
		}
		if archived != nil && course.IsArchived != *archived {
			continue
		}
		count, err := s.courses.CountMembers(course.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count members: %w", err)
		}
		responses = append(responses, models.NewCourseResponse(course, userID, count))
	}
	return responses, nil
}

// ListMembers returns the roster. Creator only.
func (s *CourseService) ListMembers(courseID, userID uint) ([]models.CourseMemberResponse, error) {
	if _, err := s.getOwned(courseID, userID); err != nil {
		return nil, err
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

// IsCourseMemberOrCreator reports membership, counting the creator even
// if their membership row was lost.
func (s *CourseService) IsCourseMemberOrCreator(courseID, userID uint) bool {
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

/** ---------------- gradebook ---------------- */

// Gradebook builds the creator's score matrix: one row per student, one
// column per assignment. For numeric assignments the cell shows the best
// score across attempts, for text grading the most recently graded one.
// A student with attempts but no grade yet shows the latest attempt.
func (s *CourseService) Gradebook(courseID, userID uint) (*models.GradebookResponse, error) {
	course, err := s.getOwned(courseID, userID)
	if err != nil {
		return nil, err
	}

	members, err := s.courses.ListMembers(courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	assignments, err := s.assignments.ListByCourse(courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	resp := models.GradebookResponse{
		Students:    make([]models.GradebookStudent, 0, len(members)),
		Assignments: make([]models.GradebookAssignment, 0, len(assignments)),
		Gradebook:   make(map[uint]map[uint]models.GradebookCell),
	}

	for _, a := range assignments {
		resp.Assignments = append(resp.Assignments, models.GradebookAssignment{
			ID:           a.ID,
			Title:        a.Title,
			DueDate:      a.DueDate,
			GradingType:  a.GradingType,
			GradeMin:     a.GradeMin,
			GradeMax:     a.GradeMax,
			GradeOptions: a.GradeOptions,
		})
	}

	for _, m := range members {
		if m.UserID == course.CreatorID {
			continue
		}
		user, err := s.users.GetByID(m.UserID)
		if err != nil {
			continue
		}
		resp.Students = append(resp.Students, models.GradebookStudent{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		})

		row := make(map[uint]models.GradebookCell, len(assignments))
		for _, a := range assignments {
			attempts, err := s.submissions.ListByAssignmentAndStudent(a.ID, user.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to load submissions: %w", err)
			}
			row[a.ID] = gradebookCell(&a, attempts)
		}
		resp.Gradebook[user.ID] = row
	}

	return &resp, nil
}

// gradebookCell picks the submission a gradebook cell displays out of a
// student's attempts, newest first.
func gradebookCell(a *models.Assignment, attempts []models.Submission) models.GradebookCell {
	if len(attempts) == 0 {
		return models.GradebookCell{}
	}

	var display *models.Submission
	if a.GradingType == models.GradingTypeNumeric {
		// Best numeric score wins.
		var best float64
		for i := range attempts {
			sub := &attempts[i]
			if sub.Score == nil {
				continue
			}
			v, err := strconv.ParseFloat(*sub.Score, 64)
			if err != nil {
				continue
			}
			if display == nil || v > best {
				display = sub
				best = v
			}
		}
	} else {
		// Latest graded attempt wins.
		for i := range attempts {
			if attempts[i].Score != nil {
				display = &attempts[i]
				break
			}
		}
	}
	if display == nil {
		display = &attempts[0]
	}

	submittedAt := display.CreatedAt
	return models.GradebookCell{
		SubmissionID:        display.ID,
		Submitted:           true,
		Graded:              display.Score != nil,
		Score:               display.Score,
		SubmittedAt:         &submittedAt,
		Attempts:            len(attempts),
		HasMultipleAttempts: len(attempts) > 1,
	}
}

/** ---------------- helpers ---------------- */

func (s *CourseService) get(courseID uint) (*models.Course, error) {
	course, err := s.courses.GetByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	return course, nil
}

func (s *CourseService) getOwned(courseID, userID uint) (*models.Course, error) {
	course, err := s.get(courseID)
	if err != nil {
		return nil, err
	}
	if course.CreatorID != userID {
		return nil, ErrNotCourseCreator
	}
	return course, nil
}

func (s *CourseService) requireMember(courseID, userID uint) error {
	if !s.IsCourseMemberOrCreator(courseID, userID) {
		return ErrNotCourseMember
	}
	return nil
}

func (s *CourseService) respond(course *models.Course, userID uint) (*models.CourseResponse, error) {
	count, err := s.courses.CountMembers(course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}
	resp := models.NewCourseResponse(course, userID, count)
	return &resp, nil
}
