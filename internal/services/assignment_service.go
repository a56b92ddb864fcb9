package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"

	"classroom-service/internal/models"
	"classroom-service/internal/repositories/postgres"
	"classroom-service/internal/storage"
	"log/slog"

	"gorm.io/gorm"
)

var (
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrFileNotFound         = errors.New("file not found")
	ErrInvalidGradingConfig = errors.New("invalid grading configuration")
)

type AssignmentService struct {
	assignments *postgres.AssignmentRepository
	submissions *postgres.SubmissionRepository
	courses     *CourseService
	storage     *storage.MinioStorage
}

func NewAssignmentService(assignments *postgres.AssignmentRepository, submissions *postgres.SubmissionRepository, courses *CourseService, store *storage.MinioStorage) *AssignmentService {
	return &AssignmentService{
		assignments: assignments,
		submissions: submissions,
		courses:     courses,
		storage:     store,
	}
}

// validateGradingConfig normalizes the grading fields. Numeric grading
// gets a 0..100 range unless bounds are given; text grading requires a
// non-empty option list.
func validateGradingConfig(gradingType string, gradeMin, gradeMax *int, gradeOptions []string, maxAttempts *int) (*int, *int, *string, error) {
	if maxAttempts != nil && *maxAttempts < 1 {
		return nil, nil, nil, ErrInvalidGradingConfig
	}

	switch gradingType {
	case models.GradingTypeNumeric:
		if gradeMin == nil {
			v := 0
			gradeMin = &v
		}
		if gradeMax == nil {
			v := 100
			gradeMax = &v
		}
		if *gradeMin >= *gradeMax {
			return nil, nil, nil, ErrInvalidGradingConfig
		}
		return gradeMin, gradeMax, nil, nil

	case models.GradingTypeText:
		if len(gradeOptions) == 0 {
			return nil, nil, nil, ErrInvalidGradingConfig
		}
		raw, err := json.Marshal(gradeOptions)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to encode grade options: %w", err)
		}
		encoded := string(raw)
		return nil, nil, &encoded, nil

	default:
		return nil, nil, nil, ErrInvalidGradingConfig
	}
}

func (s *AssignmentService) Create(courseID, userID uint, req *models.AssignmentCreateRequest) (*models.AssignmentResponse, error) {
	course, err := s.courses.getOwned(courseID, userID)
	if err != nil {
		return nil, err
	}
	if course.IsArchived {
		return nil, ErrCourseArchived
	}

	gradingType := req.GradingType
	if gradingType == "" {
		gradingType = models.GradingTypeNumeric
	}
	gradeMin, gradeMax, gradeOptions, err := validateGradingConfig(gradingType, req.GradeMin, req.GradeMax, req.GradeOptions, req.MaxAttempts)
	if err != nil {
		return nil, err
	}

	assignment := models.Assignment{
		CourseID:     courseID,
		Title:        req.Title,
		Description:  req.Description,
		CreatedBy:    userID,
		DueDate:      req.DueDate,
		GradingType:  gradingType,
		GradeMin:     gradeMin,
		GradeMax:     gradeMax,
		GradeOptions: gradeOptions,
		MaxAttempts:  req.MaxAttempts,
	}
	if err := s.assignments.Create(&assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	resp := models.NewAssignmentResponse(&assignment, nil)
	return &resp, nil
}

func (s *AssignmentService) Update(assignmentID, userID uint, req *models.AssignmentUpdateRequest) (*models.AssignmentResponse, error) {
	assignment, err := s.getOwned(assignmentID, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		assignment.Title = *req.Title
	}
	if req.Description != nil {
		assignment.Description = *req.Description
	}
	if req.DueDate != nil {
		assignment.DueDate = req.DueDate
	}

	// Regrading configuration is revalidated as a whole, mixing the
	// stored values with the ones the request changes.
	gradingType := assignment.GradingType
	if req.GradingType != nil {
		gradingType = *req.GradingType
	}
	gradeMin, gradeMax := assignment.GradeMin, assignment.GradeMax
	if req.GradeMin != nil {
		gradeMin = req.GradeMin
	}
	if req.GradeMax != nil {
		gradeMax = req.GradeMax
	}
	gradeOptions := req.GradeOptions
	if gradeOptions == nil && assignment.GradeOptions != nil && gradingType == models.GradingTypeText {
		if err := json.Unmarshal([]byte(*assignment.GradeOptions), &gradeOptions); err != nil {
			return nil, fmt.Errorf("failed to decode grade options: %w", err)
		}
	}
	maxAttempts := assignment.MaxAttempts
	if req.MaxAttempts != nil {
		maxAttempts = req.MaxAttempts
	}

	vMin, vMax, vOptions, err := validateGradingConfig(gradingType, gradeMin, gradeMax, gradeOptions, maxAttempts)
	if err != nil {
		return nil, err
	}
	assignment.GradingType = gradingType
	assignment.GradeMin = vMin
	assignment.GradeMax = vMax
	assignment.GradeOptions = vOptions
	assignment.MaxAttempts = maxAttempts

	if err := s.assignments.Update(assignment); err != nil {
		return nil, fmt.Errorf("failed to update assignment: %w", err)
	}

	return s.respond(assignment, nil)
}

func (s *AssignmentService) Delete(ctx context.Context, assignmentID, userID uint) error {
	assignment, err := s.getOwned(assignmentID, userID)
	if err != nil {
		return err
	}

	files, err := s.assignments.ListFiles(assignmentID)
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}
	for _, f := range files {
		if err := s.storage.Remove(ctx, f.ObjectName); err != nil {
			slog.Error("failed to remove object", "object", f.ObjectName, "error", err)
		}
	}

	if err := s.assignments.Delete(assignment.ID); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	return nil
}

// Get returns the assignment for any course member. For students the
// response carries the read marker.
func (s *AssignmentService) Get(assignmentID, userID uint) (*models.AssignmentResponse, error) {
	assignment, course, err := s.getForMember(assignmentID, userID)
	if err != nil {
		return nil, err
	}

	resp, err := s.respond(assignment, nil)
	if err != nil {
		return nil, err
	}
	if course.CreatorID != userID {
		viewed, err := s.assignments.IsViewed(assignmentID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to check view marker: %w", err)
		}
		resp.IsRead = &viewed
	}
	return resp, nil
}

func (s *AssignmentService) ListByCourse(courseID, userID uint) ([]models.AssignmentResponse, error) {
	course, err := s.courses.get(courseID)
	if err != nil {
		return nil, err
	}
	if err := s.courses.requireMember(courseID, userID); err != nil {
		return nil, err
	}

	assignments, err := s.assignments.ListByCourse(courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	responses := make([]models.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		resp, err := s.respond(&assignments[i], nil)
		if err != nil {
			return nil, err
		}
		if course.CreatorID != userID {
			viewed, err := s.assignments.IsViewed(assignments[i].ID, userID)
			if err != nil {
				return nil, fmt.Errorf("failed to check view marker: %w", err)
			}
			resp.IsRead = &viewed
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

// ListMine aggregates assignments across every course the user studies
// in, skipping courses they created.
func (s *AssignmentService) ListMine(userID uint) ([]models.MyAssignmentResponse, error) {
	memberships, err := s.courses.courses.ListMembershipsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	if len(memberships) == 0 {
		return []models.MyAssignmentResponse{}, nil
	}

	courseIDs := make([]uint, 0, len(memberships))
	coursesByID := make(map[uint]*models.Course, len(memberships))
	for _, m := range memberships {
		course, err := s.courses.courses.GetByID(m.CourseID)
		if err != nil {
			continue
		}
		courseIDs = append(courseIDs, course.ID)
		coursesByID[course.ID] = course
	}

	assignments, err := s.assignments.ListByCoursesExcludingCreator(courseIDs, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	responses := make([]models.MyAssignmentResponse, 0, len(assignments))
	for i := range assignments {
		a := &assignments[i]
		course := coursesByID[a.CourseID]
		if course == nil {
			continue
		}

		attempts, err := s.submissions.ListByAssignmentAndStudent(a.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load submissions: %w", err)
		}
		cell := gradebookCell(a, attempts)

		resp, err := s.respond(a, nil)
		if err != nil {
			return nil, err
		}
		viewed, err := s.assignments.IsViewed(a.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to check view marker: %w", err)
		}
		resp.IsRead = &viewed

		responses = append(responses, models.MyAssignmentResponse{
			AssignmentResponse: *resp,
			CourseTitle:        course.Title,
			CourseIsArchived:   course.IsArchived,
			IsSubmitted:        cell.Submitted,
			IsGraded:           cell.Graded,
			Score:              cell.Score,
		})
	}
	return responses, nil
}

// MarkViewed records that the student opened the assignment. Idempotent.
func (s *AssignmentService) MarkViewed(assignmentID, userID uint) error {
	if _, _, err := s.getForMember(assignmentID, userID); err != nil {
		return err
	}
	if err := s.assignments.MarkViewed(assignmentID, userID); err != nil {
		return fmt.Errorf("failed to mark assignment viewed: %w", err)
	}
	return nil
}

/** ---------------- files ---------------- */

func (s *AssignmentService) UploadFile(ctx context.Context, assignmentID, userID uint, file *multipart.FileHeader) (*models.AssignmentFileResponse, error) {
	if _, err := s.getOwned(assignmentID, userID); err != nil {
		return nil, err
	}

	objectName, err := s.storage.Upload(ctx, fmt.Sprintf("assignments/%d", assignmentID), file)
	if err != nil {
		return nil, err
	}

	record := models.AssignmentFile{
		AssignmentID: assignmentID,
		ObjectName:   objectName,
		FileName:     file.Filename,
	}
	if err := s.assignments.AddFile(&record); err != nil {
		if rmErr := s.storage.Remove(ctx, objectName); rmErr != nil {
			slog.Error("failed to remove orphaned object", "object", objectName, "error", rmErr)
		}
		return nil, fmt.Errorf("failed to record file: %w", err)
	}

	return &models.AssignmentFileResponse{
		ID:         record.ID,
		FileName:   record.FileName,
		UploadedAt: record.CreatedAt,
	}, nil
}

func (s *AssignmentService) DeleteFile(ctx context.Context, assignmentID, fileID, userID uint) error {
	if _, err := s.getOwned(assignmentID, userID); err != nil {
		return err
	}

	file, err := s.assignments.GetFile(assignmentID, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFileNotFound
		}
		return fmt.Errorf("failed to load file: %w", err)
	}

	if err := s.storage.Remove(ctx, file.ObjectName); err != nil {
		slog.Error("failed to remove object", "object", file.ObjectName, "error", err)
	}
	if err := s.assignments.DeleteFile(file.ID); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// FileDownloadURL hands any course member a short-lived link to an
// attached file.
func (s *AssignmentService) FileDownloadURL(ctx context.Context, assignmentID, fileID, userID uint) (string, error) {
	if _, _, err := s.getForMember(assignmentID, userID); err != nil {
		return "", err
	}

	file, err := s.assignments.GetFile(assignmentID, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrFileNotFound
		}
		return "", fmt.Errorf("failed to load file: %w", err)
	}

	return s.storage.PresignedURL(ctx, file.ObjectName, file.FileName)
}

/** ---------------- helpers ---------------- */

func (s *AssignmentService) get(assignmentID uint) (*models.Assignment, error) {
	assignment, err := s.assignments.GetByID(assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	return assignment, nil
}

func (s *AssignmentService) getOwned(assignmentID, userID uint) (*models.Assignment, error) {
	assignment, err := s.get(assignmentID)
	if err != nil {
		return nil, err
	}
	course, err := s.courses.get(assignment.CourseID)
	if err != nil {
		return nil, err
	}
	if course.CreatorID != userID {
		return nil, ErrNotCourseCreator
	}
	return assignment, nil
}

func (s *AssignmentService) getForMember(assignmentID, userID uint) (*models.Assignment, *models.Course, error) {
	assignment, err := s.get(assignmentID)
	if err != nil {
		return nil, nil, err
	}
	course, err := s.courses.get(assignment.CourseID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.courses.requireMember(course.ID, userID); err != nil {
		return nil, nil, err
	}
	return assignment, course, nil
}

func (s *AssignmentService) respond(a *models.Assignment, files []models.AssignmentFile) (*models.AssignmentResponse, error) {
	if files == nil {
		var err error
		files, err = s.assignments.ListFiles(a.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}
	}
	resp := models.NewAssignmentResponse(a, files)
	return &resp, nil
}
