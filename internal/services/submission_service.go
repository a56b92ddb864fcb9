package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"time"

	"classroom-service/internal/models"
	"classroom-service/internal/repositories/postgres"
	"classroom-service/internal/storage"
	"log/slog"

	"gorm.io/gorm"
)

var (
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrNotSubmissionOwner  = errors.New("not your submission")
	ErrAttemptLimitReached = errors.New("attempt limit reached")
	ErrAlreadyGraded       = errors.New("submission is already graded")
	ErrSubmissionViewed    = errors.New("submission was already viewed by the teacher")
	ErrAttemptsExhausted   = errors.New("cannot delete the only remaining attempt")
	ErrInvalidScore        = errors.New("score does not fit the grading configuration")
	ErrCreatorCannotSubmit = errors.New("the course creator cannot submit")
)

type SubmissionService struct {
	submissions *postgres.SubmissionRepository
	assignments *AssignmentService
	courses     *CourseService
	users       *postgres.UserRepository
	storage     *storage.MinioStorage
}

func NewSubmissionService(submissions *postgres.SubmissionRepository, assignments *AssignmentService, courses *CourseService, users *postgres.UserRepository, store *storage.MinioStorage) *SubmissionService {
	return &SubmissionService{
		submissions: submissions,
		assignments: assignments,
		courses:     courses,
		users:       users,
		storage:     store,
	}
}

// ValidateScore checks a raw grade value against the assignment's
// grading configuration and returns its stored string form. Numeric
// grades must parse and fall inside the configured range; text grades
// must be one of the configured options.
func ValidateScore(a *models.Assignment, score any) (string, error) {
	switch a.GradingType {
	case models.GradingTypeNumeric:
		var value float64
		switch v := score.(type) {
		case float64:
			value = v
		case string:
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return "", ErrInvalidScore
			}
			value = parsed
		default:
			return "", ErrInvalidScore
		}
		if a.GradeMin != nil && value < float64(*a.GradeMin) {
			return "", ErrInvalidScore
		}
		if a.GradeMax != nil && value > float64(*a.GradeMax) {
			return "", ErrInvalidScore
		}
		return strconv.FormatFloat(value, 'f', -1, 64), nil

	case models.GradingTypeText:
		text, ok := score.(string)
		if !ok {
			return "", ErrInvalidScore
		}
		if a.GradeOptions == nil {
			return "", ErrInvalidScore
		}
		var options []string
		if err := json.Unmarshal([]byte(*a.GradeOptions), &options); err != nil {
			return "", fmt.Errorf("failed to decode grade options: %w", err)
		}
		for _, opt := range options {
			if opt == text {
				return text, nil
			}
		}
		return "", ErrInvalidScore

	default:
		return "", ErrInvalidScore
	}
}

// Create records a new attempt. Every submit is a fresh row; deleted
// attempts still count against the limit.
func (s *SubmissionService) Create(assignmentID, userID uint, req *models.SubmissionCreateRequest) (*models.SubmissionResponse, error) {
	assignment, course, err := s.assignments.getForMember(assignmentID, userID)
	if err != nil {
		return nil, err
	}
	if course.CreatorID == userID {
		return nil, ErrCreatorCannotSubmit
	}
	if course.IsArchived {
		return nil, ErrCourseArchived
	}

	if assignment.MaxAttempts != nil {
		attempts, err := s.submissions.CountAttempts(assignmentID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to count attempts: %w", err)
		}
		if attempts >= int64(*assignment.MaxAttempts) {
			return nil, ErrAttemptLimitReached
		}
	}

	submission := models.Submission{
		AssignmentID: assignmentID,
		StudentID:    userID,
		Content:      req.Content,
	}
	if err := s.submissions.Create(&submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	return s.respond(&submission, false)
}

// Get serves the submission to its owner or the course creator.
func (s *SubmissionService) Get(submissionID, userID uint) (*models.SubmissionResponse, error) {
	submission, _, course, err := s.load(submissionID)
	if err != nil {
		return nil, err
	}
	isCreator := course.CreatorID == userID
	if !isCreator && submission.StudentID != userID {
		return nil, ErrNotSubmissionOwner
	}
	if submission.IsDeleted && !isCreator {
		return nil, ErrSubmissionNotFound
	}
	return s.respond(submission, isCreator)
}

// ListByAssignment serves the creator every live attempt, ungraded first.
func (s *SubmissionService) ListByAssignment(assignmentID, userID uint) ([]models.SubmissionResponse, error) {
	if _, err := s.assignments.getOwned(assignmentID, userID); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.ListByAssignment(assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return s.respondAll(submissions, true)
}

// ListMine returns the caller's own attempts for the assignment.
func (s *SubmissionService) ListMine(assignmentID, userID uint) ([]models.SubmissionResponse, error) {
	if _, _, err := s.assignments.getForMember(assignmentID, userID); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.ListByAssignmentAndStudent(assignmentID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	if len(submissions) == 0 {
		return nil, ErrSubmissionNotFound
	}
	return s.respondAll(submissions, false)
}

// ListUngradedByAssignment serves the creator's grading queue for one
// assignment.
func (s *SubmissionService) ListUngradedByAssignment(assignmentID, userID uint) ([]models.SubmissionResponse, error) {
	if _, err := s.assignments.getOwned(assignmentID, userID); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.ListUngradedByAssignment(assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return s.respondAll(submissions, true)
}

// ListUngradedByCourse serves the creator's grading queue for a course.
func (s *SubmissionService) ListUngradedByCourse(courseID, userID uint) ([]models.SubmissionResponse, error) {
	if _, err := s.courses.getOwned(courseID, userID); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.ListUngradedByCourse(courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return s.respondAll(submissions, true)
}

// AttemptsInfo reports how many attempts the student has burned,
// counting deleted ones.
func (s *SubmissionService) AttemptsInfo(assignmentID, userID uint) (*models.AttemptsInfoResponse, error) {
	assignment, _, err := s.assignments.getForMember(assignmentID, userID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.submissions.CountAttempts(assignmentID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}
	return &models.AttemptsInfoResponse{
		TotalAttempts: attempts,
		MaxAttempts:   assignment.MaxAttempts,
	}, nil
}

// Grade sets the score. Accepts regrading; the grade timestamp moves.
func (s *SubmissionService) Grade(submissionID, userID uint, req *models.SubmissionGradeRequest) (*models.SubmissionResponse, error) {
	submission, assignment, course, err := s.load(submissionID)
	if err != nil {
		return nil, err
	}
	if course.CreatorID != userID {
		return nil, ErrNotCourseCreator
	}

	score, err := ValidateScore(assignment, req.Score)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	submission.Score = &score
	submission.TeacherComment = req.TeacherComment
	submission.GradedAt = &now
	submission.ViewedByTeacher = true
	if err := s.submissions.Update(submission); err != nil {
		return nil, fmt.Errorf("failed to grade submission: %w", err)
	}

	return s.respond(submission, true)
}

// MarkViewed flags the attempt as seen by the teacher.
func (s *SubmissionService) MarkViewed(submissionID, userID uint) (*models.SubmissionResponse, error) {
	submission, _, course, err := s.load(submissionID)
	if err != nil {
		return nil, err
	}
	if course.CreatorID != userID {
		return nil, ErrNotCourseCreator
	}

	if !submission.ViewedByTeacher {
		submission.ViewedByTeacher = true
		if err := s.submissions.Update(submission); err != nil {
			return nil, fmt.Errorf("failed to mark submission viewed: %w", err)
		}
	}
	return s.respond(submission, true)
}

// Delete soft-deletes the student's own ungraded attempt. The attempt
// still counts against the limit, so deleting the last allowed attempt
// would leave the student with nothing; that case is rejected.
func (s *SubmissionService) Delete(submissionID, userID uint) error {
	submission, assignment, _, err := s.load(submissionID)
	if err != nil {
		return err
	}
	if submission.StudentID != userID {
		return ErrNotSubmissionOwner
	}
	if submission.Score != nil {
		return ErrAlreadyGraded
	}
	if submission.ViewedByTeacher {
		return ErrSubmissionViewed
	}
	if submission.IsDeleted {
		return ErrSubmissionNotFound
	}
	if assignment.MaxAttempts != nil {
		attempts, err := s.submissions.CountAttempts(assignment.ID, userID)
		if err != nil {
			return fmt.Errorf("failed to count attempts: %w", err)
		}
		if attempts >= int64(*assignment.MaxAttempts) {
			return ErrAttemptsExhausted
		}
	}

	submission.IsDeleted = true
	if err := s.submissions.Update(submission); err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	return nil
}

/** ---------------- files ---------------- */

// UploadFile attaches a file to the student's own ungraded attempt.
func (s *SubmissionService) UploadFile(ctx context.Context, submissionID, userID uint, file *multipart.FileHeader) (*models.SubmissionFileResponse, error) {
	submission, _, _, err := s.load(submissionID)
	if err != nil {
		return nil, err
	}
	if submission.StudentID != userID {
		return nil, ErrNotSubmissionOwner
	}
	if submission.Score != nil {
		return nil, ErrAlreadyGraded
	}

	objectName, err := s.storage.Upload(ctx, fmt.Sprintf("submissions/%d", submissionID), file)
	if err != nil {
		return nil, err
	}

	record := models.SubmissionFile{
		SubmissionID: submissionID,
		ObjectName:   objectName,
		FileName:     file.Filename,
	}
	if err := s.submissions.AddFile(&record); err != nil {
		if rmErr := s.storage.Remove(ctx, objectName); rmErr != nil {
			slog.Error("failed to remove orphaned object", "object", objectName, "error", rmErr)
		}
		return nil, fmt.Errorf("failed to record file: %w", err)
	}

	return &models.SubmissionFileResponse{
		ID:         record.ID,
		FileName:   record.FileName,
		UploadedAt: record.CreatedAt,
	}, nil
}

func (s *SubmissionService) DeleteFile(ctx context.Context, submissionID, fileID, userID uint) error {
	submission, _, _, err := s.load(submissionID)
	if err != nil {
		return err
	}
	if submission.StudentID != userID {
		return ErrNotSubmissionOwner
	}
	if submission.Score != nil {
		return ErrAlreadyGraded
	}

	file, err := s.submissions.GetFile(submissionID, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFileNotFound
		}
		return fmt.Errorf("failed to load file: %w", err)
	}

	if err := s.storage.Remove(ctx, file.ObjectName); err != nil {
		slog.Error("failed to remove object", "object", file.ObjectName, "error", err)
	}
	if err := s.submissions.DeleteFile(file.ID); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// FileDownloadURL serves a short-lived link to the owner or the creator.
func (s *SubmissionService) FileDownloadURL(ctx context.Context, submissionID, fileID, userID uint) (string, error) {
	submission, _, course, err := s.load(submissionID)
	if err != nil {
		return "", err
	}
	if course.CreatorID != userID && submission.StudentID != userID {
		return "", ErrNotSubmissionOwner
	}

	file, err := s.submissions.GetFile(submissionID, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrFileNotFound
		}
		return "", fmt.Errorf("failed to load file: %w", err)
	}

	return s.storage.PresignedURL(ctx, file.ObjectName, file.FileName)
}

/** ---------------- helpers ---------------- */

func (s *SubmissionService) load(submissionID uint) (*models.Submission, *models.Assignment, *models.Course, error) {
	submission, err := s.submissions.GetByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrSubmissionNotFound
		}
		return nil, nil, nil, fmt.Errorf("failed to load submission: %w", err)
	}
	assignment, err := s.assignments.get(submission.AssignmentID)
	if err != nil {
		return nil, nil, nil, err
	}
	course, err := s.courses.get(assignment.CourseID)
	if err != nil {
		return nil, nil, nil, err
	}
	return submission, assignment, course, nil
}

func (s *SubmissionService) respond(submission *models.Submission, withStudentName bool) (*models.SubmissionResponse, error) {
	files, err := s.submissions.ListFiles(submission.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	studentName := ""
	if withStudentName {
		if user, err := s.users.GetByID(submission.StudentID); err == nil {
			studentName = user.Username
		}
	}

	resp := models.NewSubmissionResponse(submission, files, studentName)
	return &resp, nil
}

func (s *SubmissionService) respondAll(submissions []models.Submission, withStudentName bool) ([]models.SubmissionResponse, error) {
	responses := make([]models.SubmissionResponse, 0, len(submissions))
	for i := range submissions {
		resp, err := s.respond(&submissions[i], withStudentName)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}
