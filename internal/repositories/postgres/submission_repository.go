package postgres

import (
	"classroom-service/internal/models"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db}
}

func (r *SubmissionRepository) Create(submission *models.Submission) error {
	return r.db.Create(submission).Error
}

func (r *SubmissionRepository) Update(submission *models.Submission) error {
	return r.db.Save(submission).Error
}

func (r *SubmissionRepository) GetByID(submissionID uint) (*models.Submission, error) {
	var s models.Submission
	err := r.db.First(&s, submissionID).Error
	return &s, err
}

// ListByAssignment returns live submissions, ungraded first, newest first
// within each group.
func (r *SubmissionRepository) ListByAssignment(assignmentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.Where("assignment_id = ? AND is_deleted = false", assignmentID).
		Order("CASE WHEN score IS NULL THEN 0 ELSE 1 END, created_at DESC").
		Find(&submissions).Error
	return submissions, err
}

func (r *SubmissionRepository) ListByAssignmentAndStudent(assignmentID, studentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.Where("assignment_id = ? AND student_id = ? AND is_deleted = false", assignmentID, studentID).
		Order("created_at DESC").
		Find(&submissions).Error
	return submissions, err
}

// CountAttempts counts every attempt including soft-deleted ones, because
// deleting a submission does not refund the attempt.
func (r *SubmissionRepository) CountAttempts(assignmentID, studentID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Submission{}).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		Count(&count).Error
	return count, err
}

func (r *SubmissionRepository) ListUngradedByAssignment(assignmentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.Where("assignment_id = ? AND score IS NULL AND is_deleted = false", assignmentID).
		Order("created_at DESC").
		Find(&submissions).Error
	return submissions, err
}

func (r *SubmissionRepository) ListUngradedByCourse(courseID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Where("assignments.course_id = ? AND submissions.score IS NULL AND submissions.is_deleted = false", courseID).
		Order("submissions.created_at DESC").
		Find(&submissions).Error
	return submissions, err
}

/** ---------------- files ---------------- */

func (r *SubmissionRepository) AddFile(file *models.SubmissionFile) error {
	return r.db.Create(file).Error
}

func (r *SubmissionRepository) GetFile(submissionID, fileID uint) (*models.SubmissionFile, error) {
	var f models.SubmissionFile
	err := r.db.Where("id = ? AND submission_id = ?", fileID, submissionID).First(&f).Error
	return &f, err
}

func (r *SubmissionRepository) DeleteFile(fileID uint) error {
	return r.db.Unscoped().Delete(&models.SubmissionFile{}, fileID).Error
}

func (r *SubmissionRepository) ListFiles(submissionID uint) ([]models.SubmissionFile, error) {
	var files []models.SubmissionFile
	err := r.db.Where("submission_id = ?", submissionID).Order("created_at").Find(&files).Error
	return files, err
}
