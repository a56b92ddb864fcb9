package postgres

import (
	"errors"

	"classroom-service/internal/models"

	"gorm.io/gorm"
)

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db}
}

func (r *AssignmentRepository) Create(assignment *models.Assignment) error {
	return r.db.Create(assignment).Error
}

func (r *AssignmentRepository) Update(assignment *models.Assignment) error {
	return r.db.Save(assignment).Error
}

func (r *AssignmentRepository) Delete(assignmentID uint) error {
	return r.db.Delete(&models.Assignment{}, assignmentID).Error
}

func (r *AssignmentRepository) GetByID(assignmentID uint) (*models.Assignment, error) {
	var a models.Assignment
	err := r.db.First(&a, assignmentID).Error
	return &a, err
}

func (r *AssignmentRepository) ListByCourse(courseID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.Where("course_id = ?", courseID).
		Order("created_at DESC").
		Find(&assignments).Error
	return assignments, err
}

// ListByCoursesExcludingCreator returns assignments across the given courses
// that were not created by the user, newest first.
func (r *AssignmentRepository) ListByCoursesExcludingCreator(courseIDs []uint, userID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.Where("course_id IN ? AND created_by <> ?", courseIDs, userID).
		Order("created_at DESC").
		Find(&assignments).Error
	return assignments, err
}

/** ---------------- files ---------------- */

func (r *AssignmentRepository) AddFile(file *models.AssignmentFile) error {
	return r.db.Create(file).Error
}

func (r *AssignmentRepository) GetFile(assignmentID, fileID uint) (*models.AssignmentFile, error) {
	var f models.AssignmentFile
	err := r.db.Where("id = ? AND assignment_id = ?", fileID, assignmentID).First(&f).Error
	return &f, err
}

func (r *AssignmentRepository) DeleteFile(fileID uint) error {
	return r.db.Unscoped().Delete(&models.AssignmentFile{}, fileID).Error
}

func (r *AssignmentRepository) ListFiles(assignmentID uint) ([]models.AssignmentFile, error) {
	var files []models.AssignmentFile
	err := r.db.Where("assignment_id = ?", assignmentID).Order("created_at").Find(&files).Error
	return files, err
}

/** ---------------- read tracking ---------------- */

func (r *AssignmentRepository) MarkViewed(assignmentID, userID uint) error {
	viewed, err := r.IsViewed(assignmentID, userID)
	if err != nil {
		return err
	}
	if viewed {
		return nil
	}
	return r.db.Create(&models.AssignmentView{AssignmentID: assignmentID, UserID: userID}).Error
}

func (r *AssignmentRepository) IsViewed(assignmentID, userID uint) (bool, error) {
	var v models.AssignmentView
	err := r.db.Select("id").
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
