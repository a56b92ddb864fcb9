package postgres

import (
	"errors"

	"classroom-service/internal/models"

	"gorm.io/gorm"
)

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db}
}

func (r *CourseRepository) Create(course *models.Course) error {
	return r.db.Create(course).Error
}

func (r *CourseRepository) Update(course *models.Course) error {
	return r.db.Save(course).Error
}

func (r *CourseRepository) Delete(courseID uint) error {
	return r.db.Delete(&models.Course{}, courseID).Error
}

func (r *CourseRepository) GetByID(courseID uint) (*models.Course, error) {
	var c models.Course
	err := r.db.First(&c, courseID).Error
	return &c, err
}

func (r *CourseRepository) GetByCode(code string) (*models.Course, error) {
	var c models.Course
	err := r.db.Where("code = ?", code).First(&c).Error
	return &c, err
}

func (r *CourseRepository) CodeExists(code string) (bool, error) {
	var c models.Course
	err := r.db.Select("id").Where("code = ?", code).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *CourseRepository) List() ([]models.Course, error) {
	var courses []models.Course
	err := r.db.Order("created_at").Find(&courses).Error
	return courses, err
}

/** ---------------- membership ---------------- */

func (r *CourseRepository) AddMember(courseID, userID uint) error {
	return r.db.Create(&models.CourseMember{CourseID: courseID, UserID: userID}).Error
}

func (r *CourseRepository) RemoveMember(courseID, userID uint) error {
	return r.db.Unscoped().
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Delete(&models.CourseMember{}).Error
}

func (r *CourseRepository) IsMember(courseID, userID uint) (bool, error) {
	var m models.CourseMember
	err := r.db.Select("id").
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *CourseRepository) CountMembers(courseID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.CourseMember{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

func (r *CourseRepository) ListMembers(courseID uint) ([]models.CourseMember, error) {
	var members []models.CourseMember
	err := r.db.Where("course_id = ?", courseID).Order("created_at").Find(&members).Error
	return members, err
}

func (r *CourseRepository) ListMembershipsByUser(userID uint) ([]models.CourseMember, error) {
	var memberships []models.CourseMember
	err := r.db.Where("user_id = ?", userID).Find(&memberships).Error
	return memberships, err
}
