package models

import (
	"time"

	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */

// Course represents a course a teacher runs and students join by code
type Course struct {
	gorm.Model
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	Code        string `gorm:"type:varchar(9);uniqueIndex;not null" json:"code"` // join code, 9 uppercase letters
	CreatorID   uint   `gorm:"not null;index" json:"creator_id"`
	IsArchived  bool   `gorm:"default:false" json:"is_archived"`
}

// CourseMember links a user to a course. The creator is a member too.
type CourseMember struct {
	gorm.Model
	CourseID uint `gorm:"not null;index:idx_course_members_course_user,unique" json:"course_id"`
	UserID   uint `gorm:"not null;index:idx_course_members_course_user,unique" json:"user_id"`
}

/** -------------------- DTOs -------------------- */

// Request
type CourseCreateRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=5000"`
}

type CourseUpdateRequest struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,max=200"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=5000"`
}

type CourseJoinRequest struct {
	Code string `json:"code" binding:"required,len=9"`
}

// Response
type CourseResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Code        string    `json:"code"`
	CreatorID   uint      `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	IsArchived  bool      `json:"is_archived"`
	IsCreator   bool      `json:"is_creator"`
	MemberCount int64     `json:"member_count"`
}

type CourseMemberResponse struct {
	ID       uint      `json:"id"`
	UserID   uint      `json:"user_id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joined_at"`
}

// Gradebook: one row per student, one column per assignment.
type GradebookStudent struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type GradebookAssignment struct {
	ID           uint       `json:"id"`
	Title        string     `json:"title"`
	DueDate      *time.Time `json:"due_date"`
	GradingType  string     `json:"grading_type"`
	GradeMin     *int       `json:"grade_min"`
	GradeMax     *int       `json:"grade_max"`
	GradeOptions *string    `json:"grade_options"`
}

type GradebookCell struct {
	SubmissionID        uint       `json:"id,omitempty"`
	Submitted           bool       `json:"submitted"`
	Graded              bool       `json:"graded"`
	Score               *string    `json:"score"`
	SubmittedAt         *time.Time `json:"submitted_at,omitempty"`
	Attempts            int        `json:"attempts"`
	HasMultipleAttempts bool       `json:"has_multiple_attempts"`
}

type GradebookResponse struct {
	Students    []GradebookStudent      `json:"students"`
	Assignments []GradebookAssignment   `json:"assignments"`
	Gradebook   map[uint]map[uint]GradebookCell `json:"gradebook"`
}

func NewCourseResponse(c *Course, currentUserID uint, memberCount int64) CourseResponse {
	return CourseResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Code:        c.Code,
		CreatorID:   c.CreatorID,
		CreatedAt:   c.CreatedAt,
		IsArchived:  c.IsArchived,
		IsCreator:   c.CreatorID == currentUserID,
		MemberCount: memberCount,
	}
}
