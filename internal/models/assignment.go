package models

import (
	"time"

	"gorm.io/gorm"
)

// Grading type constants
const (
	GradingTypeNumeric = "numeric"
	GradingTypeText    = "text"
)

/** --------------------ENTITIES-------------------- */

// Assignment represents a task published inside a course
type Assignment struct {
	gorm.Model
	CourseID    uint       `gorm:"not null;index" json:"course_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	CreatedBy   uint       `gorm:"not null" json:"created_by"`
	DueDate     *time.Time `json:"due_date"`

	// Grading configuration
	GradingType  string  `gorm:"type:varchar(20);default:'numeric';check:grading_type IN ('numeric', 'text')" json:"grading_type"`
	GradeMin     *int    `json:"grade_min"`
	GradeMax     *int    `json:"grade_max"`
	GradeOptions *string `json:"grade_options"` // JSON array of allowed text grades
	MaxAttempts  *int    `json:"max_attempts"`  // nil = unlimited
}

// AssignmentFile is a teacher-attached file stored in the object store
type AssignmentFile struct {
	gorm.Model
	AssignmentID uint   `gorm:"not null;index" json:"assignment_id"`
	ObjectName   string `gorm:"not null" json:"-"`
	FileName     string `gorm:"not null" json:"file_name"`
}

// AssignmentView records that a student opened an assignment
type AssignmentView struct {
	gorm.Model
	AssignmentID uint `gorm:"not null;index:idx_assignment_views_assignment_user,unique" json:"assignment_id"`
	UserID       uint `gorm:"not null;index:idx_assignment_views_assignment_user,unique" json:"user_id"`
}

/** -------------------- DTOs -------------------- */

// Request
type AssignmentCreateRequest struct {
	Title        string     `json:"title" binding:"required,max=200"`
	Description  string     `json:"description"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	GradingType  string     `json:"grading_type" binding:"omitempty,oneof=numeric text"`
	GradeMin     *int       `json:"grade_min,omitempty"`
	GradeMax     *int       `json:"grade_max,omitempty"`
	GradeOptions []string   `json:"grade_options,omitempty"`
	MaxAttempts  *int       `json:"max_attempts,omitempty"`
}

type AssignmentUpdateRequest struct {
	Title        *string    `json:"title,omitempty" binding:"omitempty,max=200"`
	Description  *string    `json:"description,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	GradingType  *string    `json:"grading_type,omitempty" binding:"omitempty,oneof=numeric text"`
	GradeMin     *int       `json:"grade_min,omitempty"`
	GradeMax     *int       `json:"grade_max,omitempty"`
	GradeOptions []string   `json:"grade_options,omitempty"`
	MaxAttempts  *int       `json:"max_attempts,omitempty"`
}

// Response
type AssignmentFileResponse struct {
	ID         uint      `json:"id"`
	FileName   string    `json:"file_name"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type AssignmentResponse struct {
	ID           uint                     `json:"id"`
	CourseID     uint                     `json:"course_id"`
	Title        string                   `json:"title"`
	Description  string                   `json:"description"`
	CreatedBy    uint                     `json:"created_by"`
	CreatedAt    time.Time                `json:"created_at"`
	DueDate      *time.Time               `json:"due_date"`
	GradingType  string                   `json:"grading_type"`
	GradeMin     *int                     `json:"grade_min"`
	GradeMax     *int                     `json:"grade_max"`
	GradeOptions *string                  `json:"grade_options"`
	MaxAttempts  *int                     `json:"max_attempts"`
	Files        []AssignmentFileResponse `json:"files"`
	IsRead       *bool                    `json:"is_read,omitempty"`
}

// MyAssignmentResponse augments an assignment with per-student context for
// the cross-course "everything I need to do" listing.
type MyAssignmentResponse struct {
	AssignmentResponse
	CourseTitle      string  `json:"course_title"`
	CourseIsArchived bool    `json:"course_is_archived"`
	IsSubmitted      bool    `json:"is_submitted"`
	IsGraded         bool    `json:"is_graded"`
	Score            *string `json:"score"`
}

func NewAssignmentResponse(a *Assignment, files []AssignmentFile) AssignmentResponse {
	fileResponses := make([]AssignmentFileResponse, 0, len(files))
	for _, f := range files {
		fileResponses = append(fileResponses, AssignmentFileResponse{
			ID:         f.ID,
			FileName:   f.FileName,
			UploadedAt: f.CreatedAt,
		})
	}
	return AssignmentResponse{
		ID:           a.ID,
		CourseID:     a.CourseID,
		Title:        a.Title,
		Description:  a.Description,
		CreatedBy:    a.CreatedBy,
		CreatedAt:    a.CreatedAt,
		DueDate:      a.DueDate,
		GradingType:  a.GradingType,
		GradeMin:     a.GradeMin,
		GradeMax:     a.GradeMax,
		GradeOptions: a.GradeOptions,
		MaxAttempts:  a.MaxAttempts,
		Files:        fileResponses,
	}
}
