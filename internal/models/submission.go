package models

import (
	"time"

	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */

// Submission is one attempt by a student. Attempts are never overwritten;
// each submit creates a new row so the history survives.
type Submission struct {
	gorm.Model
	AssignmentID    uint       `gorm:"not null;index" json:"assignment_id"`
	StudentID       uint       `gorm:"not null;index" json:"student_id"`
	Content         *string    `json:"content"`
	Score           *string    `json:"score"` // numeric grades stored as their string form
	TeacherComment  *string    `json:"teacher_comment"`
	GradedAt        *time.Time `json:"graded_at"`
	IsDeleted       bool       `gorm:"default:false" json:"is_deleted"`
	ViewedByTeacher bool       `gorm:"default:false" json:"viewed_by_teacher"`
}

// SubmissionFile is a student-attached file stored in the object store
type SubmissionFile struct {
	gorm.Model
	SubmissionID uint   `gorm:"not null;index" json:"submission_id"`
	ObjectName   string `gorm:"not null" json:"-"`
	FileName     string `gorm:"not null" json:"file_name"`
}

/** -------------------- DTOs -------------------- */

// Request
type SubmissionCreateRequest struct {
	Content *string `json:"content,omitempty"`
}

// SubmissionGradeRequest accepts either a number or a string for Score,
// mirroring the two grading modes.
type SubmissionGradeRequest struct {
	Score          any     `json:"score" binding:"required"`
	TeacherComment *string `json:"teacher_comment,omitempty"`
}

// Response
type SubmissionFileResponse struct {
	ID         uint      `json:"id"`
	FileName   string    `json:"file_name"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type SubmissionResponse struct {
	ID              uint                     `json:"id"`
	AssignmentID    uint                     `json:"assignment_id"`
	StudentID       uint                     `json:"student_id"`
	Content         *string                  `json:"content"`
	Score           *string                  `json:"score"`
	TeacherComment  *string                  `json:"teacher_comment"`
	SubmittedAt     time.Time                `json:"submitted_at"`
	GradedAt        *time.Time               `json:"graded_at"`
	ViewedByTeacher bool                     `json:"viewed_by_teacher"`
	Files           []SubmissionFileResponse `json:"files"`
	StudentName     string                   `json:"student_name,omitempty"`
}

type AttemptsInfoResponse struct {
	TotalAttempts int64 `json:"total_attempts"`
	MaxAttempts   *int  `json:"max_attempts"`
}

func NewSubmissionResponse(s *Submission, files []SubmissionFile, studentName string) SubmissionResponse {
	fileResponses := make([]SubmissionFileResponse, 0, len(files))
	for _, f := range files {
		fileResponses = append(fileResponses, SubmissionFileResponse{
			ID:         f.ID,
			FileName:   f.FileName,
			UploadedAt: f.CreatedAt,
		})
	}
	return SubmissionResponse{
		ID:              s.ID,
		AssignmentID:    s.AssignmentID,
		StudentID:       s.StudentID,
		Content:         s.Content,
		Score:           s.Score,
		TeacherComment:  s.TeacherComment,
		SubmittedAt:     s.CreatedAt,
		GradedAt:        s.GradedAt,
		ViewedByTeacher: s.ViewedByTeacher,
		Files:           fileResponses,
		StudentName:     studentName,
	}
}
