package services

import (
	"fmt"
	"testing"

	"classroom-service/internal/models"
	"classroom-service/internal/repositories/postgres"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the service stack over an in-memory database so
// permission and listing rules can be exercised end to end.
type testEnv struct {
	db          *gorm.DB
	users       *postgres.UserRepository
	courseRepo  *postgres.CourseRepository
	courses     *CourseService
	assignments *AssignmentService
	submissions *SubmissionService
	chat        *ChatService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One connection, or each pooled conn would get its own empty DB.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.CourseMember{},
		&models.Assignment{},
		&models.AssignmentFile{},
		&models.AssignmentView{},
		&models.Submission{},
		&models.SubmissionFile{},
		&models.ChatMessage{},
	))

	users := postgres.NewUserRepository(db)
	courseRepo := postgres.NewCourseRepository(db)
	assignmentRepo := postgres.NewAssignmentRepository(db)
	submissionRepo := postgres.NewSubmissionRepository(db)
	messageRepo := postgres.NewMessageRepository(db)

	courses := NewCourseService(courseRepo, users, assignmentRepo, submissionRepo)
	assignments := NewAssignmentService(assignmentRepo, submissionRepo, courses, nil)
	submissions := NewSubmissionService(submissionRepo, assignments, courses, users, nil)
	chat := NewChatService(messageRepo, assignments, courses, users)

	return &testEnv{
		db:          db,
		users:       users,
		courseRepo:  courseRepo,
		courses:     courses,
		assignments: assignments,
		submissions: submissions,
		chat:        chat,
	}
}

func (e *testEnv) newUser(t *testing.T, name string) *models.User {
	t.Helper()
	user := &models.User{
		Email:    fmt.Sprintf("%s@example.com", name),
		Username: name,
		Password: "not-a-real-hash",
	}
	require.NoError(t, e.users.Create(user))
	return user
}

func (e *testEnv) newCourse(t *testing.T, creatorID uint) *models.CourseResponse {
	t.Helper()
	resp, err := e.courses.Create(creatorID, &models.CourseCreateRequest{Title: "Algebra"})
	require.NoError(t, err)
	return resp
}

func (e *testEnv) enroll(t *testing.T, courseID, userID uint) {
	t.Helper()
	require.NoError(t, e.courseRepo.AddMember(courseID, userID))
}

func (e *testEnv) newAssignment(t *testing.T, courseID, creatorID uint) *models.AssignmentResponse {
	t.Helper()
	resp, err := e.assignments.Create(courseID, creatorID, &models.AssignmentCreateRequest{Title: "Homework 1"})
	require.NoError(t, err)
	return resp
}
