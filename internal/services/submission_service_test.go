package services

import (
	"testing"

	"classroom-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionListMineEmptyIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.newUser(t, "teacher")
	student := env.newUser(t, "student")
	course := env.newCourse(t, teacher.ID)
	env.enroll(t, course.ID, student.ID)
	assignment := env.newAssignment(t, course.ID, teacher.ID)

	_, err := env.submissions.ListMine(assignment.ID, student.ID)
	assert.ErrorIs(t, err, ErrSubmissionNotFound)

	content := "my answer"
	_, err = env.submissions.Create(assignment.ID, student.ID, &models.SubmissionCreateRequest{Content: &content})
	require.NoError(t, err)

	mine, err := env.submissions.ListMine(assignment.ID, student.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
