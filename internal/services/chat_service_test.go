package services

import (
	"fmt"
	"testing"

	"classroom-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatListOffsetLimit(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.newUser(t, "teacher")
	course := env.newCourse(t, teacher.ID)
	assignment := env.newAssignment(t, course.ID, teacher.ID)

	for i := 0; i < 15; i++ {
		_, err := env.chat.Create(assignment.ID, teacher.ID, &models.MessageCreateRequest{
			Message: fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}

	// Default limit is 10.
	page, err := env.chat.List(assignment.ID, teacher.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, page, 10)

	rest, err := env.chat.List(assignment.ID, teacher.ID, 10, 10)
	require.NoError(t, err)
	assert.Len(t, rest, 5)

	// The two pages cover the thread without overlap.
	seen := make(map[uint]bool)
	for _, m := range append(page, rest...) {
		assert.False(t, seen[m.ID])
		seen[m.ID] = true
	}
	assert.Len(t, seen, 15)

	// Limit is capped at 50, not passed through verbatim.
	for i := 15; i < 55; i++ {
		_, err := env.chat.Create(assignment.ID, teacher.ID, &models.MessageCreateRequest{
			Message: fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}
	capped, err := env.chat.List(assignment.ID, teacher.ID, 0, 500)
	require.NoError(t, err)
	assert.Len(t, capped, 50)

	// Negative offset reads from the start.
	fromStart, err := env.chat.List(assignment.ID, teacher.ID, -3, 5)
	require.NoError(t, err)
	assert.Len(t, fromStart, 5)
}

func TestChatListRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.newUser(t, "teacher")
	outsider := env.newUser(t, "outsider")
	course := env.newCourse(t, teacher.ID)
	assignment := env.newAssignment(t, course.ID, teacher.ID)

	_, err := env.chat.List(assignment.ID, outsider.ID, 0, 10)
	assert.ErrorIs(t, err, ErrNotCourseMember)
}
