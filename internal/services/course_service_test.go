package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func TestListMembersIsCreatorOnly(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.newUser(t, "teacher")
	student := env.newUser(t, "student")
	course := env.newCourse(t, teacher.ID)
	env.enroll(t, course.ID, student.ID)

	members, err := env.courses.ListMembers(course.ID, teacher.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	_, err = env.courses.ListMembers(course.ID, student.ID)
	assert.ErrorIs(t, err, ErrNotCourseCreator)
}

func TestListMembersUnknownCourse(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.newUser(t, "teacher")

	_, err := env.courses.ListMembers(9999, teacher.ID)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestListMineArchivedFilter(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.newUser(t, "teacher")
	live := env.newCourse(t, teacher.ID)
	archived := env.newCourse(t, teacher.ID)

	_, err := env.courses.SetArchived(archived.ID, teacher.ID, true)
	require.NoError(t, err)

	all, err := env.courses.ListMine(teacher.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyArchived, err := env.courses.ListMine(teacher.ID, boolPtr(true))
	require.NoError(t, err)
	require.Len(t, onlyArchived, 1)
	assert.Equal(t, archived.ID, onlyArchived[0].ID)

	onlyLive, err := env.courses.ListMine(teacher.ID, boolPtr(false))
	require.NoError(t, err)
	require.Len(t, onlyLive, 1)
	assert.Equal(t, live.ID, onlyLive[0].ID)
}
