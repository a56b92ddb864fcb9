package services

import (
	"testing"
	"time"

	"classroom-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func numericAssignment(min, max int) *models.Assignment {
	return &models.Assignment{
		GradingType: models.GradingTypeNumeric,
		GradeMin:    intPtr(min),
		GradeMax:    intPtr(max),
	}
}

func textAssignment(options string) *models.Assignment {
	return &models.Assignment{
		GradingType:  models.GradingTypeText,
		GradeOptions: strPtr(options),
	}
}

func TestValidateScoreNumeric(t *testing.T) {
	a := numericAssignment(0, 100)

	score, err := ValidateScore(a, float64(85))
	require.NoError(t, err)
	assert.Equal(t, "85", score)

	score, err = ValidateScore(a, "72.5")
	require.NoError(t, err)
	assert.Equal(t, "72.5", score)

	_, err = ValidateScore(a, float64(101))
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = ValidateScore(a, float64(-1))
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = ValidateScore(a, "not a number")
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = ValidateScore(a, true)
	assert.ErrorIs(t, err, ErrInvalidScore)
}

func TestValidateScoreText(t *testing.T) {
	a := textAssignment(`["pass","fail"]`)

	score, err := ValidateScore(a, "pass")
	require.NoError(t, err)
	assert.Equal(t, "pass", score)

	_, err = ValidateScore(a, "excellent")
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = ValidateScore(a, float64(5))
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = ValidateScore(textAssignment(""), "pass")
	assert.Error(t, err)
}

func TestValidateGradingConfig(t *testing.T) {
	t.Run("numeric defaults to 0..100", func(t *testing.T) {
		min, max, options, err := validateGradingConfig(models.GradingTypeNumeric, nil, nil, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, *min)
		assert.Equal(t, 100, *max)
		assert.Nil(t, options)
	})

	t.Run("numeric rejects inverted bounds", func(t *testing.T) {
		_, _, _, err := validateGradingConfig(models.GradingTypeNumeric, intPtr(10), intPtr(5), nil, nil)
		assert.ErrorIs(t, err, ErrInvalidGradingConfig)
	})

	t.Run("text requires options", func(t *testing.T) {
		_, _, _, err := validateGradingConfig(models.GradingTypeText, nil, nil, nil, nil)
		assert.ErrorIs(t, err, ErrInvalidGradingConfig)

		_, _, options, err := validateGradingConfig(models.GradingTypeText, nil, nil, []string{"A", "B"}, nil)
		require.NoError(t, err)
		assert.JSONEq(t, `["A","B"]`, *options)
	})

	t.Run("attempt limit must be positive", func(t *testing.T) {
		_, _, _, err := validateGradingConfig(models.GradingTypeNumeric, nil, nil, nil, intPtr(0))
		assert.ErrorIs(t, err, ErrInvalidGradingConfig)
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		_, _, _, err := validateGradingConfig("letters", nil, nil, nil, nil)
		assert.ErrorIs(t, err, ErrInvalidGradingConfig)
	})
}

func submissionAt(id uint, daysAgo int, score *string) models.Submission {
	s := models.Submission{Score: score}
	s.ID = id
	s.CreatedAt = time.Now().AddDate(0, 0, -daysAgo)
	return s
}

func TestGradebookCellNumericPicksBestScore(t *testing.T) {
	a := numericAssignment(0, 100)
	// Newest first, as the repository returns them.
	attempts := []models.Submission{
		submissionAt(3, 0, strPtr("60")),
		submissionAt(2, 1, strPtr("90")),
		submissionAt(1, 2, strPtr("75")),
	}

	cell := gradebookCell(a, attempts)
	assert.Equal(t, uint(2), cell.SubmissionID)
	assert.Equal(t, "90", *cell.Score)
	assert.True(t, cell.Graded)
	assert.Equal(t, 3, cell.Attempts)
	assert.True(t, cell.HasMultipleAttempts)
}

func TestGradebookCellTextPicksLatestGraded(t *testing.T) {
	a := textAssignment(`["pass","fail"]`)
	attempts := []models.Submission{
		submissionAt(3, 0, nil),
		submissionAt(2, 1, strPtr("pass")),
		submissionAt(1, 2, strPtr("fail")),
	}

	cell := gradebookCell(a, attempts)
	assert.Equal(t, uint(2), cell.SubmissionID)
	assert.Equal(t, "pass", *cell.Score)
}

func TestGradebookCellUngradedShowsLatestAttempt(t *testing.T) {
	a := numericAssignment(0, 100)
	attempts := []models.Submission{
		submissionAt(5, 0, nil),
		submissionAt(4, 1, nil),
	}

	cell := gradebookCell(a, attempts)
	assert.Equal(t, uint(5), cell.SubmissionID)
	assert.True(t, cell.Submitted)
	assert.False(t, cell.Graded)
	assert.Nil(t, cell.Score)
}

func TestGradebookCellNoAttempts(t *testing.T) {
	cell := gradebookCell(numericAssignment(0, 100), nil)
	assert.False(t, cell.Submitted)
	assert.Zero(t, cell.Attempts)
}
