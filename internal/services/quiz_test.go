package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decoded-backend/internal/models"
)

func sampleQuiz() []models.QuizItem {
	return []models.QuizItem{
		{Question: "Q1", Options: []string{"a", "b", "c", "d"}, Answer: "a"},
		{Question: "Q2", Options: []string{"a", "b", "c", "d"}, Answer: "b"},
		{Question: "Q3", Options: []string{"a", "b", "c", "d"}, Answer: "c"},
		{Question: "Q4", Options: []string{"a", "b", "c", "d"}, Answer: "d"},
	}
}

func TestGradeQuiz(t *testing.T) {
	tests := []struct {
		name        string
		answers     []string
		wantScore   int
		wantVerdict string
	}{
		{"perfect", []string{"a", "b", "c", "d"}, 4, VerdictPerfect},
		{"more than half", []string{"a", "b", "c", "a"}, 3, VerdictGood},
		{"exactly half", []string{"a", "b", "a", "a"}, 2, VerdictKeepStudying},
		{"missing answers", []string{"a"}, 1, VerdictKeepStudying},
		{"none", nil, 0, VerdictKeepStudying},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			grade, err := GradeQuiz(sampleQuiz(), tc.answers)
			require.NoError(t, err)
			assert.Equal(t, tc.wantScore, grade.Score)
			assert.Equal(t, 4, grade.Total)
			assert.Equal(t, tc.wantVerdict, grade.Verdict)
			assert.Len(t, grade.Results, 4)
		})
	}
}

func TestGradeQuiz_RejectsErrorFlagged(t *testing.T) {
	_, err := GradeQuiz([]models.QuizItem{{Error: "bad json"}}, []string{"a"})
	assert.ErrorIs(t, err, ErrQuizNotGradable)

	_, err = GradeQuiz(nil, nil)
	assert.Error(t, err)
}
