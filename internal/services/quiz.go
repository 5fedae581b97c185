package services

import (
	"errors"

	"decoded-backend/internal/models"
)

const (
	VerdictPerfect      = "perfect"
	VerdictGood         = "good"
	VerdictKeepStudying = "keep_studying"
)

var ErrQuizNotGradable = errors.New("quiz carries an error marker and cannot be graded")

// GradeQuiz scores answers against items by exact text match. Missing
// answers count as wrong.
func GradeQuiz(items []models.QuizItem, answers []string) (*models.QuizGrade, error) {
	if len(items) == 0 {
		return nil, errors.New("quiz has no questions")
	}
	if items[0].Error != "" {
		return nil, ErrQuizNotGradable
	}

	grade := &models.QuizGrade{
		Total:   len(items),
		Results: make([]models.QuestionResult, len(items)),
	}
	for i, item := range items {
		var chosen string
		if i < len(answers) {
			chosen = answers[i]
		}
		correct := chosen != "" && chosen == item.Answer
		if correct {
			grade.Score++
		}
		grade.Results[i] = models.QuestionResult{
			Question: item.Question,
			Chosen:   chosen,
			Answer:   item.Answer,
			Correct:  correct,
		}
	}

	switch {
	case grade.Score == grade.Total:
		grade.Verdict = VerdictPerfect
	case float64(grade.Score) > float64(grade.Total)/2:
		grade.Verdict = VerdictGood
	default:
		grade.Verdict = VerdictKeepStudying
	}
	return grade, nil
}
