package models

// QuizItem is one multiple-choice question. Answer holds the full text of
// the correct option, not a letter or index.
type QuizItem struct {
	Question string   `json:"question,omitempty" yaml:"question,omitempty" validate:"required"`
	Options  []string `json:"options,omitempty" yaml:"options,omitempty" validate:"len=4,dive,required"`
	Answer   string   `json:"answer,omitempty" yaml:"answer,omitempty" validate:"required,oneofoption"`
	Error    string   `json:"error,omitempty" yaml:"error,omitempty"`
}

type GradeQuizRequest struct {
	Items   []QuizItem `json:"items" validate:"required,min=1"`
	Answers []string   `json:"answers"`
}

type QuestionResult struct {
	Question string `json:"question"`
	Chosen   string `json:"chosen"`
	Answer   string `json:"answer"`
	Correct  bool   `json:"correct"`
}

type QuizGrade struct {
	Score   int              `json:"score"`
	Total   int              `json:"total"`
	Verdict string           `json:"verdict"` // "perfect" | "good" | "keep_studying"
	Results []QuestionResult `json:"results"`
}
