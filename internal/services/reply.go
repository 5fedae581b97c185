package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"decoded-backend/internal/models"
)

var recordValidator = newRecordValidator()

func newRecordValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// oneofoption: the field must equal one element of the sibling Options slice.
	v.RegisterValidation("oneofoption", func(fl validator.FieldLevel) bool {
		parent := fl.Parent()
		if parent.Kind() == reflect.Ptr {
			parent = parent.Elem()
		}
		opts := parent.FieldByName("Options")
		if !opts.IsValid() || opts.Kind() != reflect.Slice {
			return false
		}
		answer := fl.Field().String()
		for i := 0; i < opts.Len(); i++ {
			if opts.Index(i).String() == answer {
				return true
			}
		}
		return false
	})
	return v
}

// ValidateStruct runs the shared record validator over s.
func ValidateStruct(s interface{}) error {
	return recordValidator.Struct(s)
}

// stripFences removes a leading ``` or ```json line and a trailing ``` that
// models add around JSON despite being told not to.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// drop an info string such as "json" up to the first newline
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && isInfoString(s[:nl]) {
			s = s[nl+1:]
		} else if isInfoString(s) {
			s = ""
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func isInfoString(s string) bool {
	s = strings.TrimSpace(s)
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}

// decodeRecords parses a JSON array of T. When the cleaned text has prose
// around the array, the outermost [...] span is tried as well. Elements are
// decoded one at a time and those that do not fit T are skipped.
func decodeRecords[T any](raw string) ([]T, error) {
	text := stripFences(raw)
	var elems []json.RawMessage
	err := json.Unmarshal([]byte(text), &elems)
	if err != nil {
		start := strings.Index(text, "[")
		end := strings.LastIndex(text, "]")
		if start < 0 || end <= start || json.Unmarshal([]byte(text[start:end+1]), &elems) != nil {
			return nil, err
		}
	}

	records := make([]T, 0, len(elems))
	for _, elem := range elems {
		var rec T
		if json.Unmarshal(elem, &rec) != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

var errNoValidRecords = errors.New("reply contained no valid records")

// parseQuiz turns a model reply into quiz items. It never fails: a reply
// that cannot be used becomes a single item carrying an error marker.
func parseQuiz(raw string) []models.QuizItem {
	items, err := decodeRecords[models.QuizItem](raw)
	if err != nil {
		return []models.QuizItem{{Error: malformedDetail(err)}}
	}

	valid := make([]models.QuizItem, 0, len(items))
	for _, item := range items {
		item.Error = ""
		item = normalizeQuizItem(item)
		if ValidateStruct(item) != nil {
			continue
		}
		valid = append(valid, item)
	}
	if len(valid) == 0 {
		return []models.QuizItem{{Error: malformedDetail(errNoValidRecords)}}
	}
	return valid
}

// normalizeQuizItem snaps an answer that differs from an option only by
// surrounding whitespace onto that option.
func normalizeQuizItem(item models.QuizItem) models.QuizItem {
	want := strings.TrimSpace(item.Answer)
	for _, opt := range item.Options {
		if opt != item.Answer && strings.TrimSpace(opt) == want {
			item.Answer = opt
			break
		}
	}
	return item
}

func parseFlashcards(raw string) []models.Flashcard {
	cards, err := decodeRecords[models.Flashcard](raw)
	if err != nil {
		return []models.Flashcard{{Error: malformedDetail(err)}}
	}

	valid := make([]models.Flashcard, 0, len(cards))
	for _, c := range cards {
		c.Error = ""
		if ValidateStruct(c) != nil {
			continue
		}
		valid = append(valid, c)
	}
	if len(valid) == 0 {
		return []models.Flashcard{{Error: malformedDetail(errNoValidRecords)}}
	}
	return valid
}

// parseReply shapes the raw reply for mode.
func parseReply(mode models.Mode, backend, raw string) (*models.GenerationResult, error) {
	result := &models.GenerationResult{Mode: mode, Backend: backend}
	switch mode {
	case models.ModeSummary:
		result.Text = raw
	case models.ModeQuiz:
		result.Quiz = parseQuiz(raw)
	case models.ModeFlashcards:
		result.Flashcards = parseFlashcards(raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	return result, nil
}
