package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownMode = errors.New("unknown mode")

// Mode selects both the instruction sent to the model and the shape of the
// reply. The only values are ModeSummary, ModeQuiz and ModeFlashcards; the
// zero Mode is never produced by ParseMode or UnmarshalText.
type Mode struct {
	name string
}

var (
	ModeSummary    = Mode{name: "Summary"}
	ModeQuiz       = Mode{name: "Quiz"}
	ModeFlashcards = Mode{name: "Flashcards"}
)

// Modes returns every mode in display order.
func Modes() []Mode {
	return []Mode{ModeSummary, ModeQuiz, ModeFlashcards}
}

// ParseMode accepts the display name of a mode, ignoring case and
// surrounding whitespace.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	for _, m := range Modes() {
		if strings.EqualFold(s, m.name) {
			return m, nil
		}
	}
	return Mode{}, fmt.Errorf("%w %q (want Summary, Quiz or Flashcards)", ErrUnknownMode, s)
}

func (m Mode) String() string { return m.name }

// IsZero reports whether m was never set.
func (m Mode) IsZero() bool { return m.name == "" }

// Structured reports whether replies in this mode are record sequences
// rather than free text.
func (m Mode) Structured() bool {
	return m == ModeQuiz || m == ModeFlashcards
}

func (m Mode) MarshalText() ([]byte, error) {
	if m.IsZero() {
		return nil, fmt.Errorf("cannot marshal unset mode")
	}
	return []byte(m.name), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
