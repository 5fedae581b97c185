package models

// GenerationResult is the outcome of one successful generate call. Exactly
// one of Text, Quiz or Flashcards is populated, chosen by Mode. For the
// structured modes a reply that could not be parsed is still a sequence:
// a single element whose Error field is set.
type GenerationResult struct {
	Mode       Mode        `json:"mode" yaml:"mode"`
	Backend    string      `json:"backend" yaml:"backend"`
	Text       string      `json:"text,omitempty" yaml:"text,omitempty"`
	Quiz       []QuizItem  `json:"quiz,omitempty" yaml:"quiz,omitempty"`
	Flashcards []Flashcard `json:"flashcards,omitempty" yaml:"flashcards,omitempty"`
}

// Malformed returns the error marker carried by the first record of a
// structured result, if any.
func (r *GenerationResult) Malformed() (string, bool) {
	switch r.Mode {
	case ModeQuiz:
		if len(r.Quiz) > 0 && r.Quiz[0].Error != "" {
			return r.Quiz[0].Error, true
		}
	case ModeFlashcards:
		if len(r.Flashcards) > 0 && r.Flashcards[0].Error != "" {
			return r.Flashcards[0].Error, true
		}
	}
	return "", false
}

// Capability is the discovery outcome for one credential.
type Capability struct {
	Provider string   `json:"provider" yaml:"provider"`
	Backends []string `json:"backends" yaml:"backends"`
	Selected string   `json:"selected" yaml:"selected"`
}

type GenerateRequest struct {
	Mode       Mode   `json:"mode"`
	Text       string `json:"text"`
	NoteTitle  string `json:"note_title"`
	SaveToNote bool   `json:"save_to_note"`
}

type GenerateResponse struct {
	*GenerationResult
	Malformed bool `json:"malformed,omitempty"`
}
