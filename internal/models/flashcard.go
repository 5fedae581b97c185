package models

type Flashcard struct {
	Front string `json:"front,omitempty" yaml:"front,omitempty" validate:"required"`
	Back  string `json:"back,omitempty" yaml:"back,omitempty" validate:"required"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}
