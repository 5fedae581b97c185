package models

// NoteDateLayout is the calendar-date format stored in the note file.
const NoteDateLayout = "2006-01-02"

// DefaultNoteTitle replaces blank titles on save.
const DefaultNoteTitle = "Untitled Note"

type Note struct {
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	Date    string `json:"date" yaml:"date"`
}

type SaveNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type ExtractResponse struct {
	Title     string `json:"title"`
	Text      string `json:"text"`
	PagesRead int    `json:"pages_read"`
}
