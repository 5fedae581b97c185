package services

import (
	"fmt"

	"decoded-backend/internal/models"
)

// baseInstruction sets the persona and the grounding rule shared by every mode.
const baseInstruction = "You are an expert Grade 10 Academic Tutor named 'DecodEd'. " +
	"Strictly adhere to the facts in the provided text. " +
	"Do not hallucinate information not present in the source."

// ItemsPerSet is the number of quiz questions or flashcards requested.
const ItemsPerSet = 10

// sourceMarker separates the instruction from the user's material.
const sourceMarker = "\n\n[SOURCE MATERIAL]:\n"

var modeInstructions = map[models.Mode]string{
	models.ModeSummary: "Create a structured summary using Markdown. " +
		"Use H2 headers for main topics and bullet points for details. " +
		"Bold key terms and definitions.",

	models.ModeQuiz: fmt.Sprintf("Generate exactly %d Multiple Choice Questions based on the text. ", ItemsPerSet) +
		"Each question must have exactly 4 options. " +
		"RETURN ONLY RAW JSON. No markdown formatting, no ```json tags. " +
		`Format: [{"question": "Question text", "options": ["Option 1", "Option 2", "Option 3", "Option 4"], ` +
		`"answer": "The full text of the correct option"}]. ` +
		"The answer must be copied verbatim from one of the options, never a letter or an index.",

	models.ModeFlashcards: fmt.Sprintf("Create exactly %d revision flashcards. ", ItemsPerSet) +
		"RETURN ONLY RAW JSON. No markdown formatting, no ```json tags. " +
		`Format: [{"front": "Concept/Term", "back": "Definition/Explanation"}]`,
}

// BuildInstruction returns the instruction text for mode. It is pure: the
// same mode always yields the same text. A mode with no entry, such as the
// zero Mode, gets the base instruction alone.
func BuildInstruction(mode models.Mode) string {
	instr, ok := modeInstructions[mode]
	if !ok {
		return baseInstruction
	}
	return baseInstruction + " " + instr
}

func buildPrompt(mode models.Mode, sourceText string) string {
	return BuildInstruction(mode) + sourceMarker + sourceText
}
