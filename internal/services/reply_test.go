package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decoded-backend/internal/models"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n[1]\n```", "[1]"},
		{"bare fence", "```\n[1]\n```", "[1]"},
		{"upper info string", "```JSON\n[1]\n```", "[1]"},
		{"no fence", "  [1]  ", "[1]"},
		{"trailing only", "[1]\n```", "[1]"},
		{"single line fence", "```[1]```", "[1]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stripFences(tc.in))
		})
	}
}

const validQuizJSON = `[
  {"question": "What do plants convert light into?", "options": ["Energy", "Water", "Soil", "Air"], "answer": "Energy"},
  {"question": "Where does photosynthesis happen?", "options": ["Roots", "Chloroplasts", "Bark", "Seeds"], "answer": "Chloroplasts"}
]`

func TestParseQuiz_Valid(t *testing.T) {
	items := parseQuiz("```json\n" + validQuizJSON + "\n```")
	require.Len(t, items, 2)
	assert.Equal(t, "Energy", items[0].Answer)
	assert.Equal(t, []string{"Roots", "Chloroplasts", "Bark", "Seeds"}, items[1].Options)
	assert.Empty(t, items[0].Error)
}

func TestParseQuiz_ProseAroundArray(t *testing.T) {
	items := parseQuiz("Here is your quiz:\n" + validQuizJSON + "\nGood luck!")
	require.Len(t, items, 2)
	assert.Empty(t, items[0].Error)
}

func TestParseQuiz_DropsInvalidRecords(t *testing.T) {
	raw := `[
	  {"question": "Q1", "options": ["a", "b", "c", "d"], "answer": "b"},
	  {"question": "Q2", "options": ["a", "b", "c"], "answer": "a"},
	  {"question": "Q3", "options": ["a", "b", "c", "d"], "answer": "B"},
	  {"question": "", "options": ["a", "b", "c", "d"], "answer": "a"},
	  {"question": "Q5", "options": ["a", "", "c", "d"], "answer": "a"}
	]`
	items := parseQuiz(raw)
	require.Len(t, items, 1)
	assert.Equal(t, "Q1", items[0].Question)
}

func TestParseQuiz_WrongTypedRecordDropsAlone(t *testing.T) {
	raw := `[{"question":"q1","options":["a","b","c","d"],"answer":"a"},{"question":"q2","options":"abcd","answer":"a"}]`
	items := parseQuiz(raw)
	require.Len(t, items, 1)
	assert.Equal(t, "q1", items[0].Question)
	assert.Empty(t, items[0].Error)

	only := parseQuiz(`[{"question":"q2","options":"abcd","answer":"a"}]`)
	require.Len(t, only, 1)
	assert.NotEmpty(t, only[0].Error)
}

func TestParseFlashcards_WrongTypedRecordDropsAlone(t *testing.T) {
	cards := parseFlashcards(`Here you go: [{"front":"X","back":"Y"},{"front":7,"back":"Z"}] enjoy`)
	assert.Equal(t, []models.Flashcard{{Front: "X", Back: "Y"}}, cards)
}

func TestParseQuiz_SnapsWhitespaceAnswer(t *testing.T) {
	items := parseQuiz(`[{"question": "Q", "options": ["alpha", "beta", "gamma", "delta"], "answer": " beta "}]`)
	require.Len(t, items, 1)
	assert.Equal(t, "beta", items[0].Answer)
}

func TestParseQuiz_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "not json"},
		{"object not array", `{"question": "Q"}`},
		{"empty array", `[]`},
		{"all records invalid", `[{"question": "Q", "options": ["a"], "answer": "a"}]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			items := parseQuiz(tc.raw)
			require.Len(t, items, 1)
			assert.NotEmpty(t, items[0].Error)
			assert.Empty(t, items[0].Question)
		})
	}
}

func TestParseQuiz_IgnoresModelSuppliedErrorField(t *testing.T) {
	items := parseQuiz(`[{"question": "Q", "options": ["a", "b", "c", "d"], "answer": "a", "error": "spoofed"}]`)
	require.Len(t, items, 1)
	assert.Empty(t, items[0].Error)
}

func TestParseFlashcards(t *testing.T) {
	cards := parseFlashcards("```json\n[{\"front\":\"X\",\"back\":\"Y\"},{\"front\":\"\",\"back\":\"Z\"}]\n```")
	assert.Equal(t, []models.Flashcard{{Front: "X", Back: "Y"}}, cards)

	bad := parseFlashcards("```json\nnope\n```")
	require.Len(t, bad, 1)
	assert.NotEmpty(t, bad[0].Error)
}

func TestParseReply_SummaryUntouched(t *testing.T) {
	raw := "  ```json\n## Heading\n```  "
	res, err := parseReply(models.ModeSummary, "m1", raw)
	require.NoError(t, err)
	assert.Equal(t, raw, res.Text)
	assert.Equal(t, "m1", res.Backend)
}
