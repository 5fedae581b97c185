package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"decoded-backend/internal/models"
	"decoded-backend/internal/services"
)

// GradeQuiz handles POST /api/v1/quiz/grade.
func GradeQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.GradeQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if err := services.ValidateStruct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", validationFields(err), r))
		return
	}

	grade, err := services.GradeQuiz(req.Items, req.Answers)
	if errors.Is(err, services.ErrQuizNotGradable) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("QUIZ_NOT_GRADABLE", err.Error(), r))
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
		return
	}
	writeJSON(w, http.StatusOK, grade)
}
