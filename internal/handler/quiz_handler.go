package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bfcb/quizmerit-backend/internal/model"
	"github.com/bfcb/quizmerit-backend/internal/response"
	"github.com/bfcb/quizmerit-backend/internal/service"
	"github.com/bfcb/quizmerit-backend/internal/validator"
)

// QuizHandler handles the participant quiz flow: eligibility check, start,
// resume, per-answer saves and the final submit.
type QuizHandler struct {
	sessionService  *service.SessionService
	progressService *service.ProgressService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(sessionService *service.SessionService, progressService *service.ProgressService) *QuizHandler {
	return &QuizHandler{
		sessionService:  sessionService,
		progressService: progressService,
	}
}

// CheckSession godoc
// POST /api/v1/quiz/check-session
// Decides whether the participant may start a fresh attempt. A blocked
// answer carries the reason and, for a live session, its id for resuming.
func (h *QuizHandler) CheckSession(c *gin.Context) {
	var req model.CheckSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.sessionService.CheckSession(c.Request.Context(), req.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// StartSession godoc
// POST /api/v1/quiz/start
// Creates a new in_progress session for the participant.
func (h *QuizHandler) StartSession(c *gin.Context) {
	var req model.StartSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.sessionService.StartSession(c.Request.Context(), req.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": session})
}

// ResumeSession godoc
// POST /api/v1/quiz/resume
// Returns an in_progress session with every answer saved so far.
func (h *QuizHandler) ResumeSession(c *gin.Context) {
	var req model.ResumeSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, responses, err := h.sessionService.ResumeSession(c.Request.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session":   session,
		"responses": responses,
	})
}

// SaveProgress godoc
// POST /api/v1/quiz/save-progress
// Upserts the answer for one question of a running attempt. Saving the same
// question again overwrites the previous answer.
func (h *QuizHandler) SaveProgress(c *gin.Context) {
	var req model.SaveProgressRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	resp, err := h.progressService.SaveProgress(c.Request.Context(), req.SessionID, req.QuestionID, req.Answer, req.TimeSpent)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"response": resp})
}

// SubmitQuiz godoc
// POST /api/v1/quiz/submit
// Finalizes the attempt: persists the full response set and flips the
// session to completed. Submitting an already completed session succeeds.
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	var req model.SubmitQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err := h.sessionService.FinalizeSession(c.Request.Context(), req.SessionID, req.Responses, req.TotalTimeSpent)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"completed": true})
}
