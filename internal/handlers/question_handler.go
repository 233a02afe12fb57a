package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/services"
	"github.com/SAP-F-2025/flashcard-service/internal/utils"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
)

type QuestionHandler struct {
	BaseHandler
	bank      *services.QuestionBankService
	validator *validator.Validator
}

func NewQuestionHandler(
	bank *services.QuestionBankService,
	validator *validator.Validator,
	logger utils.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler: NewBaseHandler(logger),
		bank:        bank,
		validator:   validator,
	}
}

// ListQuestions lists loaded questions, optionally filtered by
// min_rank, max_rank, file_id and source
// @Router /questions [get]
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	minRank, ok := ParseOptionalIntQuery(c, "min_rank")
	if !ok {
		return
	}
	maxRank, ok := ParseOptionalIntQuery(c, "max_rank")
	if !ok {
		return
	}

	filter := services.QuestionFilter{
		MinRank: minRank,
		MaxRank: maxRank,
		FileIDs: QueryList(c, "file_id"),
		Sources: c.QueryArray("source"),
	}
	h.LogRequest(c, "Listing questions", "filter", filter)

	c.JSON(http.StatusOK, h.bank.QueryQuestions(filter))
}

// GetRandomQuestion draws a loaded question weighted by rank
// @Router /questions/random [get]
func (h *QuestionHandler) GetRandomQuestion(c *gin.Context) {
	h.LogRequest(c, "Drawing random question")

	question, ok := h.bank.GetWeightedRandomQuestion()
	if !ok {
		h.handleServiceError(c, services.ErrNoQuestionsLoaded)
		return
	}
	c.JSON(http.StatusOK, question)
}

// GetQuestion returns one loaded question
// @Router /questions/{id} [get]
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	h.LogRequest(c, "Getting question", "question_id", id)

	question, err := h.bank.GetQuestionByID(id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// SubmitAnswer grades an answer and moves the question's rank
// @Router /questions/{id}/answer [post]
func (h *QuestionHandler) SubmitAnswer(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.LogRequest(c, "Submitting answer", "question_id", id)

	result, err := h.bank.SubmitAnswer(c.Request.Context(), id, req.Selected)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RankUp promotes a question one box
// @Router /questions/{id}/rank-up [post]
func (h *QuestionHandler) RankUp(c *gin.Context) {
	h.quickRank(c, h.bank.RankUpByID)
}

// RankDown demotes a question one box
// @Router /questions/{id}/rank-down [post]
func (h *QuestionHandler) RankDown(c *gin.Context) {
	h.quickRank(c, h.bank.RankDownByID)
}

// UpdateRank sets a question's rank
// @Router /questions/{id}/rank [put]
func (h *QuestionHandler) UpdateRank(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req UpdateRankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.LogRequest(c, "Updating rank", "question_id", id, "rank", req.Rank)

	updated, err := h.bank.SetRankByID(c.Request.Context(), id, req.Rank)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *QuestionHandler) quickRank(c *gin.Context, step func(context.Context, string) (*models.QuestionRecord, error)) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	h.LogRequest(c, "Quick rank change", "question_id", id)

	updated, err := step(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
