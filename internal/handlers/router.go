package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/flashcard-service/internal/services"
	"github.com/SAP-F-2025/flashcard-service/internal/utils"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
)

type HandlerManager struct {
	fileHandler     *FileHandler
	questionHandler *QuestionHandler
}

func NewHandlerManager(
	bank *services.QuestionBankService,
	exporter *services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		fileHandler:     NewFileHandler(bank, exporter, validator, logger),
		questionHandler: NewQuestionHandler(bank, validator, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	{
		files := v1.Group("/files")
		{
			files.GET("", hm.fileHandler.ListFiles)
			files.POST("/scan", hm.fileHandler.ScanFiles)
			files.POST("/select", hm.fileHandler.SelectFiles)
			files.POST("/deselect", hm.fileHandler.DeselectFiles)
			files.POST("/:name/reset", hm.fileHandler.ResetMetadata)
			files.DELETE("/:name/metadata", hm.fileHandler.DeleteMetadata)
		}

		questions := v1.Group("/questions")
		{
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/random", hm.questionHandler.GetRandomQuestion)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.POST("/:id/answer", hm.questionHandler.SubmitAnswer)
			questions.POST("/:id/rank-up", hm.questionHandler.RankUp)
			questions.POST("/:id/rank-down", hm.questionHandler.RankDown)
			questions.PUT("/:id/rank", hm.questionHandler.UpdateRank)
		}

		v1.GET("/stats", hm.fileHandler.GetStats)
		v1.GET("/export", hm.fileHandler.ExportProgress)
	}
}

// NewRouter builds a gin engine with request logging and every route mounted
func NewRouter(hm *HandlerManager, logger utils.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), utils.LoggerMiddleware(logger), utils.ContextLogger(logger))
	hm.SetupRoutes(router)
	return router
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "flashcard-service",
	})
}
