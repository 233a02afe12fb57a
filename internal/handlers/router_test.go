package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/flashcard-service/internal/events"
	"github.com/SAP-F-2025/flashcard-service/internal/identity"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
	"github.com/SAP-F-2025/flashcard-service/internal/services"
	"github.com/SAP-F-2025/flashcard-service/internal/utils"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
)

const capitalsCSV = `question,answer1,answer2,answer3,answer4,correct,source
"Capital of France?",Paris,Rome,Madrid,,1,Geo
"Capitals in Europe?",Berlin,Lima,Oslo,Quito,"1,3",Geo
`

var capitalsID = identity.FileID("capitals.csv")

type testServer struct {
	dir    string
	router *gin.Engine
	bank   *services.QuestionBankService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "capitals.csv"), []byte(capitalsCSV), 0o644))

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validator.New()
	bank := services.NewQuestionBankService(dir,
		repositories.NewMetadataRepository(),
		events.NewMockEventPublisher(slogger),
		slogger, v,
		services.WithRand(rand.New(rand.NewPCG(7, 7))),
	)
	_, err := bank.Scan(context.Background())
	require.NoError(t, err)

	logger := utils.NewSlogLogger(slogger)
	hm := NewHandlerManager(bank, services.NewExportService(bank, slogger), v, logger)
	return &testServer{dir: dir, router: NewRouter(hm, logger), bank: bank}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestFileRoutes(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/files", nil)
	require.Equal(t, http.StatusOK, w.Code)
	files := decode[[]models.QuestionFile](t, w)
	require.Len(t, files, 1)
	assert.Equal(t, capitalsID, files[0].ID)

	require.NoError(t, os.WriteFile(filepath.Join(ts.dir, "more.csv"), []byte(capitalsCSV), 0o644))
	w = ts.do(t, http.MethodPost, "/api/v1/files/scan", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.QuestionFile](t, w), 2)

	w = ts.do(t, http.MethodPost, "/api/v1/files/select", FileNamesRequest{Files: []string{"capitals.csv"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, ts.bank.GetAllLoadedQuestions(), 2)

	w = ts.do(t, http.MethodPost, "/api/v1/files/select", map[string]interface{}{"files": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/files/deselect", FileNamesRequest{Files: []string{"capitals.csv"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, ts.bank.GetAllLoadedQuestions())
}

func TestMetadataRoutes(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/files/capitals.csv/reset", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/v1/files/capitals.csv/metadata", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoFileExists(t, filepath.Join(ts.dir, "capitals.meta.json"))

	w = ts.do(t, http.MethodDelete, "/api/v1/files/ghost.md/metadata", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "File not found", decode[ErrorResponse](t, w).Message)

	w = ts.do(t, http.MethodPost, "/api/v1/files/ghost.md/reset", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuestionRoutes(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/questions/random", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "nothing loaded")

	require.NoError(t, ts.bank.SelectFiles(context.Background(), []string{"capitals.csv"}))

	w = ts.do(t, http.MethodGet, "/api/v1/questions/random", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, capitalsID, decode[models.QuestionRecord](t, w).FileID)

	id := capitalsID + "-002"
	w = ts.do(t, http.MethodGet, "/api/v1/questions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.MultipleChoice, decode[models.QuestionRecord](t, w).QuestionType)

	w = ts.do(t, http.MethodGet, "/api/v1/questions/"+capitalsID+"-042", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(t, http.MethodGet, "/api/v1/questions/nonsense", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/questions/"+id+"/rank-up", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[models.QuestionRecord](t, w).Rank)

	w = ts.do(t, http.MethodPost, "/api/v1/questions/"+id+"/rank-down", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[models.QuestionRecord](t, w).Rank)

	w = ts.do(t, http.MethodPut, "/api/v1/questions/"+id+"/rank", UpdateRankRequest{Rank: 5})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, decode[models.QuestionRecord](t, w).Rank)

	w = ts.do(t, http.MethodPut, "/api/v1/questions/"+id+"/rank", UpdateRankRequest{Rank: 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/questions/"+capitalsID+"-042/rank-up", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(t, http.MethodPut, "/api/v1/questions/"+capitalsID+"-042/rank", UpdateRankRequest{Rank: 3})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/questions?min_rank=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	high := decode[[]models.QuestionRecord](t, w)
	require.Len(t, high, 1)
	assert.Equal(t, id, high[0].ID)

	w = ts.do(t, http.MethodGet, "/api/v1/questions?source=Geo&file_id="+capitalsID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.QuestionRecord](t, w), 2)

	w = ts.do(t, http.MethodGet, "/api/v1/questions?max_rank=low", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitAnswerRoute(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.bank.SelectFiles(context.Background(), []string{"capitals.csv"}))
	id := capitalsID + "-001"

	w := ts.do(t, http.MethodPost, "/api/v1/questions/"+id+"/answer", SubmitAnswerRequest{Selected: []int{0}})
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[services.AnswerResult](t, w)
	assert.True(t, result.Correct)
	assert.Equal(t, 3, result.NewRank)

	w = ts.do(t, http.MethodPost, "/api/v1/questions/"+id+"/answer", SubmitAnswerRequest{Selected: []int{2}})
	require.Equal(t, http.StatusOK, w.Code)
	result = decode[services.AnswerResult](t, w)
	assert.False(t, result.Correct)
	assert.Equal(t, 2, result.NewRank)
	assert.Equal(t, []string{"Paris"}, result.CorrectAnswers)

	w = ts.do(t, http.MethodPost, "/api/v1/questions/"+id+"/answer", SubmitAnswerRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/questions/"+id+"/answer", SubmitAnswerRequest{Selected: []int{3}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsAndExportRoutes(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.bank.SelectFiles(context.Background(), []string{"capitals.csv"}))

	w := ts.do(t, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[[]models.FileStats](t, w)
	require.Len(t, stats, 1)
	assert.Equal(t, [5]int{0, 2, 0, 0, 0}, stats[0].RankCounts)

	w = ts.do(t, http.MethodGet, "/api/v1/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, w.Body.String(), "Capital of France?")

	w = ts.do(t, http.MethodGet, "/api/v1/export?format=xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotEmpty(t, w.Body.Bytes())

	w = ts.do(t, http.MethodGet, "/api/v1/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
