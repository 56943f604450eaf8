package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pixelmuse/imagen_go_server/config"
	"github.com/pixelmuse/imagen_go_server/internal/api/middleware"
	"github.com/pixelmuse/imagen_go_server/internal/inference"
	"github.com/pixelmuse/imagen_go_server/internal/model/dto"
	"github.com/pixelmuse/imagen_go_server/internal/pkg/response"
	"github.com/pixelmuse/imagen_go_server/internal/repository"
	"github.com/pixelmuse/imagen_go_server/internal/service"
	"github.com/pixelmuse/imagen_go_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubInference struct {
	result *inference.Result
	err    error
}

func (s *stubInference) Generate(ctx context.Context, req *inference.Request) (*inference.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func setupGenerationHandler(t *testing.T, stub *stubInference) (*GenerationHandler, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	genRepo := repository.NewGenerationRepository(db)
	userRepo := repository.NewUserRepository(db)
	reconRepo := repository.NewReconciliationRepository(db)

	cfg := &config.Config{
		Credits: config.CreditsConfig{GenerationCost: 6, VariantCost: 8, DailyReward: 20, HistoryLimit: 50},
	}

	genService := service.NewGenerationService(db, genRepo, userRepo, reconRepo, stub, cfg, zap.NewNop())
	handler := NewGenerationHandler(genService)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return handler, db, cleanup
}

// authedRouter 把固定用户塞进上下文，绕过 JWT 中间件
func authedRouter(userID int64) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	})
	return router
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func TestGenerationHandler_Generate_Success(t *testing.T) {
	stub := &stubInference{result: &inference.Result{ImageURL: "https://img.example.com/a.png"}}
	handler, db, cleanup := setupGenerationHandler(t, stub)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithCredits(10))

	router := authedRouter(user.ID)
	router.POST("/generations", handler.Generate)

	w := performRequest(router, "POST", "/generations", dto.GenerateRequest{
		Prompt: "a red fox",
		Ratio:  "16:9",
	})
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "COMPLETED", data["status"])
	assert.Equal(t, "https://img.example.com/a.png", data["image_url"])
}

func TestGenerationHandler_Generate_InsufficientCredits(t *testing.T) {
	stub := &stubInference{result: &inference.Result{ImageURL: "https://img.example.com/a.png"}}
	handler, db, cleanup := setupGenerationHandler(t, stub)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithCredits(3))

	router := authedRouter(user.ID)
	router.POST("/generations", handler.Generate)

	w := performRequest(router, "POST", "/generations", dto.GenerateRequest{
		Prompt: "a red fox",
	})
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeInsufficientCredits, resp.Code)
}

func TestGenerationHandler_Generate_UpstreamFailure(t *testing.T) {
	stub := &stubInference{err: errors.New("connection refused")}
	handler, db, cleanup := setupGenerationHandler(t, stub)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithCredits(10))

	router := authedRouter(user.ID)
	router.POST("/generations", handler.Generate)

	w := performRequest(router, "POST", "/generations", dto.GenerateRequest{
		Prompt: "a red fox",
	})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeUpstreamError, resp.Code)
	assert.Contains(t, resp.Message, "积分已退还")
}

func TestGenerationHandler_Generate_MissingPrompt(t *testing.T) {
	stub := &stubInference{result: &inference.Result{ImageURL: "https://img.example.com/a.png"}}
	handler, db, cleanup := setupGenerationHandler(t, stub)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithCredits(10))

	router := authedRouter(user.ID)
	router.POST("/generations", handler.Generate)

	w := performRequest(router, "POST", "/generations", map[string]string{})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestGenerationHandler_Generate_Unauthenticated(t *testing.T) {
	stub := &stubInference{result: &inference.Result{ImageURL: "https://img.example.com/a.png"}}
	handler, _, cleanup := setupGenerationHandler(t, stub)
	defer cleanup()

	router := gin.New()
	router.POST("/generations", handler.Generate)

	w := performRequest(router, "POST", "/generations", dto.GenerateRequest{Prompt: "a red fox"})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}

func TestGenerationHandler_GenerateVariant_Success(t *testing.T) {
	stub := &stubInference{result: &inference.Result{ImageURL: "https://img.example.com/b.png"}}
	handler, db, cleanup := setupGenerationHandler(t, stub)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithCredits(10))

	router := authedRouter(user.ID)
	router.POST("/generations/variants", handler.GenerateVariant)

	w := performRequest(router, "POST", "/generations/variants", dto.GenerateVariantRequest{
		Prompt:   "make it blue",
		Image:    "https://img.example.com/in.png",
		Strength: 0.6,
	})
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "COMPLETED", data["status"])
}

func TestGenerationHandler_History(t *testing.T) {
	stub := &stubInference{result: &inference.Result{ImageURL: "https://img.example.com/a.png"}}
	handler, db, cleanup := setupGenerationHandler(t, stub)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithCredits(100))
	testutil.TestGeneration(t, db, user.ID)
	testutil.TestGeneration(t, db, user.ID)

	router := authedRouter(user.ID)
	router.GET("/generations", handler.History)

	w := performRequest(router, "GET", "/generations", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])
}
