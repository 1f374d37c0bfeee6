package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopulse/ecopulse-backend/internal/domain/entity"
	"github.com/ecopulse/ecopulse-backend/internal/http/middleware"
	"github.com/ecopulse/ecopulse-backend/internal/infrastructure/memory"
	"github.com/ecopulse/ecopulse-backend/internal/storage"
	"github.com/ecopulse/ecopulse-backend/internal/usecase/problem"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func setupProblemRouter(t *testing.T) (*gin.Engine, *memory.Store, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	reporter, err := entity.NewUser("reporter", "reporter@example.com", "hash")
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(context.Background(), reporter))

	root := t.TempDir()
	photos, err := storage.NewPhotoStorage(root, 1)
	require.NoError(t, err)

	h := NewProblemHandler(ProblemUseCases{
		Report: problem.NewReportProblemUseCase(store, problem.DefaultRewards(), nil),
		Get:    problem.NewGetProblemUseCase(store),
	}, photos)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, reporter.ID)
		c.Next()
	})
	r.POST("/problems", h.Report)
	r.GET("/problems/:id", h.Get)
	return r, store, root
}

func multipartReport(t *testing.T, fields map[string]string, photo []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if photo != nil {
		fw, err := mw.CreateFormFile("photo", "trash.png")
		require.NoError(t, err)
		_, err = fw.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/problems", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func countFiles(t *testing.T, root string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

func TestProblemHandler_ReportWithPhoto(t *testing.T) {
	r, _, root := setupProblemRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartReport(t, map[string]string{
		"title":    "Сломанная скамейка",
		"lat":      "53.99",
		"lng":      "86.66",
		"category": "damage",
	}, pngHeader))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body struct {
		Status  string `json:"status"`
		Problem struct {
			ID    uuid.UUID `json:"id"`
			Photo string    `json:"photo"`
			State string    `json:"status"`
		} `json:"problem"`
		PointsAwarded int64 `json:"points_awarded"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.True(t, strings.HasPrefix(body.Problem.Photo, "/uploads/"), body.Problem.Photo)
	assert.Equal(t, "reported", body.Problem.State)
	assert.EqualValues(t, 15, body.PointsAwarded)
	assert.Equal(t, 1, countFiles(t, root))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/problems/"+body.Problem.ID.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProblemHandler_ReportRollsBackPhotoOnFailure(t *testing.T) {
	r, _, root := setupProblemRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartReport(t, map[string]string{
		"title":    "Сломанная скамейка",
		"category": "volcano",
	}, pngHeader))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, countFiles(t, root))
}

func TestProblemHandler_ReportRejectsNonImage(t *testing.T) {
	r, _, root := setupProblemRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartReport(t, map[string]string{"title": "Мусор"}, []byte("not an image at all")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, countFiles(t, root))
}

func TestProblemHandler_ReportRequiresTitle(t *testing.T) {
	r, _, _ := setupProblemRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartReport(t, map[string]string{"description": "без заголовка"}, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
