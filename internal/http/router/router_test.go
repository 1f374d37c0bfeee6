package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	limitmemory "github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/ecopulse/ecopulse-backend/internal/cache"
	"github.com/ecopulse/ecopulse-backend/internal/config"
	"github.com/ecopulse/ecopulse-backend/internal/http/handlers"
	"github.com/ecopulse/ecopulse-backend/internal/infrastructure/memory"
	"github.com/ecopulse/ecopulse-backend/internal/sensor"
	"github.com/ecopulse/ecopulse-backend/internal/service"
	"github.com/ecopulse/ecopulse-backend/internal/storage"
	"github.com/ecopulse/ecopulse-backend/internal/usecase/complaint"
	"github.com/ecopulse/ecopulse-backend/internal/usecase/problem"
	"github.com/ecopulse/ecopulse-backend/internal/usecase/reward"
	"github.com/ecopulse/ecopulse-backend/internal/usecase/user"
	"github.com/ecopulse/ecopulse-backend/internal/usecase/vote"
	"github.com/ecopulse/ecopulse-backend/internal/ws"
)

const (
	cityLat = 53.9925
	cityLng = 86.6669
)

type fixedSensors struct{}

func (fixedSensors) Readings(_ context.Context, lat, lng float64) []sensor.Reading {
	return []sensor.Reading{{SensorID: "temp-1", SensorType: sensor.TypeTemperature, Lat: lat, Lng: lng, Value: 21}}
}

type testApp struct {
	engine *gin.Engine
	store  *memory.Store
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := memory.NewStore()
	_, err := service.NewSeedService(store, "Киселевск", cityLat, cityLng, 15).Seed(ctx, service.DefaultSeedAccounts)
	require.NoError(t, err)

	photos, err := storage.NewPhotoStorage(t.TempDir(), 1)
	require.NoError(t, err)

	hub := ws.NewHub(ctx)
	go hub.Run()

	tokens := service.NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	rewards := problem.DefaultRewards()
	ratingCache := cache.NewMemoryCache(0)
	t.Cleanup(ratingCache.Close)

	h := Handlers{
		Health: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"database": handlers.PingFunc(func(context.Context) error { return nil }),
		}),
		Auth: handlers.NewAuthHandler(service.NewAuthService(store, tokens, service.DefaultReferralBonus, hub)),
		Problem: handlers.NewProblemHandler(handlers.ProblemUseCases{
			Report:   problem.NewReportProblemUseCase(store, rewards, hub),
			Claim:    problem.NewClaimProblemUseCase(store, hub),
			Release:  problem.NewReleaseProblemUseCase(store),
			Complete: problem.NewCompleteProblemUseCase(store, rewards, hub),
			Reject:   problem.NewRejectProblemUseCase(store, hub),
			Delete:   problem.NewDeleteProblemUseCase(store),
			List:     problem.NewListProblemsUseCase(store.Problems()),
			Get:      problem.NewGetProblemUseCase(store),
			Comment:  problem.NewAddCommentUseCase(store),
		}, photos),
		Vote: handlers.NewVoteHandler(vote.NewVoteUseCase(store), vote.NewGetVoteStatusUseCase(store)),
		Complaint: handlers.NewComplaintHandler(
			complaint.NewFileComplaintUseCase(store),
			complaint.NewResolveComplaintUseCase(store),
			complaint.NewListPendingUseCase(store.Complaints()),
		),
		Shop: handlers.NewShopHandler(
			reward.NewPlaceOrderUseCase(store, hub),
			reward.NewUpdateOrderStatusUseCase(store, hub),
			reward.NewListOrdersUseCase(store),
			reward.NewGetBalanceUseCase(store),
			reward.NewAdjustBalanceUseCase(store, hub),
		),
		User: handlers.NewUserHandler(
			user.NewGetProfileUseCase(store.Users()),
			user.NewUpdateProfileUseCase(store),
			user.NewCachedRating(user.NewRatingUseCase(store.Users()), ratingCache, time.Minute),
			user.NewListUsersUseCase(store.Users()),
			user.NewToggleRoleUseCase(store),
			photos,
		),
		Sensor:    handlers.NewSensorHandler(fixedSensors{}, cityLat, cityLng),
		Analytics: handlers.NewAnalyticsHandler(problem.NewAnalyticsUseCase(store.Problems(), store.Users(), "Киселевск")),
		WS:        handlers.NewWSHandler(hub, nil),
	}

	cfg := &config.Config{
		Env:             "test",
		AllowedOrigins:  []string{"http://localhost:5173"},
		RateLimitLimit:  100,
		RateLimitPeriod: time.Minute,
	}
	engine := SetupRouter(cfg, h, Deps{
		Tokens:     tokens,
		Users:      store.Users(),
		LimitStore: limitmemory.NewStore(),
		UploadsDir: photos.Root(),
	})

	return &testApp{engine: engine, store: store}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (a *testApp) login(t *testing.T, username, password string) string {
	t.Helper()
	code, body := a.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": password})
	require.Equal(t, http.StatusOK, code, body)
	tokens := body["tokens"].(map[string]any)
	return tokens["access_token"].(string)
}

func (a *testApp) report(t *testing.T, token string) string {
	t.Helper()
	code, body := a.do(t, http.MethodPost, "/api/problems", token, gin.H{
		"title":       "Свалка у реки",
		"description": "Пакеты с мусором на берегу",
		"lat":         cityLat,
		"lng":         cityLng,
		"category":    "pollution",
	})
	require.Equal(t, http.StatusCreated, code, body)
	return body["problem"].(map[string]any)["id"].(string)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	code, body := app.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	code, body := app.do(t, http.MethodGet, "/api/problems", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "error", body["status"])

	code, _ = app.do(t, http.MethodGet, "/api/problems", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRegisterThenMe(t *testing.T) {
	app := newTestApp(t)

	code, body := app.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "volunteer",
		"email":    "volunteer@example.com",
		"password": "secret42",
	})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "success", body["status"])
	token := body["tokens"].(map[string]any)["access_token"].(string)

	code, body = app.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code, body)
	me := body["user"].(map[string]any)
	assert.Equal(t, "volunteer", me["username"])
	assert.Equal(t, "volunteer@example.com", me["email"])
}

func TestProblemLifecycle(t *testing.T) {
	app := newTestApp(t)
	userToken := app.login(t, "user1", "user123")
	adminToken := app.login(t, "admin", "admin123")

	problemID := app.report(t, adminToken)

	code, body := app.do(t, http.MethodPost, "/api/problems/"+problemID+"/take", userToken, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "in_progress", body["problem"].(map[string]any)["status"])

	// второй исполнитель получает конфликт
	code, body = app.do(t, http.MethodPost, "/api/problems/"+problemID+"/take", adminToken, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ALREADY_ASSIGNED", body["code"])

	code, body = app.do(t, http.MethodPost, "/api/problems/"+problemID+"/complete", userToken, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "completed", body["problem"].(map[string]any)["status"])
	assert.EqualValues(t, 15, body["points_awarded"])

	code, body = app.do(t, http.MethodPost, "/api/problems/"+problemID+"/complete", userToken, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ALREADY_COMPLETED", body["code"])

	code, body = app.do(t, http.MethodGet, "/api/balance", userToken, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.EqualValues(t, 115, body["points"])
}

func TestInvalidProblemID(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "user1", "user123")

	code, _ := app.do(t, http.MethodPost, "/api/problems/not-a-uuid/take", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestVoteToggle(t *testing.T) {
	app := newTestApp(t)
	userToken := app.login(t, "user1", "user123")
	adminToken := app.login(t, "admin", "admin123")
	problemID := app.report(t, adminToken)

	code, body := app.do(t, http.MethodPost, "/api/problems/"+problemID+"/vote", userToken, gin.H{"type": "like"})
	require.Equal(t, http.StatusOK, code, body)
	assert.EqualValues(t, 1, body["likes"])
	assert.Equal(t, "like", body["user_vote"])

	code, body = app.do(t, http.MethodPost, "/api/problems/"+problemID+"/vote", userToken, gin.H{"type": "dislike"})
	require.Equal(t, http.StatusOK, code, body)
	assert.EqualValues(t, 0, body["likes"])
	assert.EqualValues(t, 1, body["dislikes"])

	code, body = app.do(t, http.MethodPost, "/api/problems/"+problemID+"/vote", userToken, gin.H{"type": "dislike"})
	require.Equal(t, http.StatusOK, code, body)
	assert.EqualValues(t, 0, body["dislikes"])
	assert.Nil(t, body["user_vote"])

	code, _ = app.do(t, http.MethodPost, "/api/problems/"+problemID+"/vote", userToken, gin.H{"type": "meh"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestShopInsufficientBalance(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "user1", "user123")

	code, body := app.do(t, http.MethodPost, "/api/shop/orders", token, gin.H{
		"item_id":  4,
		"quantity": 1,
		"address":  "ул. Ленина, 1",
		"phone":    "+79990000000",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INSUFFICIENT_BALANCE", body["code"])

	code, body = app.do(t, http.MethodGet, "/api/balance", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 100, body["points"])
}

func TestShopOrderDebitsBalance(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "user1", "user123")

	code, body := app.do(t, http.MethodPost, "/api/shop/orders", token, gin.H{
		"item_id":  2,
		"quantity": 1,
		"address":  "ул. Ленина, 1",
		"phone":    "+79990000000",
	})
	require.Equal(t, http.StatusCreated, code, body)
	assert.EqualValues(t, 20, body["balance"])

	code, body = app.do(t, http.MethodGet, "/api/shop/orders", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["orders"], 1)
}

func TestAdminRoutesRejectRegularUser(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "user1", "user123")

	code, body := app.do(t, http.MethodGet, "/api/admin/users", token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", body["code"])
}

func TestComplaintResolutionDeletesProblem(t *testing.T) {
	app := newTestApp(t)
	userToken := app.login(t, "user1", "user123")
	adminToken := app.login(t, "admin", "admin123")
	problemID := app.report(t, adminToken)

	code, body := app.do(t, http.MethodPost, "/api/complaints", userToken, gin.H{
		"problem_id":  problemID,
		"reason":      "spam",
		"description": "Реклама вместо проблемы",
	})
	require.Equal(t, http.StatusCreated, code, body)
	complaintID := body["complaint"].(map[string]any)["id"].(string)

	code, body = app.do(t, http.MethodPost, "/api/admin/complaints/"+complaintID+"/resolve", adminToken, gin.H{
		"action": "delete_content",
	})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, true, body["changed"])
	assert.Equal(t, problemID, body["deleted_problem_id"])

	code, _ = app.do(t, http.MethodGet, "/api/problems/"+problemID, userToken, nil)
	assert.Equal(t, http.StatusNotFound, code)

	// повторное решение ничего не меняет
	code, body = app.do(t, http.MethodPost, "/api/admin/complaints/"+complaintID+"/resolve", adminToken, gin.H{
		"action": "reject_complaint",
	})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, false, body["changed"])
}

func TestSensorsArePublicAndDefaultToCityCenter(t *testing.T) {
	app := newTestApp(t)

	code, body := app.do(t, http.MethodGet, "/api/sensors", "", nil)
	require.Equal(t, http.StatusOK, code, body)
	readings := body["sensors"].([]any)
	require.Len(t, readings, 1)
	assert.InDelta(t, cityLat, readings[0].(map[string]any)["lat"], 1e-9)
}

func TestAnalytics(t *testing.T) {
	app := newTestApp(t)

	code, _ := app.do(t, http.MethodGet, "/api/analytics", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	token := app.login(t, "user1", "user123")
	app.report(t, token)

	code, body := app.do(t, http.MethodGet, "/api/analytics", token, nil)
	require.Equal(t, http.StatusOK, code, body)
	a := body["analytics"].(map[string]any)
	assert.Equal(t, "Киселевск", a["city"])
	assert.GreaterOrEqual(t, a["total"].(float64), float64(1))
	assert.GreaterOrEqual(t, a["categories"].(map[string]any)["pollution"].(float64), float64(1))

	priorities := a["priorities"].(map[string]any)
	sum := priorities["critical"].(float64) + priorities["high"].(float64) +
		priorities["medium"].(float64) + priorities["low"].(float64)
	assert.Equal(t, a["total"], sum)

	users := a["active_users"].([]any)
	require.NotEmpty(t, users)
	assert.LessOrEqual(t, len(users), 5)
}

func TestMeIncludesRank(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t, "user1", "user123")

	code, body := app.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, code, body)
	me := body["user"].(map[string]any)
	assert.GreaterOrEqual(t, me["rank"].(float64), float64(1))
}

func TestAuthRateLimit(t *testing.T) {
	app := newTestApp(t)

	var last int
	for i := 0; i < 6; i++ {
		last, _ = app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "nobody", "password": "wrong1"})
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
