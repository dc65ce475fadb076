package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/api"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/config"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/domain"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/engine"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/evalcache"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/logger"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/pipeline"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/settings"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/storage"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/telemetry"
)

const testSecret = "test-secret"

type fakePasses struct {
	result    *pipeline.PassResult
	decisions []pipeline.ItemDecision
}

func (f *fakePasses) LastResult() (pipeline.PassResult, bool) {
	if f.result == nil {
		return pipeline.PassResult{}, false
	}
	return *f.result, true
}

func (f *fakePasses) LastDecisions() []pipeline.ItemDecision {
	return append([]pipeline.ItemDecision(nil), f.decisions...)
}

func (f *fakePasses) CacheStats() evalcache.Stats {
	return evalcache.Stats{Hits: 4, Misses: 2, Size: 2}
}

type countingTrigger struct{ fired int }

func (t *countingTrigger) Fire() { t.fired++ }

type fixture struct {
	store   *settings.Store
	engine  *engine.Engine
	passes  *fakePasses
	trigger *countingTrigger
	router  *gin.Engine
}

func newFixture(t *testing.T, secret string) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := settings.New(storage.NewMemory(), logger.NewNop())
	eng := engine.New(domain.RuleSet{ExcludeWords: []string{"ps5"}}, nil)
	passes := &fakePasses{}
	trigger := &countingTrigger{}

	h := api.NewHandler(store, func() pipeline.Evaluator { return eng.Snapshot() }, passes, trigger)
	srv := api.NewServer(config.ServerConfig{
		Port:            8095,
		CORSOrigins:     []string{"https://deals.example"},
		JWTSecret:       secret,
		ShutdownTimeout: time.Second,
	}, false, logger.NewNop(), h, telemetry.NewProvider().Handler())

	return &fixture{store: store, engine: eng, passes: passes, trigger: trigger, router: srv.Router()}
}

func (f *fixture) do(t *testing.T, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

type rulesBody struct {
	Version string         `json:"version"`
	Rules   domain.RuleSet `json:"rules"`
}

func TestHealth(t *testing.T) {
	f := newFixture(t, "")
	w := f.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[api.HealthResponse](t, w).Status)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestMetrics(t *testing.T) {
	f := newFixture(t, "")
	w := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "deal_filter_")
}

func TestRules_PutThenGet(t *testing.T) {
	f := newFixture(t, "")
	before := f.store.Version()

	w := f.do(t, http.MethodPut, "/api/v1/rules", `{"excludeWords":["ps5","ps5"," xbox "],"maxPrice":-3}`)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[rulesBody](t, w)
	assert.Equal(t, []string{"ps5", "xbox"}, got.Rules.ExcludeWords)
	assert.Zero(t, got.Rules.MaxPrice)
	assert.NotEqual(t, before, got.Version)

	w = f.do(t, http.MethodGet, "/api/v1/rules", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, got, decode[rulesBody](t, w))
}

func TestRules_ExportImport(t *testing.T) {
	f := newFixture(t, "")
	f.store.Update(context.Background(), domain.RuleSet{BlockedAuthors: []string{"bob"}})

	w := f.do(t, http.MethodGet, "/api/v1/rules/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), `"blockedAuthors"`)

	w = f.do(t, http.MethodPost, "/api/v1/rules/import", `{"hideColdItems":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	rules := f.store.Current()
	assert.True(t, rules.HideColdItems)
	assert.Equal(t, []string{"bob"}, rules.BlockedAuthors, "import is a shallow merge")

	w = f.do(t, http.MethodPost, "/api/v1/rules/import", `["not","an","object"]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRules_MaxPrice(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   float64
	}{
		{name: "number", body: `{"maxPrice": 99.5}`, status: http.StatusOK, want: 99.5},
		{name: "localized string", body: `{"maxPrice": "1.299,00 €"}`, status: http.StatusOK, want: 1299},
		{name: "negative coerced", body: `{"maxPrice": -5}`, status: http.StatusOK, want: 0},
		{name: "garbage", body: `{"maxPrice": "cheap"}`, status: http.StatusBadRequest},
		{name: "missing", body: `{}`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "")
			w := f.do(t, http.MethodPut, "/api/v1/rules/max-price", tt.body)
			require.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.InDelta(t, tt.want, f.store.Current().MaxPrice, 1e-9)
			}
		})
	}
}

func TestItems_HideAndReset(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(t, http.MethodPost, "/api/v1/items/thread_1/hide", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["added"])

	w = f.do(t, http.MethodPost, "/api/v1/items/thread_1/hide", "")
	assert.Equal(t, false, decode[map[string]any](t, w)["added"])
	assert.Equal(t, []string{"thread_1"}, f.store.Current().ManuallyHiddenIDs)

	w = f.do(t, http.MethodDelete, "/api/v1/items/hidden", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 1, decode[map[string]any](t, w)["cleared"], 0)
	assert.Empty(t, f.store.Current().ManuallyHiddenIDs)
}

func TestEvaluate(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(t, http.MethodPost, "/api/v1/evaluate", `{"id":"x","rawTitle":"PS5 Slim","price":449}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		SettingsVersion string          `json:"settingsVersion"`
		DisplayTitle    string          `json:"displayTitle"`
		Decision        domain.Decision `json:"decision"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Decision.Hide)
	assert.Equal(t, domain.ReasonWordFilter, resp.Decision.Reason)
	assert.Equal(t, "PS5 Slim", resp.DisplayTitle)
	assert.Equal(t, f.engine.Version(), resp.SettingsVersion)

	w = f.do(t, http.MethodPost, "/api/v1/evaluate", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDecisions(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(t, http.MethodGet, "/api/v1/decisions", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	f.passes.result = &pipeline.PassResult{Items: 2, Hidden: 1}
	f.passes.decisions = []pipeline.ItemDecision{
		{Item: domain.Item{ID: "a"}, Decision: domain.Hidden(domain.ReasonManual, "a")},
		{Item: domain.Item{ID: "b"}, Decision: domain.Shown(domain.ReasonVisible, "")},
	}

	w = f.do(t, http.MethodGet, "/api/v1/decisions?hidden=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[pipeline.PassResult](t, w)
	require.Len(t, res.Decisions, 1)
	assert.Equal(t, "a", res.Decisions[0].Item.ID)

	w = f.do(t, http.MethodGet, "/api/v1/decisions?hidden=maybe", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsAndTrigger(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(t, http.MethodPost, "/api/v1/passes", "")
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, f.trigger.fired)

	w = f.do(t, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Cache evalcache.Stats `json:"cache"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint64(4), resp.Cache.Hits)
}

func TestJWT_GuardsMutatingRoutes(t *testing.T) {
	f := newFixture(t, testSecret)

	w := f.do(t, http.MethodGet, "/api/v1/rules", "")
	assert.Equal(t, http.StatusOK, w.Code, "reads stay open")

	w = f.do(t, http.MethodDelete, "/api/v1/items/hidden", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodDelete, "/api/v1/items/hidden", "", "Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, api.Claims{
		Sub: "editor",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	w = f.do(t, http.MethodDelete, "/api/v1/items/hidden", "", "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(t, http.MethodOptions, "/api/v1/rules", "", "Origin", "https://deals.example")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://deals.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = f.do(t, http.MethodGet, "/api/v1/rules", "", "Origin", "https://evil.example")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(api.RecoveryMiddleware(logger.NewNop()))
	router.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
