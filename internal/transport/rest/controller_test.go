package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KotFed0t/stock_analyser/data/session"
	"github.com/KotFed0t/stock_analyser/internal/model"
	"github.com/KotFed0t/stock_analyser/internal/service"
	"github.com/KotFed0t/stock_analyser/internal/transport/rest/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyserService struct {
	registerErr error
	verifyErr   error
	overview    model.StockOverview
	overviewErr error
	prediction  model.StockPrediction
	predictErr  error
	valuation   model.PortfolioValuation
	watchlist   []model.WatchlistItem
	added       []string
}

func (s *fakeAnalyserService) RegisterUser(_ context.Context, _, _ string) error { return s.registerErr }
func (s *fakeAnalyserService) VerifyUser(_ context.Context, _, _ string) error   { return s.verifyErr }

func (s *fakeAnalyserService) GetStockOverview(_ context.Context, _, _ string) (model.StockOverview, error) {
	return s.overview, s.overviewErr
}

func (s *fakeAnalyserService) AddWatch(_ context.Context, _, symbol string) error {
	s.added = append(s.added, symbol)
	return nil
}

func (s *fakeAnalyserService) RemoveWatch(_ context.Context, _, _ string) error { return nil }

func (s *fakeAnalyserService) GetWatchlist(_ context.Context, _ string) ([]model.WatchlistItem, error) {
	return s.watchlist, nil
}

func (s *fakeAnalyserService) AddPortfolioLine(_ context.Context, _, _ string, _, _ decimal.Decimal) error {
	return nil
}

func (s *fakeAnalyserService) GetPortfolioValuation(_ context.Context, _ string) (model.PortfolioValuation, error) {
	return s.valuation, nil
}

func (s *fakeAnalyserService) Compare(_ context.Context, _, _ string) (model.Comparison, error) {
	return model.Comparison{}, nil
}

func (s *fakeAnalyserService) Predict(_ context.Context, _ string, _ int) (model.StockPrediction, error) {
	return s.prediction, s.predictErr
}

func (s *fakeAnalyserService) GenerateValuationReport(_ context.Context, _ string) ([]byte, string, string, error) {
	return []byte("report"), "report.xlsx", "", nil
}

type fakeSession struct {
	sessions map[string]model.Session
}

func newFakeSession() *fakeSession {
	return &fakeSession{sessions: make(map[string]model.Session)}
}

func (s *fakeSession) CreateSession(_ context.Context, sess model.Session) (string, error) {
	token := "token-" + sess.Username
	s.sessions[token] = sess
	return token, nil
}

func (s *fakeSession) GetSession(_ context.Context, token string) (model.Session, error) {
	sess, ok := s.sessions[token]
	if !ok {
		return model.Session{}, session.ErrNotFound
	}
	return sess, nil
}

func (s *fakeSession) SetSession(_ context.Context, token string, sess model.Session) error {
	s.sessions[token] = sess
	return nil
}

func (s *fakeSession) DeleteSession(_ context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

func newTestRouter(svc *fakeAnalyserService, sessionStore *fakeSession) *gin.Engine {
	gin.SetMode(gin.TestMode)

	ctrl := NewController(svc, sessionStore)

	router := gin.New()
	api := router.Group("/api/v1")

	api.POST("/auth/register", ctrl.Register)
	api.POST("/auth/login", ctrl.Login)
	api.POST("/auth/logout", middleware.Auth(sessionStore), ctrl.Logout)

	authorized := api.Group("", middleware.Auth(sessionStore))
	authorized.GET("/stocks/:symbol", ctrl.GetStock)
	authorized.GET("/stocks/:symbol/prediction", ctrl.Predict)
	authorized.POST("/watchlist", ctrl.AddWatch)
	authorized.PUT("/settings/theme", ctrl.SetTheme)

	return router
}

func doRequest(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func loggedInRouter(t *testing.T, svc *fakeAnalyserService) (*gin.Engine, string) {
	t.Helper()

	sessionStore := newFakeSession()
	router := newTestRouter(svc, sessionStore)

	w := doRequest(router, http.MethodPost, "/api/v1/auth/login", "", `{"username":"alice","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])

	return router, resp["token"]
}

func TestRegisterConflict(t *testing.T) {
	router := newTestRouter(&fakeAnalyserService{registerErr: service.ErrAlreadyExists}, newFakeSession())

	w := doRequest(router, http.MethodPost, "/api/v1/auth/register", "", `{"username":"alice","password":"pw"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterMissingFields(t *testing.T) {
	router := newTestRouter(&fakeAnalyserService{}, newFakeSession())

	w := doRequest(router, http.MethodPost, "/api/v1/auth/register", "", `{"username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginInvalidCredentials(t *testing.T) {
	router := newTestRouter(&fakeAnalyserService{verifyErr: service.ErrInvalidCredentials}, newFakeSession())

	w := doRequest(router, http.MethodPost, "/api/v1/auth/login", "", `{"username":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter(&fakeAnalyserService{}, newFakeSession())

	w := doRequest(router, http.MethodGet, "/api/v1/stocks/AAPL", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/stocks/AAPL", "bogus", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetStockNotFound(t *testing.T) {
	router, token := loggedInRouter(t, &fakeAnalyserService{overviewErr: service.ErrNotFound})

	w := doRequest(router, http.MethodGet, "/api/v1/stocks/NOPE", token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPredictInsufficientHistory(t *testing.T) {
	router, token := loggedInRouter(t, &fakeAnalyserService{predictErr: service.ErrInsufficientData})

	w := doRequest(router, http.MethodGet, "/api/v1/stocks/FRESH/prediction", token, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPredictBadHorizon(t *testing.T) {
	router, token := loggedInRouter(t, &fakeAnalyserService{})

	w := doRequest(router, http.MethodGet, "/api/v1/stocks/AAPL/prediction?horizon=-3", token, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/stocks/AAPL/prediction?horizon=abc", token, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddWatchNormalizesSymbol(t *testing.T) {
	svc := &fakeAnalyserService{}
	router, token := loggedInRouter(t, svc)

	w := doRequest(router, http.MethodPost, "/api/v1/watchlist", token, `{"symbol":" aapl "}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{"AAPL"}, svc.added)
}

func TestSetTheme(t *testing.T) {
	router, token := loggedInRouter(t, &fakeAnalyserService{})

	w := doRequest(router, http.MethodPut, "/api/v1/settings/theme", token, `{"theme":"light"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPut, "/api/v1/settings/theme", token, `{"theme":"solarized"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogout(t *testing.T) {
	router, token := loggedInRouter(t, &fakeAnalyserService{})

	w := doRequest(router, http.MethodPost, "/api/v1/auth/logout", token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	// token no longer valid
	w = doRequest(router, http.MethodGet, "/api/v1/stocks/AAPL", token, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
