package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/KotFed0t/stock_analyser/internal/converter/restConverter"
	"github.com/KotFed0t/stock_analyser/internal/model"
	"github.com/KotFed0t/stock_analyser/internal/service"
	"github.com/KotFed0t/stock_analyser/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AnalyserService interface {
	RegisterUser(ctx context.Context, username, password string) error
	VerifyUser(ctx context.Context, username, password string) error
	GetStockOverview(ctx context.Context, symbol, username string) (model.StockOverview, error)
	AddWatch(ctx context.Context, username, symbol string) error
	RemoveWatch(ctx context.Context, username, symbol string) error
	GetWatchlist(ctx context.Context, username string) ([]model.WatchlistItem, error)
	AddPortfolioLine(ctx context.Context, username, symbol string, quantity, buyPrice decimal.Decimal) error
	GetPortfolioValuation(ctx context.Context, username string) (model.PortfolioValuation, error)
	Compare(ctx context.Context, firstSymbol, secondSymbol string) (model.Comparison, error)
	Predict(ctx context.Context, symbol string, horizon int) (model.StockPrediction, error)
	GenerateValuationReport(ctx context.Context, username string) (fileBytes []byte, filename, downloadLink string, err error)
}

type Session interface {
	CreateSession(ctx context.Context, sess model.Session) (token string, err error)
	SetSession(ctx context.Context, token string, sess model.Session) error
	DeleteSession(ctx context.Context, token string) error
}

type Controller struct {
	analyserService AnalyserService
	session         Session
}

func NewController(analyserService AnalyserService, session Session) *Controller {
	return &Controller{
		analyserService: analyserService,
		session:         session,
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type portfolioLineRequest struct {
	Symbol   string          `json:"symbol" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	BuyPrice decimal.Decimal `json:"buyPrice" binding:"required"`
}

type watchRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

type themeRequest struct {
	Theme string `json:"theme" binding:"required"`
}

func (ctrl *Controller) Register(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	err := ctrl.analyserService.RegisterUser(ctx, req.Username, req.Password)
	if err != nil {
		ctrl.writeError(c, ctx, err, "analyserService.RegisterUser")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"username": req.Username})
}

func (ctrl *Controller) Login(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	err := ctrl.analyserService.VerifyUser(ctx, req.Username, req.Password)
	if err != nil {
		ctrl.writeError(c, ctx, err, "analyserService.VerifyUser")
		return
	}

	token, err := ctrl.session.CreateSession(ctx, model.Session{Username: req.Username, Theme: model.ThemeDark})
	if err != nil {
		slog.Error("got error from session.CreateSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (ctrl *Controller) Logout(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	token := c.GetString("sessionToken")
	if err := ctrl.session.DeleteSession(ctx, token); err != nil {
		slog.Error("got error from session.DeleteSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (ctrl *Controller) GetStock(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)

	symbol := normalizeSymbol(c.Param("symbol"))
	sess := ctrl.sessionFromCtx(c)

	overview, err := ctrl.analyserService.GetStockOverview(ctx, symbol, sess.Username)
	if err != nil {
		ctrl.writeError(c, ctx, err, "analyserService.GetStockOverview")
		return
	}

	c.JSON(http.StatusOK, restConverter.StockOverview(overview))
}

func (ctrl *Controller) Predict(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)

	symbol := normalizeSymbol(c.Param("symbol"))

	horizon := 0
	if raw := c.Query("horizon"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "horizon must be a positive integer"})
			return
		}
		horizon = parsed
	}

	prediction, err := ctrl.analyserService.Predict(ctx, symbol, horizon)
	if err != nil {
		ctrl.writeError(c, ctx, err, "analyserService.Predict")
		return
	}

	c.JSON(http.StatusOK, restConverter.Prediction(prediction))
}

func (ctrl *Controller) Compare(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)

	first := normalizeSymbol(c.Query("first"))
	second := normalizeSymbol(c.Query("second"))

	comparison, err := ctrl.analyserService.Compare(ctx, first, second)
	if err != nil {
		ctrl.writeError(c, ctx, err, "analyserService.Compare")
		return
	}

	c.JSON(http.StatusOK, restConverter.Comparison(comparison))
}

func (ctrl *Controller) GetWatchlist(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	sess := ctrl.sessionFromCtx(c)

	items, err := ctrl.analyserService.GetWatchlist(ctx, sess.Username)
	if err != nil {
		ctrl.writeError(c, ctx, err, "analyserService.GetWatchlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{"watchlist": restConverter.Watchlist(items)})
}

func (ctrl *Controller) AddWatch(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	sess := ctrl.sessionFromCtx(c)

	var req watchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}

	symbol := normalizeSymbol(req.Symbol)

	err := ctrl.analyserService.AddWatch(ctx, sess.Username, symbol)
	if err != nil {
		ctrl.writeError(c, ctx, err, "analyserService.AddWatch")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"symbol": symbol})
}

func (ctrl *Controller) RemoveWatch(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	sess := ctrl.sessionFromCtx(c)

	symbol := normalizeSymbol(c.Param("symbol"))

	err := ctrl.analyserService.RemoveWatch(ctx, sess.Username, symbol)
	if err != nil {
		ctrl.writeError(c, ctx, err, "analyserService.RemoveWatch")
		return
	}

	c.Status(http.StatusNoContent)
}

func (ctrl *Controller) GetPortfolio(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	sess := ctrl.sessionFromCtx(c)

	valuation, err := ctrl.analyserService.GetPortfolioValuation(ctx, sess.Username)
	if err != nil {
		ctrl.writeError(c, ctx, err, "analyserService.GetPortfolioValuation")
		return
	}

	c.JSON(http.StatusOK, restConverter.Valuation(valuation))
}

func (ctrl *Controller) AddPortfolioLine(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	sess := ctrl.sessionFromCtx(c)

	var req portfolioLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol, quantity and buyPrice are required"})
		return
	}

	symbol := normalizeSymbol(req.Symbol)

	err := ctrl.analyserService.AddPortfolioLine(ctx, sess.Username, symbol, req.Quantity, req.BuyPrice)
	if err != nil {
		ctrl.writeError(c, ctx, err, "analyserService.AddPortfolioLine")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"symbol": symbol})
}

func (ctrl *Controller) GetReport(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	sess := ctrl.sessionFromCtx(c)

	fileBytes, filename, downloadLink, err := ctrl.analyserService.GenerateValuationReport(ctx, sess.Username)
	if err != nil {
		ctrl.writeError(c, ctx, err, "analyserService.GenerateValuationReport")
		return
	}

	if downloadLink != "" {
		c.JSON(http.StatusOK, gin.H{"downloadLink": downloadLink, "filename": filename})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", fileBytes)
}

func (ctrl *Controller) SetTheme(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	var req themeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "theme is required"})
		return
	}

	if req.Theme != model.ThemeDark && req.Theme != model.ThemeLight {
		c.JSON(http.StatusBadRequest, gin.H{"error": "theme must be dark or light"})
		return
	}

	sess := ctrl.sessionFromCtx(c)
	sess.Theme = req.Theme

	token := c.GetString("sessionToken")
	if err := ctrl.session.SetSession(ctx, token, sess); err != nil {
		slog.Error("got error from session.SetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"theme": sess.Theme})
}

func (ctrl *Controller) sessionFromCtx(c *gin.Context) model.Session {
	sess, _ := c.Value("session").(model.Session)
	return sess
}

func (ctrl *Controller) writeError(c *gin.Context, ctx context.Context, err error, source string) {
	switch {
	case errors.Is(err, service.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "symbol not found"})
	case errors.Is(err, service.ErrInsufficientData):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "not enough price history"})
	case errors.Is(err, service.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	default:
		rqID := utils.GetRequestIDFromCtx(ctx)
		slog.Error("got error from "+source, slog.String("rqID", rqID), slog.String("err", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
