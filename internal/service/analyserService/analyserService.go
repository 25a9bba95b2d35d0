package analyserService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/KotFed0t/stock_analyser/config"
	"github.com/KotFed0t/stock_analyser/data/repository"
	"github.com/KotFed0t/stock_analyser/internal/engine/projectionEngine"
	"github.com/KotFed0t/stock_analyser/internal/engine/valuationEngine"
	"github.com/KotFed0t/stock_analyser/internal/externalApi"
	"github.com/KotFed0t/stock_analyser/internal/model"
	"github.com/KotFed0t/stock_analyser/internal/model/dbModel"
	"github.com/KotFed0t/stock_analyser/internal/service"
	"github.com/KotFed0t/stock_analyser/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type MarketApi interface {
	GetChart(ctx context.Context, symbol, lookback string) ([]model.PricePoint, error)
	GetQuote(ctx context.Context, symbol string) (model.StockQuote, error)
}

type Cache interface {
	GetQuote(ctx context.Context, symbol string) (model.StockQuote, error)
	SetQuote(ctx context.Context, quote model.StockQuote) error
	GetChart(ctx context.Context, symbol, lookback string) ([]model.PricePoint, error)
	SetChart(ctx context.Context, symbol, lookback string, points []model.PricePoint) error
}

type Repository interface {
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
	CreateUser(ctx context.Context, username, passwordHash string) error
	GetUser(ctx context.Context, username string) (dbModel.User, error)
	InsertWatchlistEntry(ctx context.Context, username, symbol string) error
	WatchlistContains(ctx context.Context, username, symbol string) (bool, error)
	DeleteWatchlistEntry(ctx context.Context, username, symbol string) error
	GetWatchlist(ctx context.Context, username string) ([]string, error)
	InsertPortfolioLine(ctx context.Context, username, symbol string, quantity, buyPrice decimal.Decimal) error
	GetPortfolioLines(ctx context.Context, username string) ([]model.PortfolioLine, error)
	GetTrackedSymbols(ctx context.Context) ([]string, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, report model.ValuationReport) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

type AnalyserService struct {
	cfg             *config.Config
	repo            Repository
	cache           Cache
	marketApi       MarketApi
	reportGenerator ReportGenerator
	cloudStorage    CloudStorage // nil when report sharing is disabled
}

func New(
	cfg *config.Config,
	repo Repository,
	cache Cache,
	marketApi MarketApi,
	reportGenerator ReportGenerator,
	cloudStorage CloudStorage,
) *AnalyserService {
	return &AnalyserService{
		cfg:             cfg,
		repo:            repo,
		cache:           cache,
		marketApi:       marketApi,
		reportGenerator: reportGenerator,
		cloudStorage:    cloudStorage,
	}
}

func (s *AnalyserService) RegisterUser(ctx context.Context, username, password string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AnalyserService.RegisterUser"

	slog.Debug("RegisterUser start", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	defer func() {
		slog.Debug("RegisterUser finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	}()

	if username == "" || password == "" {
		return service.ErrInvalidArgument
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("got error from bcrypt.GenerateFromPassword", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	err = s.repo.CreateUser(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return service.ErrAlreadyExists
		}
		slog.Error("got error from repo.CreateUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *AnalyserService) VerifyUser(ctx context.Context, username, password string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AnalyserService.VerifyUser"

	slog.Debug("VerifyUser start", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	defer func() {
		slog.Debug("VerifyUser finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	}()

	user, err := s.repo.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrInvalidCredentials
		}
		slog.Error("got error from repo.GetUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return service.ErrInvalidCredentials
	}

	return nil
}

func (s *AnalyserService) GetStockOverview(ctx context.Context, symbol, username string) (model.StockOverview, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AnalyserService.GetStockOverview"

	slog.Debug("GetStockOverview start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("GetStockOverview finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	}()

	quote, err := s.getQuote(ctx, symbol)
	if err != nil {
		return model.StockOverview{}, err
	}

	history, err := s.getChart(ctx, symbol, s.cfg.DefaultLookback)
	if err != nil {
		return model.StockOverview{}, err
	}

	overview := model.StockOverview{Quote: quote, History: history}

	watchlist, err := s.repo.GetWatchlist(ctx, username)
	if err != nil {
		slog.Error("got error from repo.GetWatchlist", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.StockOverview{}, err
	}

	for _, watched := range watchlist {
		if watched == symbol {
			overview.InWatchlist = true
			break
		}
	}

	return overview, nil
}

func (s *AnalyserService) AddWatch(ctx context.Context, username, symbol string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AnalyserService.AddWatch"

	slog.Debug("AddWatch start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("AddWatch finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	}()

	// only symbols the provider knows get onto the watchlist
	_, err := s.getQuote(ctx, symbol)
	if err != nil {
		return err
	}

	// check-then-insert inside a tx so a double-add stays a single row
	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.repo.WatchlistContains(ctx, username, symbol)
		if err != nil {
			return err
		}
		if exists {
			return repository.ErrAlreadyExists
		}
		return s.repo.InsertWatchlistEntry(ctx, username, symbol)
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			// adding twice is fine, the entry is already there
			return nil
		}
		slog.Error("got error from repo.InsertWatchlistEntry", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *AnalyserService) RemoveWatch(ctx context.Context, username, symbol string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AnalyserService.RemoveWatch"

	slog.Debug("RemoveWatch start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("RemoveWatch finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	}()

	err := s.repo.DeleteWatchlistEntry(ctx, username, symbol)
	if err != nil {
		slog.Error("got error from repo.DeleteWatchlistEntry", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *AnalyserService) GetWatchlist(ctx context.Context, username string) ([]model.WatchlistItem, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AnalyserService.GetWatchlist"

	slog.Debug("GetWatchlist start", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	defer func() {
		slog.Debug("GetWatchlist finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	}()

	symbols, err := s.repo.GetWatchlist(ctx, username)
	if err != nil {
		slog.Error("got error from repo.GetWatchlist", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	items := make([]model.WatchlistItem, 0, len(symbols))
	for _, symbol := range symbols {
		item := model.WatchlistItem{Symbol: symbol}

		quote, err := s.getQuote(ctx, symbol)
		if err == nil {
			price := quote.CurrentPrice
			item.LatestClose = &price
		} else {
			slog.Warn("can't resolve price for watchlist item", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
		}

		items = append(items, item)
	}

	return items, nil
}

func (s *AnalyserService) AddPortfolioLine(ctx context.Context, username, symbol string, quantity, buyPrice decimal.Decimal) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AnalyserService.AddPortfolioLine"

	slog.Debug("AddPortfolioLine start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("AddPortfolioLine finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	}()

	if symbol == "" || quantity.IsNegative() || buyPrice.IsNegative() {
		return service.ErrInvalidArgument
	}

	err := s.repo.InsertPortfolioLine(ctx, username, symbol, quantity, buyPrice)
	if err != nil {
		slog.Error("got error from repo.InsertPortfolioLine", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// GetPortfolioValuation evaluates the user's holdings against latest closes.
// Positions whose price cannot be resolved are excluded from the result and
// the totals rather than failing the whole valuation.
func (s *AnalyserService) GetPortfolioValuation(ctx context.Context, username string) (model.PortfolioValuation, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AnalyserService.GetPortfolioValuation"

	slog.Debug("GetPortfolioValuation start", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	defer func() {
		slog.Debug("GetPortfolioValuation finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	}()

	lines, err := s.repo.GetPortfolioLines(ctx, username)
	if err != nil {
		slog.Error("got error from repo.GetPortfolioLines", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioValuation{}, err
	}

	valuation := valuationEngine.Evaluate(lines, s.priceLookup(ctx))

	if len(valuation.Skipped) > 0 {
		slog.Warn("some positions skipped from valuation", slog.String("rqID", rqID), slog.String("op", op), slog.Any("skipped", valuation.Skipped))
	}

	return valuation, nil
}

func (s *AnalyserService) Compare(ctx context.Context, firstSymbol, secondSymbol string) (model.Comparison, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AnalyserService.Compare"

	slog.Debug("Compare start", slog.String("rqID", rqID), slog.String("op", op), slog.String("first", firstSymbol), slog.String("second", secondSymbol))
	defer func() {
		slog.Debug("Compare finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if firstSymbol == "" || secondSymbol == "" {
		return model.Comparison{}, service.ErrInvalidArgument
	}

	first, err := s.getChart(ctx, firstSymbol, s.cfg.DefaultLookback)
	if err != nil {
		return model.Comparison{}, err
	}

	second, err := s.getChart(ctx, secondSymbol, s.cfg.DefaultLookback)
	if err != nil {
		return model.Comparison{}, err
	}

	return model.Comparison{
		FirstSymbol:  firstSymbol,
		SecondSymbol: secondSymbol,
		First:        first,
		Second:       second,
	}, nil
}

// Predict fits a linear trend through the symbol's closing prices and
// extrapolates horizon days ahead. horizon <= 0 picks the configured default.
func (s *AnalyserService) Predict(ctx context.Context, symbol string, horizon int) (model.StockPrediction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AnalyserService.Predict"

	slog.Debug("Predict start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.Int("horizon", horizon))
	defer func() {
		slog.Debug("Predict finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	}()

	if horizon <= 0 {
		horizon = s.cfg.DefaultHorizonDays
	}

	history, err := s.getChart(ctx, symbol, s.cfg.DefaultLookback)
	if err != nil {
		return model.StockPrediction{}, err
	}

	series := make([]model.PredictionPoint, 0, len(history))
	for _, point := range history {
		series = append(series, model.PredictionPoint{
			Date:  point.Date,
			Close: point.Close.InexactFloat64(),
		})
	}

	fit, points, err := projectionEngine.Project(series, horizon)
	if err != nil {
		if errors.Is(err, projectionEngine.ErrInsufficientData) {
			return model.StockPrediction{}, service.ErrInsufficientData
		}
		slog.Error("got error from projectionEngine.Project", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.StockPrediction{}, err
	}

	return model.StockPrediction{
		Symbol:    symbol,
		Horizon:   horizon,
		Slope:     fit.Slope,
		Intercept: fit.Intercept,
		Points:    points,
	}, nil
}

// GenerateValuationReport builds the xlsx report and, when cloud storage is
// configured, uploads it and returns a shareable link.
func (s *AnalyserService) GenerateValuationReport(ctx context.Context, username string) (fileBytes []byte, filename, downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AnalyserService.GenerateValuationReport"

	slog.Debug("GenerateValuationReport start", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	defer func() {
		slog.Debug("GenerateValuationReport finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	}()

	valuation, err := s.GetPortfolioValuation(ctx, username)
	if err != nil {
		return nil, "", "", err
	}

	watchlist, err := s.GetWatchlist(ctx, username)
	if err != nil {
		return nil, "", "", err
	}

	report := model.ValuationReport{
		Username:    username,
		GeneratedAt: time.Now().UTC(),
		Valuation:   valuation,
		Watchlist:   watchlist,
	}

	fileBytes, ext, err := s.reportGenerator.Generate(ctx, report)
	if err != nil {
		slog.Error("got error from reportGenerator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", "", err
	}

	filename = fmt.Sprintf("portfolio_%s_%s%s", username, report.GeneratedAt.Format("2006-01-02"), ext)

	if s.cloudStorage != nil {
		downloadLink, err = s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
		if err != nil {
			slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			// report itself is still usable, sharing is best-effort
			return fileBytes, filename, "", nil
		}
	}

	return fileBytes, filename, downloadLink, nil
}

// WarmQuotesCache refreshes cached quotes for every symbol present in any
// watchlist or portfolio. Scheduler job target.
func (s *AnalyserService) WarmQuotesCache(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AnalyserService.WarmQuotesCache"

	slog.Debug("WarmQuotesCache start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("WarmQuotesCache finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	symbols, err := s.repo.GetTrackedSymbols(ctx)
	if err != nil {
		slog.Error("got error from repo.GetTrackedSymbols", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	var failed int
	for _, symbol := range symbols {
		quote, err := s.marketApi.GetQuote(ctx, symbol)
		if err != nil {
			slog.Warn("can't refresh quote", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("err", err.Error()))
			failed++
			continue
		}

		if err := s.cache.SetQuote(ctx, quote); err != nil {
			slog.Warn("can't cache quote", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol), slog.String("err", err.Error()))
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to refresh %d of %d quotes", failed, len(symbols))
	}

	return nil
}

// getQuote reads through the cache and falls back to the market API,
// backfilling the cache asynchronously on a miss.
func (s *AnalyserService) getQuote(ctx context.Context, symbol string) (model.StockQuote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AnalyserService.getQuote"

	quote, err := s.cache.GetQuote(ctx, symbol)
	if err == nil {
		return quote, nil
	}

	quote, err = s.marketApi.GetQuote(ctx, symbol)
	if err != nil {
		if errors.Is(err, externalApi.ErrNotFound) {
			slog.Warn("symbol not found in marketApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
			return model.StockQuote{}, service.ErrNotFound
		}
		slog.Error("can't get quote from marketApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.StockQuote{}, err
	}

	go s.cache.SetQuote(context.WithoutCancel(ctx), quote)

	return quote, nil
}

func (s *AnalyserService) getChart(ctx context.Context, symbol, lookback string) ([]model.PricePoint, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AnalyserService.getChart"

	points, err := s.cache.GetChart(ctx, symbol, lookback)
	if err == nil {
		return points, nil
	}

	points, err = s.marketApi.GetChart(ctx, symbol, lookback)
	if err != nil {
		if errors.Is(err, externalApi.ErrNotFound) {
			slog.Warn("symbol history not found in marketApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
			return nil, service.ErrNotFound
		}
		slog.Error("can't get chart from marketApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	go s.cache.SetChart(context.WithoutCancel(ctx), symbol, lookback, points)

	return points, nil
}

// priceLookup adapts getQuote to the valuation engine's silent-skip
// contract: any resolution failure reads as "price unavailable".
func (s *AnalyserService) priceLookup(ctx context.Context) valuationEngine.PriceLookup {
	resolved := make(map[string]decimal.Decimal)

	return func(symbol string) (decimal.Decimal, bool) {
		if price, ok := resolved[symbol]; ok {
			return price, true
		}

		quote, err := s.getQuote(ctx, symbol)
		if err != nil {
			return decimal.Zero, false
		}

		resolved[symbol] = quote.CurrentPrice
		return quote.CurrentPrice, true
	}
}
