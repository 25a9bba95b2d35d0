package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/stock_analyser/config"
	"github.com/KotFed0t/stock_analyser/internal/model"
	"github.com/KotFed0t/stock_analyser/utils"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func quoteKey(symbol string) string {
	return "quote:" + symbol
}

func chartKey(symbol, lookback string) string {
	return fmt.Sprintf("chart:%s:%s", symbol, lookback)
}

func (r *RedisCache) SetQuote(ctx context.Context, quote model.StockQuote) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetQuote start", slog.String("rqID", rqID), slog.String("symbol", quote.Symbol))

	quoteJson, err := json.Marshal(quote)
	if err != nil {
		slog.Error(
			"can't marshal quote in SetQuote",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.Any("quote", quote),
		)
		return errors.New("can't marshal quote")
	}

	_, err = r.redis.Set(ctx, quoteKey(quote.Symbol), quoteJson, r.cfg.Cache.QuotesExpiration).Result()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("symbol", quote.Symbol))
		return err
	}

	slog.Debug("SetQuote completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetQuote(ctx context.Context, symbol string) (model.StockQuote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetQuote start", slog.String("rqID", rqID), slog.String("symbol", symbol))

	res, err := r.redis.Get(ctx, quoteKey(symbol)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", quoteKey(symbol)))
		}
		return model.StockQuote{}, err
	}

	quote := model.StockQuote{}
	err = json.Unmarshal([]byte(res), &quote)
	if err != nil {
		slog.Error(
			"can't unmarshal quote in GetQuote",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return model.StockQuote{}, errors.New("can't unmarshal quote")
	}

	slog.Debug("GetQuote completed", slog.String("rqID", rqID))

	return quote, nil
}

func (r *RedisCache) SetChart(ctx context.Context, symbol, lookback string, points []model.PricePoint) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetChart start", slog.String("rqID", rqID), slog.String("symbol", symbol), slog.String("lookback", lookback))

	chartJson, err := json.Marshal(points)
	if err != nil {
		slog.Error(
			"can't marshal chart in SetChart",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("symbol", symbol),
		)
		return errors.New("can't marshal chart")
	}

	_, err = r.redis.Set(ctx, chartKey(symbol, lookback), chartJson, r.cfg.Cache.ChartsExpiration).Result()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", chartKey(symbol, lookback)))
		return err
	}

	slog.Debug("SetChart completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetChart(ctx context.Context, symbol, lookback string) ([]model.PricePoint, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetChart start", slog.String("rqID", rqID), slog.String("symbol", symbol), slog.String("lookback", lookback))

	res, err := r.redis.Get(ctx, chartKey(symbol, lookback)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", chartKey(symbol, lookback)))
		}
		return nil, err
	}

	var points []model.PricePoint
	err = json.Unmarshal([]byte(res), &points)
	if err != nil {
		slog.Error(
			"can't unmarshal chart in GetChart",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return nil, errors.New("can't unmarshal chart")
	}

	slog.Debug("GetChart completed", slog.String("rqID", rqID))

	return points, nil
}
