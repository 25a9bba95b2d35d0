package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/KotFed0t/stock_analyser/config"
	"github.com/KotFed0t/stock_analyser/internal/model"
	"github.com/KotFed0t/stock_analyser/utils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisSession struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisSession(redisClient *redis.Client, cfg *config.Config) *RedisSession {
	return &RedisSession{redis: redisClient, cfg: cfg}
}

func sessionKey(token string) string {
	return "session:" + token
}

// CreateSession stores the session under a fresh uuid token with the
// configured expiration and returns the token.
func (s *RedisSession) CreateSession(ctx context.Context, sess model.Session) (token string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("CreateSession start", slog.String("rqID", rqID), slog.String("username", sess.Username))

	token = uuid.NewString()

	err = s.setSession(ctx, token, sess)
	if err != nil {
		return "", err
	}

	slog.Debug("CreateSession completed", slog.String("rqID", rqID))

	return token, nil
}

func (s *RedisSession) SetSession(ctx context.Context, token string, sess model.Session) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetSession start", slog.String("rqID", rqID), slog.String("username", sess.Username))

	err := s.setSession(ctx, token, sess)
	if err != nil {
		return err
	}

	slog.Debug("SetSession completed", slog.String("rqID", rqID))

	return nil
}

func (s *RedisSession) setSession(ctx context.Context, token string, sess model.Session) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	sessJson, err := json.Marshal(sess)
	if err != nil {
		slog.Error("can't marshal session", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return errors.New("can't marshal session")
	}

	_, err = s.redis.Set(ctx, sessionKey(token), sessJson, s.cfg.SessionExpiration).Result()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	return nil
}

func (s *RedisSession) GetSession(ctx context.Context, token string) (model.Session, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetSession start", slog.String("rqID", rqID))

	res, err := s.redis.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Session{}, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.Session{}, err
	}

	sess := model.Session{}
	err = json.Unmarshal([]byte(res), &sess)
	if err != nil {
		slog.Error(
			"can't unmarshal session",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return model.Session{}, errors.New("can't unmarshal session")
	}

	slog.Debug("GetSession completed", slog.String("rqID", rqID))

	return sess, nil
}

func (s *RedisSession) DeleteSession(ctx context.Context, token string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("DeleteSession start", slog.String("rqID", rqID))

	_, err := s.redis.Del(ctx, sessionKey(token)).Result()
	if err != nil {
		slog.Error("failed on redis.Del", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("DeleteSession completed", slog.String("rqID", rqID))

	return nil
}
