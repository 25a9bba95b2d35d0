package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/KotFed0t/stock_analyser/data/session"
	"github.com/KotFed0t/stock_analyser/internal/model"
	"github.com/KotFed0t/stock_analyser/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Session interface {
	GetSession(ctx context.Context, token string) (model.Session, error)
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()

		rqID := uuid.NewString()
		c.Set("rqID", rqID)

		slog.Info(
			"start request",
			slog.String("rqID", rqID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
		)

		defer func() {
			slog.Info(
				"request finished",
				slog.String("rqID", rqID),
				slog.Int("status", c.Writer.Status()),
				slog.String("request duration", fmt.Sprintf("%.2fs", time.Since(now).Seconds())),
			)
		}()

		c.Next()
	}
}

// Auth resolves the bearer token into a session and aborts with 401 when it
// is absent or expired. Handlers downstream read "session" and
// "sessionToken" from the gin context.
func Auth(sessionStore Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := utils.CreateCtxWithRqID(c)
		rqID := utils.GetRequestIDFromCtx(ctx)

		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		sess, err := sessionStore.GetSession(ctx, token)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				slog.Error("got error from session.GetSession", slog.String("rqID", rqID), slog.String("err", err.Error()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired or invalid"})
			return
		}

		c.Set("session", sess)
		c.Set("sessionToken", token)

		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return c.GetHeader("X-Session-Token")
}
