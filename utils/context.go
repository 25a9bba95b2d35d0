package utils

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type rqIDKey struct{}

func GetRequestIDFromCtx(ctx context.Context) string {
	rqID, ok := ctx.Value(rqIDKey{}).(string)
	if !ok {
		return ""
	}
	return rqID
}

// CreateBackgroundCtxWithRqID is for scheduler jobs and other flows that
// start outside an HTTP request.
func CreateBackgroundCtxWithRqID() context.Context {
	return context.WithValue(context.Background(), rqIDKey{}, uuid.NewString())
}

func CreateCtxWithRqID(c *gin.Context) context.Context {
	rqID, ok := c.Value("rqID").(string)
	if !ok {
		return context.WithValue(c.Request.Context(), rqIDKey{}, uuid.NewString())
	}
	return context.WithValue(c.Request.Context(), rqIDKey{}, rqID)
}
