package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type requestDataKey struct{}

// RequestData is attached by the auth middleware once a token has been verified.
type RequestData struct {
	StudentID   uuid.UUID
	SessionID   uuid.UUID
	Role        string
	TokenString string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// StudentID returns uuid.Nil when the context carries no authenticated student.
func StudentID(ctx context.Context) uuid.UUID {
	if rd := GetRequestData(ctx); rd != nil {
		return rd.StudentID
	}
	return uuid.Nil
}

func IsAdmin(ctx context.Context) bool {
	rd := GetRequestData(ctx)
	return rd != nil && rd.Role == "admin"
}
