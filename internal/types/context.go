package types

import "context"

type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
	CtxUserID    ContextKey = "ctx_user_id"
	CtxUserEmail ContextKey = "ctx_user_email"
)

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}

func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

func SetUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, CtxUserEmail, email)
}

func GetRequestID(ctx context.Context) string {
	return ctxValueString(ctx, CtxRequestID)
}

func GetUserID(ctx context.Context) string {
	return ctxValueString(ctx, CtxUserID)
}

func GetUserEmail(ctx context.Context) string {
	return ctxValueString(ctx, CtxUserEmail)
}

func ctxValueString(ctx context.Context, key ContextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
