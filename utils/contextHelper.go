package utils

import "context"

type contextKey string

const (
	userIdKey        contextKey = "UserId"
	userNameKey      contextKey = "UserName"
	roleKey          contextKey = "Role"
	correlationIdKey contextKey = "CorrelationId"
)

func contextString(ctx context.Context, key contextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok
}

func GetUserIdFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(userIdKey).(int)
	return v, ok
}

func GetUserNameFromContext(ctx context.Context) (string, bool) {
	return contextString(ctx, userNameKey)
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	return contextString(ctx, roleKey)
}

// GetCorrelationIdFromContext returns the id set by the correlation middleware or the export CLI.
func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return contextString(ctx, correlationIdKey)
}

func SetUserIdInContext(ctx context.Context, userId int) context.Context {
	return context.WithValue(ctx, userIdKey, userId)
}

func SetUserNameInContext(ctx context.Context, userName string) context.Context {
	return context.WithValue(ctx, userNameKey, userName)
}

func SetRoleInContext(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey, role)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return context.WithValue(ctx, correlationIdKey, correlationId)
}
