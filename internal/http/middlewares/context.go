package middlewares

import (
	"context"

	jwtx "github.com/dropDatabas3/openfund/internal/jwt"
)

type ctxKey string

const (
	ctxUserIDKey    ctxKey = "user_id"
	ctxClaimsKey    ctxKey = "claims"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithUserID inyecta el user ID en el contexto.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, userID)
}

// GetUserID obtiene el user ID del contexto. Vacío si el middleware de
// auth no se aplicó.
func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxUserIDKey).(string); ok {
		return v
	}
	return ""
}

func withClaims(ctx context.Context, claims *jwtx.Claims) context.Context {
	return context.WithValue(ctx, ctxClaimsKey, claims)
}

// GetClaims obtiene los claims validados del contexto. Nil si no hay
// token validado.
func GetClaims(ctx context.Context) *jwtx.Claims {
	if v, ok := ctx.Value(ctxClaimsKey).(*jwtx.Claims); ok {
		return v
	}
	return nil
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetRequestID obtiene el request ID del contexto.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return v
	}
	return ""
}
