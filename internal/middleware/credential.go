package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const CredentialKey contextKey = "credential"

const APIKeyHeader = "X-API-Key"

// Credential attaches the caller's provider key to the context. It reads
// X-API-Key first and falls back to "Authorization: Bearer". A missing key
// is not rejected here; generation reports it.
func Credential(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), CredentialKey, CredentialFromRequest(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func CredentialFromRequest(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(APIKeyHeader)); key != "" {
		return key
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// GetCredential extracts the credential from request context
func GetCredential(ctx context.Context) string {
	key, _ := ctx.Value(CredentialKey).(string)
	return key
}
