package http

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/google/uuid"
)

// InitDataMiddleware hands the host's init payload, when the view sends
// one, to the API client so backend calls are made as this user.
func InitDataMiddleware(token *api.SessionToken) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if initData := r.Header.Get(api.HeaderInitData); initData != "" && initData != token.Token() {
				token.Set(initData)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(api.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := api.WithRequestID(r.Context(), requestID)
		w.Header().Set(api.HeaderRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getRequestID(ctx context.Context) string {
	return api.RequestIDFromContext(ctx)
}
