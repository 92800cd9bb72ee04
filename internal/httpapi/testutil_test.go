package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

func contextWithReqID(r *http.Request, id string) context.Context {
	return context.WithValue(r.Context(), middleware.RequestIDKey, id)
}
