package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/vendora/vendora/internal/domain"
	"github.com/vendora/vendora/internal/service"
	"github.com/vendora/vendora/pkg/auth"
	"github.com/vendora/vendora/pkg/config"
	"github.com/vendora/vendora/pkg/logger"
)

type Handlers struct {
	authService    service.AuthService
	productService service.ProductService
	catalogService service.CatalogService
	config         *config.Config
}

func New(
	authService service.AuthService,
	productService service.ProductService,
	catalogService service.CatalogService,
	config *config.Config,
) *Handlers {
	return &Handlers{
		authService:    authService,
		productService: productService,
		catalogService: catalogService,
		config:         config,
	}
}

type claimsKey struct{}

// RequireAuth validates the bearer token and optionally pins a role.
func (h *Handlers) RequireAuth(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "Authentication failed: No token provided", "UNAUTHORIZED")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := auth.Parse(token, h.config.Auth.JWTSecret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Authentication failed: Invalid token", "INVALID_TOKEN")
				return
			}

			if requiredRole != "" && claims.Role != requiredRole {
				writeError(w, http.StatusForbidden, "Access denied: Only vendors can perform this action", "FORBIDDEN")
				return
			}

			ctx := context.WithValue(r.Context(), logger.UserIDKey, claims.Sub)
			ctx = context.WithValue(ctx, claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Helper functions
func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey{}).(*auth.Claims); ok {
		return claims
	}
	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message, code string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
		"code":  code,
	})
}

// WriteError is exposed for middleware that lives outside this package.
func WriteError(w http.ResponseWriter, statusCode int, message, code string) {
	writeError(w, statusCode, message, code)
}

// writeServiceError maps sentinel service errors onto the HTTP taxonomy.
// Unclassified errors become a generic 500 and are logged server-side only.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusBadRequest, err.Error(), "ALREADY_EXISTS")
	case errors.Is(err, domain.ErrInvalidOTP), errors.Is(err, domain.ErrExpiredOTP):
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_OTP")
	case errors.Is(err, domain.ErrAlreadyVerified):
		writeError(w, http.StatusBadRequest, err.Error(), "ALREADY_VERIFIED")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, domain.ErrNotVerified):
		writeError(w, http.StatusForbidden, err.Error(), "NOT_VERIFIED")
	case errors.Is(err, domain.ErrInvalidToken):
		writeError(w, http.StatusForbidden, err.Error(), "INVALID_TOKEN")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, domain.ErrMailDelivery):
		writeError(w, http.StatusInternalServerError, err.Error(), "MAIL_DELIVERY_FAILED")
	default:
		logger.ErrorContext(r.Context(), "Unhandled service error", "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "Server error", "INTERNAL_ERROR")
	}
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
