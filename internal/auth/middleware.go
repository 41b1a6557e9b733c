package auth

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/salud-red/appointment-service/internal/identity"
	"github.com/salud-red/appointment-service/internal/respond"
	"github.com/salud-red/appointment-service/internal/store"
)

var tracer = otel.Tracer("github.com/salud-red/appointment-service/auth")

// TokenVerifier verifies a bearer token and returns its claims.
type TokenVerifier interface {
	VerifyIDToken(tokenString string) (*identity.TokenClaims, error)
}

// UserResolver maps a provider-assigned subject id to the domain user.
// *store.Records satisfies it.
type UserResolver interface {
	GetUserByFirebaseUID(ctx context.Context, uid string) (*store.User, error)
}

// MetricsRecorder interface for recording auth metrics
type MetricsRecorder interface {
	RecordAuthFailure(ctx context.Context, reason string)
}

// Middleware runs the bearer authentication chain: extract token, verify
// with the identity provider, resolve the domain user, enforce the
// active-account check, then attach the user to the request context.
// Every attempt is stateless and independent; nothing is retried.
func Middleware(ver TokenVerifier, users UserResolver) func(http.Handler) http.Handler {
	return MiddlewareWithMetrics(ver, users, nil)
}

// MiddlewareWithMetrics is Middleware with auth-failure metrics recording.
func MiddlewareWithMetrics(ver TokenVerifier, users UserResolver, metrics MetricsRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx, span := tracer.Start(ctx, "auth.Middleware",
				trace.WithSpanKind(trace.SpanKindInternal),
			)
			defer span.End()

			authz := r.Header.Get("Authorization")
			if authz == "" {
				failSpan(span, "missing_authorization")
				if metrics != nil {
					metrics.RecordAuthFailure(ctx, "missing_authorization")
				}
				respond.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				failSpan(span, "invalid_header_format")
				if metrics != nil {
					metrics.RecordAuthFailure(ctx, "invalid_header_format")
				}
				respond.Error(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			claims, err := ver.VerifyIDToken(parts[1])
			if err != nil {
				log.Printf("[ERROR] Token verification failed: %v", err)
				failSpan(span, "invalid_token")
				span.SetAttributes(attribute.String("error.message", err.Error()))
				if metrics != nil {
					metrics.RecordAuthFailure(ctx, "invalid_token")
				}
				respond.Error(w, http.StatusUnauthorized, err.Error())
				return
			}

			user, err := users.GetUserByFirebaseUID(ctx, claims.UID)
			if err != nil || user == nil {
				failSpan(span, "user_not_found")
				if metrics != nil {
					metrics.RecordAuthFailure(ctx, "user_not_found")
				}
				respond.Error(w, http.StatusNotFound, "user not found")
				return
			}

			if !user.IsActive {
				failSpan(span, "account_deactivated")
				if metrics != nil {
					metrics.RecordAuthFailure(ctx, "account_deactivated")
				}
				respond.Error(w, http.StatusForbidden, "account is deactivated")
				return
			}

			span.SetAttributes(
				attribute.String("user.id", user.ID),
				attribute.String("user.email", user.Email),
				attribute.String("user.role", user.Role),
			)
			span.SetStatus(codes.Ok, "authentication successful")

			ctx = context.WithValue(ctx, userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles enforces a per-route role allowlist. An empty list allows
// any authenticated user.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx, span := tracer.Start(ctx, "auth.RequireRoles",
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attribute.StringSlice("roles.required", roles)),
			)
			defer span.End()

			user, ok := FromContext(ctx)
			if !ok {
				span.SetStatus(codes.Error, "unauthenticated")
				respond.Error(w, http.StatusUnauthorized, "unauthenticated")
				return
			}

			if len(roles) > 0 && !hasRole(user.Role, roles) {
				log.Printf("[ROLE DENIED] User: %s, Role: %s, Required: %v", user.ID, user.Role, roles)
				span.SetStatus(codes.Error, "forbidden")
				span.SetAttributes(attribute.String("user.role", user.Role))
				respond.Error(w, http.StatusForbidden,
					fmt.Sprintf("access denied: requires one of roles [%s], your role is %s",
						strings.Join(roles, ", "), user.Role))
				return
			}

			span.SetStatus(codes.Ok, "role allowed")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hasRole(role string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(a, role) {
			return true
		}
	}
	return false
}

func failSpan(span trace.Span, reason string) {
	span.SetStatus(codes.Error, reason)
	span.SetAttributes(attribute.String("error.type", reason))
}
