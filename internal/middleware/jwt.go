package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fleetgov/internal/caching"
	"fleetgov/internal/common"
	"fleetgov/internal/repositories"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// gateCacheTTL bounds how long a restricted tenant can keep writing after a
// license transition if a cache invalidation was missed.
const gateCacheTTL = 5 * time.Minute

// JWTCustomClaims carries the identity and capability flags issued by the
// external auth layer. This core trusts them; it never issues them.
type JWTCustomClaims struct {
	UserID     uuid.UUID `json:"user_id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	SuperAdmin bool      `json:"super_admin"`
	System     bool      `json:"system"`
	jwt.RegisteredClaims
}

// JWTConfig builds the echo-jwt configuration that validates tokens and
// copies the claims into the request context.
func JWTConfig(secret string) echojwt.Config {
	return echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JWTCustomClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*JWTCustomClaims)
			if !ok {
				return
			}
			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, common.UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, common.TenantIDKey, claims.TenantID)
			ctx = context.WithValue(ctx, common.SuperAdminKey, claims.SuperAdmin)
			ctx = context.WithValue(ctx, common.SystemKey, claims.System)
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
}

// RequireSuperAdmin rejects callers without the super_admin capability before
// any read happens.
func RequireSuperAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !common.IsSuperAdmin(c.Request().Context()) {
				return echo.NewHTTPError(http.StatusForbidden, "super_admin capability required")
			}
			return next(c)
		}
	}
}

// RequireSystem guards operations reserved for the provisioning flow, like
// trial creation.
func RequireSystem() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !common.IsSystemCaller(c.Request().Context()) {
				return echo.NewHTTPError(http.StatusForbidden, "system caller required")
			}
			return next(c)
		}
	}
}

// RequireActiveTenant enforces the derived write gate: a tenant whose license
// lapsed is read-only. The gate is served from cache, falling back to the
// ledger on a miss.
func RequireActiveTenant(gate caching.TenantGateCache, tenantRepo repositories.TenantRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			tenantID, ok := common.TenantIDFromContext(ctx)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Tenant not found")
			}

			active, err := gate.IsActive(ctx, tenantID)
			if err != nil {
				if !errors.Is(err, caching.ErrGateMiss) {
					// Cache trouble falls through to the ledger.
					c.Logger().Warnf("tenant gate cache error: %v", err)
				}
				tenant, lookupErr := tenantRepo.GetByID(ctx, tenantID)
				if lookupErr != nil {
					return echo.NewHTTPError(http.StatusUnauthorized, "Tenant not found")
				}
				active = tenant.Active
				_ = gate.SetActive(ctx, tenantID, active, gateCacheTTL)
			}

			if !active {
				return echo.NewHTTPError(http.StatusForbidden, "tenant license is not active")
			}
			return next(c)
		}
	}
}
