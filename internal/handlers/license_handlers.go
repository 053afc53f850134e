package handlers

import (
	"net/http"
	"time"

	"fleetgov/internal/common"
	"fleetgov/internal/services"

	"github.com/labstack/echo/v4"
)

// LicenseHandlers exposes the license governance operations.
type LicenseHandlers struct {
	licenseSvc services.LicenseService
}

func NewLicenseHandlers(licenseSvc services.LicenseService) *LicenseHandlers {
	return &LicenseHandlers{licenseSvc: licenseSvc}
}

// GrantLicense handles POST /licenses/grant
func (h *LicenseHandlers) GrantLicense(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		TenantID      string  `json:"tenant_id"`
		Plan          string  `json:"plan"`
		DurationDays  int     `json:"duration_days"`
		ProcessNumber *string `json:"process_number"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	tenantID, err := common.ValidateUUID(req.TenantID, "tenant_id")
	if err != nil {
		return common.SendValidationError(c, "tenant_id", err.Error())
	}

	license, err := h.licenseSvc.Grant(ctx, tenantID, req.Plan, req.DurationDays, req.ProcessNumber, common.UserIDFromContext(ctx))
	if err != nil {
		return c.JSON(common.HTTPStatus(err), common.CreateErrorResponse(common.ErrorCode(err), err.Error(), nil))
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"license_id": license.ID,
		"expires_at": license.ExpiresAt.Format(time.RFC3339),
	})
}

// CreateTrialLicense handles POST /licenses/trial (system-only)
func (h *LicenseHandlers) CreateTrialLicense(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		TenantID string `json:"tenant_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	tenantID, err := common.ValidateUUID(req.TenantID, "tenant_id")
	if err != nil {
		return common.SendValidationError(c, "tenant_id", err.Error())
	}

	license, err := h.licenseSvc.CreateTrial(ctx, tenantID)
	if err != nil {
		return c.JSON(common.HTTPStatus(err), common.CreateErrorResponse(common.ErrorCode(err), err.Error(), nil))
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"license_id": license.ID,
		"expires_at": license.ExpiresAt.Format(time.RFC3339),
	})
}

// GetActiveLicense handles GET /licenses/:tenant_id/active
func (h *LicenseHandlers) GetActiveLicense(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := common.ValidateUUID(c.Param("tenant_id"), "tenant_id")
	if err != nil {
		return common.SendValidationError(c, "tenant_id", err.Error())
	}

	license, err := h.licenseSvc.GetActive(ctx, tenantID)
	if err != nil {
		return c.JSON(common.HTTPStatus(err), common.CreateErrorResponse(common.ErrorCode(err), err.Error(), nil))
	}

	return c.JSON(http.StatusOK, license)
}
