package handlers

import (
	"net/http"
	"strconv"

	"fleetgov/internal/common"
	"fleetgov/internal/models"
	"fleetgov/internal/services"

	"github.com/labstack/echo/v4"
)

// DrHandlers exposes the DR validation and promotion pipeline.
type DrHandlers struct {
	drSvc services.DrService
}

func NewDrHandlers(drSvc services.DrService) *DrHandlers {
	return &DrHandlers{drSvc: drSvc}
}

// RunSimulation handles POST /dr/simulations
func (h *DrHandlers) RunSimulation(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Type     string `json:"type"`
		BackupID string `json:"backup_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Type == "" {
		req.Type = models.DrKindBackupRestore
	}

	backupID, err := common.ValidateUUID(req.BackupID, "backup_id")
	if err != nil {
		return common.SendValidationError(c, "backup_id", err.Error())
	}

	sim, err := h.drSvc.RunSimulation(ctx, req.Type, backupID, common.UserIDFromContext(ctx))
	if err != nil {
		return c.JSON(common.HTTPStatus(err), common.CreateErrorResponse(common.ErrorCode(err), err.Error(), nil))
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"simulation_id": sim.ID,
		"status":        sim.Status,
		"rto_seconds":   sim.RtoSeconds,
	})
}

// PromoteSandboxToProd handles POST /dr/promote
func (h *DrHandlers) PromoteSandboxToProd(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		BackupID string `json:"backup_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	backupID, err := common.ValidateUUID(req.BackupID, "backup_id")
	if err != nil {
		return common.SendValidationError(c, "backup_id", err.Error())
	}

	sim, err := h.drSvc.Promote(ctx, backupID, common.UserIDFromContext(ctx))
	if err != nil {
		return c.JSON(common.HTTPStatus(err), common.CreateErrorResponse(common.ErrorCode(err), err.Error(), nil))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"promoted":      true,
		"simulation_id": sim.ID,
	})
}

// DirectRestore handles POST /dr/restore-direct, the legacy path that skips
// validation. Routed only when the deployment explicitly enables it.
func (h *DrHandlers) DirectRestore(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		BackupID string `json:"backup_id"`
		Confirm  string `json:"confirm"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	backupID, err := common.ValidateUUID(req.BackupID, "backup_id")
	if err != nil {
		return common.SendValidationError(c, "backup_id", err.Error())
	}

	if err := h.drSvc.DirectRestore(ctx, backupID, common.UserIDFromContext(ctx), req.Confirm); err != nil {
		return c.JSON(common.HTTPStatus(err), common.CreateErrorResponse(common.ErrorCode(err), err.Error(), nil))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"restored": true})
}

// ListSimulations handles GET /dr/simulations
func (h *DrHandlers) ListSimulations(c echo.Context) error {
	limit, offset := paginationParams(c)
	sims, err := h.drSvc.ListSimulations(c.Request().Context(), limit, offset)
	if err != nil {
		return c.JSON(common.HTTPStatus(err), common.CreateErrorResponse(common.ErrorCode(err), err.Error(), nil))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"simulations": sims})
}

// ListReports handles GET /dr/reports
func (h *DrHandlers) ListReports(c echo.Context) error {
	limit, offset := paginationParams(c)
	reports, err := h.drSvc.ListReports(c.Request().Context(), limit, offset)
	if err != nil {
		return c.JSON(common.HTTPStatus(err), common.CreateErrorResponse(common.ErrorCode(err), err.Error(), nil))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"reports": reports})
}

func paginationParams(c echo.Context) (int, int) {
	limit := 50
	offset := 0
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 {
			limit = l
		}
	}
	if offsetParam := c.QueryParam("offset"); offsetParam != "" {
		if o, err := strconv.Atoi(offsetParam); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}
