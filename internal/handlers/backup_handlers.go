package handlers

import (
	"net/http"

	"fleetgov/internal/common"
	"fleetgov/internal/models"
	"fleetgov/internal/services"

	"github.com/labstack/echo/v4"
)

// BackupHandlers exposes manual backup runs and the catalog.
type BackupHandlers struct {
	backupSvc services.BackupService
}

func NewBackupHandlers(backupSvc services.BackupService) *BackupHandlers {
	return &BackupHandlers{backupSvc: backupSvc}
}

// RunBackup handles POST /backups/run. Unlike the scheduled path, failures
// surface to the caller, who can act on them.
func (h *BackupHandlers) RunBackup(c echo.Context) error {
	ctx := c.Request().Context()

	record, err := h.backupSvc.Run(ctx, models.BackupKindManual, common.UserIDFromContext(ctx))
	if err != nil {
		return c.JSON(common.HTTPStatus(err), common.CreateErrorResponse(common.ErrorCode(err), err.Error(), nil))
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"backup_id": record.ID,
		"location":  record.StorageLocation,
		"status":    record.Status,
	})
}

// ListBackups handles GET /backups
func (h *BackupHandlers) ListBackups(c echo.Context) error {
	limit, offset := paginationParams(c)
	records, err := h.backupSvc.List(c.Request().Context(), limit, offset)
	if err != nil {
		return c.JSON(common.HTTPStatus(err), common.CreateErrorResponse(common.ErrorCode(err), err.Error(), nil))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"backups": records})
}

// GetBackup handles GET /backups/:id
func (h *BackupHandlers) GetBackup(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	record, err := h.backupSvc.Get(c.Request().Context(), id)
	if err != nil {
		return common.SendNotFoundError(c, "Backup")
	}
	return c.JSON(http.StatusOK, record)
}
