package handlers

import (
	"net/http"
	"time"

	"fleetgov/internal/common"
	"fleetgov/internal/models"
	"fleetgov/internal/services"

	"github.com/labstack/echo/v4"
)

// AuditLogsHandlers exposes the compliance-review query surface. There is no
// write endpoint: entries only appear as part of state-changing operations.
type AuditLogsHandlers struct {
	auditSvc services.AuditLogsService
}

func NewAuditLogsHandlers(auditSvc services.AuditLogsService) *AuditLogsHandlers {
	return &AuditLogsHandlers{auditSvc: auditSvc}
}

// ListAuditLogs handles GET /audit-logs
func (h *AuditLogsHandlers) ListAuditLogs(c echo.Context) error {
	ctx := c.Request().Context()

	filters := &models.AuditLogFilters{}
	limit, offset := paginationParams(c)
	filters.Limit = limit
	filters.Offset = offset

	if tenantParam := c.QueryParam("tenant_id"); tenantParam != "" {
		tenantID, err := common.ValidateUUID(tenantParam, "tenant_id")
		if err != nil {
			return common.SendValidationError(c, "tenant_id", err.Error())
		}
		filters.TenantID = &tenantID
	}
	if action := c.QueryParam("action"); action != "" {
		filters.Action = &action
	}
	if entity := c.QueryParam("entity"); entity != "" {
		filters.Entity = &entity
	}
	if startParam := c.QueryParam("start_date"); startParam != "" {
		start, err := time.Parse(time.RFC3339, startParam)
		if err != nil {
			return common.SendValidationError(c, "start_date", "must be RFC3339")
		}
		filters.StartDate = &start
	}
	if endParam := c.QueryParam("end_date"); endParam != "" {
		end, err := time.Parse(time.RFC3339, endParam)
		if err != nil {
			return common.SendValidationError(c, "end_date", "must be RFC3339")
		}
		filters.EndDate = &end
	}

	entries, err := h.auditSvc.List(ctx, filters)
	if err != nil {
		return c.JSON(common.HTTPStatus(err), common.CreateErrorResponse(common.ErrorCode(err), err.Error(), nil))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"audit_logs": entries,
		"limit":      filters.Limit,
		"offset":     filters.Offset,
	})
}
