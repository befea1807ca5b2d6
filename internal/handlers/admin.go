// internal/handlers/admin.go
package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/insurance-solutions/vims-backend/internal/models"
	"github.com/insurance-solutions/vims-backend/internal/services"
	"github.com/insurance-solutions/vims-backend/internal/utils"
)

type AdminHandler struct {
	db             *gorm.DB
	renewalService *services.RenewalService
	policyService  *services.PolicyService
}

func NewAdminHandler(db *gorm.DB, renewalService *services.RenewalService, policyService *services.PolicyService) *AdminHandler {
	return &AdminHandler{
		db:             db,
		renewalService: renewalService,
		policyService:  policyService,
	}
}

// POST /admin/renewals/run — manual trigger for the daily sweep
func (h *AdminHandler) RunRenewalSweep(c *gin.Context) {
	result, err := h.renewalService.RunSweep(time.Now())
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// POST /admin/policies/expire — manual trigger for the expiry pass
func (h *AdminHandler) RunExpiryPass(c *gin.Context) {
	expired, err := h.policyService.MarkExpired(time.Now())
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"expired": expired})
}

// GET /admin/audit-logs
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	query := h.db.Model(&models.AuditLog{})
	if resourceType := c.Query("resource_type"); resourceType != "" {
		query = query.Where("resource_type = ?", resourceType)
	}
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalErrorResponse(c, fmt.Sprintf("failed to count audit logs: %v", err))
		return
	}

	query = utils.ApplySort(query, params, []string{"created_at"})
	query = utils.ApplyPagination(query, params)

	var logs []models.AuditLog
	if err := query.Find(&logs).Error; err != nil {
		utils.InternalErrorResponse(c, fmt.Sprintf("failed to fetch audit logs: %v", err))
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(logs, total, params))
}
