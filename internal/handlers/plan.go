// internal/handlers/plan.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/insurance-solutions/vims-backend/internal/premium"
	"github.com/insurance-solutions/vims-backend/internal/services"
	"github.com/insurance-solutions/vims-backend/internal/utils"
)

type PlanHandler struct {
	planService *services.PlanService
}

func NewPlanHandler(planService *services.PlanService) *PlanHandler {
	return &PlanHandler{
		planService: planService,
	}
}

// POST /plans
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req services.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	plan, err := h.planService.CreatePlan(&req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, plan)
}

// GET /plans/:id
func (h *PlanHandler) GetPlan(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	plan, err := h.planService.GetPlan(id)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, plan)
}

// GET /plans
func (h *PlanHandler) ListPlans(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	activeOnly := c.DefaultQuery("active", "true") == "true"

	plans, total, err := h.planService.ListPlans(params, activeOnly)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(plans, total, params))
}

// PUT /plans/:id
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	plan, err := h.planService.UpdatePlan(id, &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, plan)
}

// POST /plans/:id/quote
func (h *PlanHandler) QuotePremium(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req premium.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	breakdown, err := h.planService.QuotePremium(id, req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, breakdown)
}
