// internal/handlers/claim.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/insurance-solutions/vims-backend/internal/models"
	"github.com/insurance-solutions/vims-backend/internal/services"
	"github.com/insurance-solutions/vims-backend/internal/utils"
)

type ClaimHandler struct {
	claimService   *services.ClaimService
	storageService *services.StorageService
}

func NewClaimHandler(claimService *services.ClaimService, storageService *services.StorageService) *ClaimHandler {
	return &ClaimHandler{
		claimService:   claimService,
		storageService: storageService,
	}
}

// POST /claims
func (h *ClaimHandler) RegisterClaim(c *gin.Context) {
	var req services.RegisterClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	claim, err := h.claimService.RegisterClaim(&req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, claim)
}

// GET /claims/:id
func (h *ClaimHandler) GetClaim(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	claim, err := h.claimService.GetClaim(id)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, claim)
}

// GET /claims
func (h *ClaimHandler) ListClaims(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := services.ClaimListFilter{
		Status:    models.ClaimStatus(c.Query("status")),
		FraudOnly: c.Query("fraud") == "true",
	}
	if raw := c.Query("policy_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid policy_id", nil)
			return
		}
		filter.PolicyID = &parsed
	}
	if c.Query("assigned_to_me") == "true" {
		userID, _, ok := actor(c)
		if !ok {
			return
		}
		filter.AssignedTo = &userID
	}

	claims, total, err := h.claimService.ListClaims(params, filter)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(claims, total, params))
}

// POST /claims/:id/evidence
func (h *ClaimHandler) UploadEvidence(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "No file uploaded", nil)
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadFile(file, header, services.UploadOptions{
		Folder:       "claim-evidence",
		MaxSize:      20 * 1024 * 1024, // 20MB
		AllowedTypes: []string{".pdf", ".jpg", ".jpeg", ".png", ".mp4"},
	})
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	claim, err := h.claimService.AddEvidence(id, result.URL)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"claim":  claim,
		"upload": result,
	})
}

// POST /claims/:id/assign-survey
func (h *ClaimHandler) AssignSurvey(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	_, role, ok := actor(c)
	if !ok {
		return
	}

	var req struct {
		SurveyorID uuid.UUID `json:"surveyor_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	claim, err := h.claimService.AssignSurvey(id, req.SurveyorID, role)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, claim)
}

// POST /claims/bulk-assign-survey
func (h *ClaimHandler) BulkAssignSurveys(c *gin.Context) {
	_, role, ok := actor(c)
	if !ok {
		return
	}

	var req struct {
		ClaimIDs   []uuid.UUID `json:"claim_ids" binding:"required,min=1"`
		SurveyorID uuid.UUID   `json:"surveyor_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	results := h.claimService.BulkAssignSurveys(req.ClaimIDs, req.SurveyorID, role)
	utils.SuccessResponse(c, results)
}

// POST /claims/:id/survey
func (h *ClaimHandler) SubmitSurvey(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	userID, role, ok := actor(c)
	if !ok {
		return
	}

	var req services.SubmitSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	claim, err := h.claimService.SubmitSurvey(id, userID, role, &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, claim)
}

// POST /claims/:id/assign-verification
func (h *ClaimHandler) AssignVerification(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	_, role, ok := actor(c)
	if !ok {
		return
	}

	var req struct {
		AgentID uuid.UUID `json:"agent_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	claim, err := h.claimService.AssignVerification(id, req.AgentID, role)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, claim)
}

// POST /claims/bulk-assign-verification
func (h *ClaimHandler) BulkAssignVerifications(c *gin.Context) {
	_, role, ok := actor(c)
	if !ok {
		return
	}

	var req struct {
		ClaimIDs []uuid.UUID `json:"claim_ids" binding:"required,min=1"`
		AgentID  uuid.UUID   `json:"agent_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	results := h.claimService.BulkAssignVerifications(req.ClaimIDs, req.AgentID, role)
	utils.SuccessResponse(c, results)
}

// POST /claims/:id/verification
func (h *ClaimHandler) SubmitVerification(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	userID, role, ok := actor(c)
	if !ok {
		return
	}

	var req services.SubmitVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	claim, err := h.claimService.SubmitVerification(id, userID, role, &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, claim)
}

// POST /claims/:id/approve
func (h *ClaimHandler) Approve(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	userID, role, ok := actor(c)
	if !ok {
		return
	}

	var req services.ApproveClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	claim, err := h.claimService.Approve(id, userID, role, &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, claim)
}

// POST /claims/:id/reject
func (h *ClaimHandler) Reject(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	userID, role, ok := actor(c)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "A rejection reason is required", err.Error())
		return
	}

	claim, err := h.claimService.Reject(id, userID, role, req.Reason)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, claim)
}

// POST /claims/:id/settle
func (h *ClaimHandler) Settle(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	userID, role, ok := actor(c)
	if !ok {
		return
	}

	var req struct {
		Remarks string `json:"remarks,omitempty"`
	}
	c.ShouldBindJSON(&req)

	claim, err := h.claimService.Settle(id, userID, role, req.Remarks)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, claim)
}

// GET /claims/stats
func (h *ClaimHandler) GetStats(c *gin.Context) {
	stats, err := h.claimService.GetStats()
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}
