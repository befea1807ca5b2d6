// internal/handlers/proposal.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/insurance-solutions/vims-backend/internal/models"
	"github.com/insurance-solutions/vims-backend/internal/services"
	"github.com/insurance-solutions/vims-backend/internal/utils"
)

type ProposalHandler struct {
	proposalService *services.ProposalService
	policyService   *services.PolicyService
}

func NewProposalHandler(proposalService *services.ProposalService, policyService *services.PolicyService) *ProposalHandler {
	return &ProposalHandler{
		proposalService: proposalService,
		policyService:   policyService,
	}
}

// POST /proposals
func (h *ProposalHandler) CreateProposal(c *gin.Context) {
	var req services.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	proposal, err := h.proposalService.CreateProposal(&req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, proposal)
}

// GET /proposals/:id
func (h *ProposalHandler) GetProposal(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	proposal, err := h.proposalService.GetProposal(id)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, proposal)
}

// GET /proposals
func (h *ProposalHandler) ListProposals(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	status := models.ProposalStatus(c.Query("status"))

	proposals, total, err := h.proposalService.ListProposals(params, status)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(proposals, total, params))
}

// PUT /proposals/:id
func (h *ProposalHandler) UpdateProposal(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	proposal, err := h.proposalService.UpdateProposal(id, &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, proposal)
}

// POST /proposals/:id/submit
func (h *ProposalHandler) Submit(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	_, role, ok := actor(c)
	if !ok {
		return
	}

	proposal, err := h.proposalService.Submit(id, role)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, proposal)
}

// POST /proposals/:id/review
func (h *ProposalHandler) StartReview(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	_, role, ok := actor(c)
	if !ok {
		return
	}

	proposal, err := h.proposalService.StartReview(id, role)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, proposal)
}

// POST /proposals/:id/approve
func (h *ProposalHandler) Approve(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	userID, role, ok := actor(c)
	if !ok {
		return
	}

	proposal, err := h.proposalService.Approve(id, userID, role)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, proposal)
}

// POST /proposals/:id/reject
func (h *ProposalHandler) Reject(c *gin.Context) {
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

	proposal, err := h.proposalService.Reject(id, userID, role, req.Reason)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, proposal)
}

// POST /proposals/:id/convert
func (h *ProposalHandler) ConvertToPolicy(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Nominee string `json:"nominee,omitempty"`
	}
	c.ShouldBindJSON(&req)

	policy, err := h.policyService.IssueFromProposal(id, req.Nominee)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, policy)
}
