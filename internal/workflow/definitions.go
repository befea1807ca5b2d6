// internal/workflow/definitions.go
package workflow

import (
	"github.com/insurance-solutions/vims-backend/internal/models"
)

// Proposal actions
const (
	ActionSubmit      = "submit"
	ActionStartReview = "start_review"
	ActionApprove     = "approve"
	ActionReject      = "reject"
)

// Claim actions
const (
	ActionAssignSurvey       = "assign_survey"
	ActionCompleteSurvey     = "complete_survey"
	ActionAssignVerification = "assign_verification"
	ActionVerify             = "verify"
	ActionSettle             = "settle"
)

// Proposal: Draft → Submitted → Underwriting → Approved | Rejected.
var Proposal = &Definition{
	Name:    "proposal",
	Version: 1,
	Terminal: map[string]bool{
		string(models.ProposalStatusApproved): true,
		string(models.ProposalStatusRejected): true,
	},
	Transitions: []Transition{
		{
			From:    string(models.ProposalStatusDraft),
			Action:  ActionSubmit,
			To:      string(models.ProposalStatusSubmitted),
			Allowed: []models.UserRole{models.RoleAgent},
		},
		{
			From:    string(models.ProposalStatusSubmitted),
			Action:  ActionStartReview,
			To:      string(models.ProposalStatusUnderwriting),
			Allowed: []models.UserRole{models.RoleUnderwriter},
		},
		{
			From:    string(models.ProposalStatusUnderwriting),
			Action:  ActionApprove,
			To:      string(models.ProposalStatusApproved),
			Allowed: []models.UserRole{models.RoleUnderwriter},
		},
		{
			From:    string(models.ProposalStatusUnderwriting),
			Action:  ActionReject,
			To:      string(models.ProposalStatusRejected),
			Allowed: []models.UserRole{models.RoleUnderwriter},
		},
	},
}

// Claim: Reported → Survey Assigned → Survey Completed → Verification
// Assigned → Agent Verified → Approved | Rejected → Settled, with an officer
// override from Survey Completed straight to Approved or Rejected.
var Claim = &Definition{
	Name:    "claim",
	Version: 1,
	Terminal: map[string]bool{
		string(models.ClaimStatusRejected): true,
		string(models.ClaimStatusSettled):  true,
	},
	Transitions: []Transition{
		{
			From:    string(models.ClaimStatusReported),
			Action:  ActionAssignSurvey,
			To:      string(models.ClaimStatusSurveyAssigned),
			Allowed: []models.UserRole{models.RoleClaimsOfficer},
		},
		{
			From:    string(models.ClaimStatusSurveyAssigned),
			Action:  ActionCompleteSurvey,
			To:      string(models.ClaimStatusSurveyCompleted),
			Allowed: []models.UserRole{models.RoleSurveyor},
		},
		{
			From:    string(models.ClaimStatusSurveyCompleted),
			Action:  ActionAssignVerification,
			To:      string(models.ClaimStatusVerificationAssigned),
			Allowed: []models.UserRole{models.RoleClaimsOfficer},
		},
		{
			From:    string(models.ClaimStatusVerificationAssigned),
			Action:  ActionVerify,
			To:      string(models.ClaimStatusAgentVerified),
			Allowed: []models.UserRole{models.RoleVerificationAgent},
		},
		{
			From:    string(models.ClaimStatusAgentVerified),
			Action:  ActionApprove,
			To:      string(models.ClaimStatusApproved),
			Allowed: []models.UserRole{models.RoleClaimsOfficer},
		},
		{
			From:    string(models.ClaimStatusAgentVerified),
			Action:  ActionReject,
			To:      string(models.ClaimStatusRejected),
			Allowed: []models.UserRole{models.RoleClaimsOfficer},
		},
		// Officer override: decide directly after survey, skipping verification
		{
			From:    string(models.ClaimStatusSurveyCompleted),
			Action:  ActionApprove,
			To:      string(models.ClaimStatusApproved),
			Allowed: []models.UserRole{models.RoleClaimsOfficer},
		},
		{
			From:    string(models.ClaimStatusSurveyCompleted),
			Action:  ActionReject,
			To:      string(models.ClaimStatusRejected),
			Allowed: []models.UserRole{models.RoleClaimsOfficer},
		},
		{
			From:    string(models.ClaimStatusApproved),
			Action:  ActionSettle,
			To:      string(models.ClaimStatusSettled),
			Allowed: []models.UserRole{models.RoleFinance},
		},
	},
}
