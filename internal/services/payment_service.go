// internal/services/payment_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"github.com/insurance-solutions/vims-backend/internal/apperrors"
	"github.com/insurance-solutions/vims-backend/internal/config"
	"github.com/insurance-solutions/vims-backend/internal/models"
)

// PaymentService is the Stripe wrapper in front of the policy ledger. It
// creates intents for the outstanding premium and feeds confirmed intents
// into ApplyPayment, which owns the actual money movement and stays
// idempotent on the intent ID.
type PaymentService struct {
	config   *config.Config
	policies *PolicyService
}

type PaymentIntentResponse struct {
	ClientSecret string  `json:"client_secret"`
	PaymentID    string  `json:"payment_id"`
	Amount       float64 `json:"amount"`
	Status       string  `json:"status"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

func NewPaymentService(config *config.Config, policies *PolicyService) *PaymentService {
	stripe.Key = config.Payment.StripeSecretKey

	return &PaymentService{
		config:   config,
		policies: policies,
	}
}

// CreatePremiumIntent opens a Stripe payment intent for the policy's full
// outstanding amount.
func (s *PaymentService) CreatePremiumIntent(policyID uuid.UUID) (*PaymentIntentResponse, error) {
	policy, err := s.policies.GetPolicy(policyID)
	if err != nil {
		return nil, err
	}

	if policy.Status != models.PolicyStatusPendingPayment {
		return nil, apperrors.Validation("status", "policy %s is not awaiting payment", policy.PolicyNumber)
	}
	if policy.OutstandingAmount <= 0 {
		return nil, apperrors.Validation("amount", "policy %s has no outstanding premium", policy.PolicyNumber)
	}

	// Stripe wants the smallest currency unit
	amountInCents := int64(policy.OutstandingAmount * 100)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(s.config.Payment.Currency),
	}
	params.AddMetadata("policy_id", policy.ID.String())
	params.AddMetadata("policy_number", policy.PolicyNumber)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, apperrors.External("stripe", fmt.Errorf("failed to create payment intent: %w", err))
	}

	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Amount:       policy.OutstandingAmount,
		Status:       string(pi.Status),
	}, nil
}

// ConfirmPremiumPayment checks the intent with Stripe and, on success,
// applies it to the policy using the intent ID as the idempotency key.
// Confirming the same intent twice applies the money once.
func (s *PaymentService) ConfirmPremiumPayment(policyID uuid.UUID, req *ConfirmPaymentRequest) (*models.Policy, *models.PaymentReceipt, error) {
	if req.PaymentIntentID == "" {
		return nil, nil, apperrors.Validation("payment_intent_id", "a payment intent ID is required")
	}

	pi, err := paymentintent.Get(req.PaymentIntentID, nil)
	if err != nil {
		return nil, nil, apperrors.External("stripe", fmt.Errorf("failed to fetch payment intent: %w", err))
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		amount := float64(pi.Amount) / 100.0
		return s.policies.ApplyPayment(policyID, pi.ID, amount, "stripe")

	case stripe.PaymentIntentStatusRequiresAction, stripe.PaymentIntentStatusRequiresConfirmation:
		return nil, nil, apperrors.Validation("payment_intent_id", "payment intent %s still requires customer action", pi.ID)

	default:
		return nil, nil, apperrors.Validation("payment_intent_id", "payment intent %s is in state %q, not succeeded", pi.ID, pi.Status)
	}
}
