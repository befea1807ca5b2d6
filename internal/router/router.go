// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/insurance-solutions/vims-backend/internal/config"
	"github.com/insurance-solutions/vims-backend/internal/handlers"
	"github.com/insurance-solutions/vims-backend/internal/middleware"
	"github.com/insurance-solutions/vims-backend/internal/models"
	"github.com/insurance-solutions/vims-backend/internal/services"
	"github.com/insurance-solutions/vims-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(cfg)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Warn("S3 session failed, document uploads disabled")
		storageService = services.NewDisabledStorageService(cfg)
	}

	authService := services.NewAuthService(db, cfg)
	customerService := services.NewCustomerService(db)
	planService := services.NewPlanService(db)
	proposalService := services.NewProposalService(db, cfg.Underwriting)
	policyService := services.NewPolicyService(db, cfg.Underwriting, notificationService)
	paymentService := services.NewPaymentService(cfg, policyService)
	claimService := services.NewClaimService(db, cfg.Underwriting, notificationService)
	renewalService := services.NewRenewalService(db, cfg.Underwriting)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	customerHandler := handlers.NewCustomerHandler(customerService, storageService)
	planHandler := handlers.NewPlanHandler(planService)
	proposalHandler := handlers.NewProposalHandler(proposalService, policyService)
	policyHandler := handlers.NewPolicyHandler(policyService, paymentService)
	claimHandler := handlers.NewClaimHandler(claimService, storageService)
	adminHandler := handlers.NewAdminHandler(db, renewalService, policyService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	limiters := middleware.NewRateLimiters(cfg.Server.RateLimit)
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(limiters.General.Handler())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	v1 := r.Group("/api/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(limiters.Auth.Handler())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Public policy verification
		v1.GET("/public/policies/:number", policyHandler.LookupByNumber)

		// Customer and vehicle routes
		customers := v1.Group("/customers")
		customers.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAgent, models.RoleUnderwriter))
		{
			customers.POST("", customerHandler.CreateCustomer)
			customers.GET("", customerHandler.ListCustomers)
			customers.GET("/:id", customerHandler.GetCustomer)
			customers.PUT("/:id/kyc", customerHandler.UpdateKYC)
		}

		vehicles := v1.Group("/vehicles")
		vehicles.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAgent, models.RoleUnderwriter))
		{
			vehicles.POST("", customerHandler.CreateVehicle)
			vehicles.GET("/:id", customerHandler.GetVehicle)
			vehicles.PUT("/:id/rc", customerHandler.VerifyRC)
			vehicles.PUT("/:id/idv", customerHandler.UpdateIDV)
			vehicles.POST("/:id/rc-document", limiters.Upload.Handler(), customerHandler.UploadRCDocument)
		}

		// Plan routes: reading is open to staff, writing is admin-only
		plans := v1.Group("/plans")
		plans.Use(middleware.AuthRequired())
		{
			plans.GET("", planHandler.ListPlans)
			plans.GET("/:id", planHandler.GetPlan)
			plans.POST("/:id/quote", planHandler.QuotePremium)

			adminOnly := plans.Group("")
			adminOnly.Use(middleware.RoleRequired())
			{
				adminOnly.POST("", planHandler.CreatePlan)
				adminOnly.PUT("/:id", planHandler.UpdatePlan)
			}
		}

		// Proposal lifecycle
		proposals := v1.Group("/proposals")
		proposals.Use(middleware.AuthRequired())
		{
			proposals.GET("", proposalHandler.ListProposals)
			proposals.GET("/:id", proposalHandler.GetProposal)

			agent := proposals.Group("")
			agent.Use(middleware.RoleRequired(models.RoleAgent))
			{
				agent.POST("", proposalHandler.CreateProposal)
				agent.PUT("/:id", proposalHandler.UpdateProposal)
				agent.POST("/:id/submit", proposalHandler.Submit)
			}

			underwriter := proposals.Group("")
			underwriter.Use(middleware.RoleRequired(models.RoleUnderwriter))
			{
				underwriter.POST("/:id/review", proposalHandler.StartReview)
				underwriter.POST("/:id/approve", proposalHandler.Approve)
				underwriter.POST("/:id/reject", proposalHandler.Reject)
				underwriter.POST("/:id/convert", proposalHandler.ConvertToPolicy)
			}
		}

		// Policy routes
		policies := v1.Group("/policies")
		policies.Use(middleware.AuthRequired())
		{
			policies.GET("", policyHandler.ListPolicies)
			policies.GET("/:id", policyHandler.GetPolicy)
			policies.GET("/:id/endorsements", policyHandler.ListEndorsements)
			policies.POST("/:id/payment-intent", policyHandler.CreatePaymentIntent)
			policies.POST("/:id/payment-confirm", policyHandler.ConfirmPayment)

			finance := policies.Group("")
			finance.Use(middleware.RoleRequired(models.RoleFinance))
			{
				finance.POST("/:id/payments", policyHandler.ApplyPayment)
			}

			agent := policies.Group("")
			agent.Use(middleware.RoleRequired(models.RoleAgent, models.RoleUnderwriter))
			{
				agent.POST("/:id/endorsements", policyHandler.CreateEndorsement)
			}
		}

		// Claim lifecycle
		claims := v1.Group("/claims")
		claims.Use(middleware.AuthRequired())
		{
			claims.GET("", claimHandler.ListClaims)
			claims.GET("/stats", claimHandler.GetStats)
			claims.GET("/:id", claimHandler.GetClaim)

			agent := claims.Group("")
			agent.Use(middleware.RoleRequired(models.RoleAgent, models.RoleClaimsOfficer))
			{
				agent.POST("", claimHandler.RegisterClaim)
				agent.POST("/:id/evidence", limiters.Upload.Handler(), claimHandler.UploadEvidence)
			}

			officer := claims.Group("")
			officer.Use(middleware.RoleRequired(models.RoleClaimsOfficer))
			{
				officer.POST("/:id/assign-survey", claimHandler.AssignSurvey)
				officer.POST("/bulk-assign-survey", claimHandler.BulkAssignSurveys)
				officer.POST("/:id/assign-verification", claimHandler.AssignVerification)
				officer.POST("/bulk-assign-verification", claimHandler.BulkAssignVerifications)
				officer.POST("/:id/approve", claimHandler.Approve)
				officer.POST("/:id/reject", claimHandler.Reject)
			}

			surveyor := claims.Group("")
			surveyor.Use(middleware.RoleRequired(models.RoleSurveyor))
			{
				surveyor.POST("/:id/survey", claimHandler.SubmitSurvey)
			}

			verifier := claims.Group("")
			verifier.Use(middleware.RoleRequired(models.RoleVerificationAgent))
			{
				verifier.POST("/:id/verification", claimHandler.SubmitVerification)
			}

			finance := claims.Group("")
			finance.Use(middleware.RoleRequired(models.RoleFinance))
			{
				finance.POST("/:id/settle", claimHandler.Settle)
			}
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.RoleRequired())
		{
			admin.POST("/renewals/run", adminHandler.RunRenewalSweep)
			admin.POST("/policies/expire", adminHandler.RunExpiryPass)
			admin.GET("/audit-logs", adminHandler.ListAuditLogs)
		}
	}

	return r
}
