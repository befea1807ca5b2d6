// internal/handlers/helpers.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/insurance-solutions/vims-backend/internal/models"
	"github.com/insurance-solutions/vims-backend/internal/utils"
)

// pathUUID parses a UUID path parameter, writing the error response itself.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

// actor returns the authenticated user's ID and role from the request
// context set by the auth middleware.
func actor(c *gin.Context) (uuid.UUID, models.UserRole, bool) {
	idStr, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, "", false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, "", false
	}
	roleStr, _ := utils.GetUserRoleFromContext(c)
	return id, models.UserRole(roleStr), true
}
