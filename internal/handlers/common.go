package handlers

import (
	"clinic-app-server/internal/clinic"
	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// currentActor builds the audit actor for the authenticated request. The
// display name is looked up once; a missing row just leaves it blank.
func currentActor(c *gin.Context, db *gorm.DB) (clinic.Actor, bool) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		return clinic.Actor{}, false
	}
	role, _ := middleware.GetUserRoleFromContext(c)

	actor := clinic.Actor{ID: userID, Role: role}
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err == nil {
		actor.Name = user.FullName()
	}
	return actor, true
}

// respondCoreError maps a typed core failure onto the HTTP envelope so the
// client can render an actionable message.
func respondCoreError(c *gin.Context, err error) {
	switch clinic.KindOf(err) {
	case clinic.KindNotFound:
		utils.NotFound(c, err.Error())
	case clinic.KindPatientRestricted:
		utils.Forbidden(c, err.Error())
	case clinic.KindSchedulingConflict, clinic.KindDuplicateRequest:
		utils.Conflict(c, err.Error())
	case clinic.KindValidation:
		utils.BadRequest(c, err.Error())
	default:
		utils.InternalServerError(c, "operation could not be completed")
	}
}
