package controllers

import (
	"net/http"
	"strconv"

	"application-review-api/config"
	"application-review-api/models"
	"application-review-api/services"

	"github.com/gin-gonic/gin"
)

// review is the shared workflow service; wired by InitServices after config.InitDB.
var review *services.ReviewService

// InitServices builds the review service on the global database connection.
// Must run after config.InitDB.
func InitServices() {
	review = services.NewReviewService(
		config.DB,
		services.NewDBRoster(config.DB),
		services.NewMailNotifier(config.DB),
		services.DefaultQuorumRule(),
	)
}

// currentActor maps the authenticated identity set by the auth middleware to
// the capability set the workflow service expects. Ownership is re-verified by
// the service itself.
func currentActor(c *gin.Context) services.Actor {
	userID, _ := c.Get("userID")
	roleID, _ := c.Get("roleID")

	role, _ := roleID.(int)
	return services.Actor{
		UserID:        userID.(int),
		IsBoardMember: role == models.RoleBoardMember,
		IsAdmin:       role == models.RoleAdmin,
		CanFinalize:   role == models.RoleAdmin,
	}
}

// applicationIDParam parses the :id path parameter.
func applicationIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return 0, false
	}
	return id, true
}

// respondWorkflowError maps workflow error kinds to HTTP statuses. Expected
// business-rule failures carry their specific messages; anything else is a
// persistence fault surfaced as a generic 500.
func respondWorkflowError(c *gin.Context, err error) {
	kind, ok := services.KindOf(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Request failed"})
		return
	}

	status := http.StatusBadRequest
	switch kind {
	case services.KindValidation:
		status = http.StatusBadRequest
	case services.KindInvalidTransition, services.KindDuplicateVote:
		status = http.StatusConflict
	case services.KindUnauthorized:
		status = http.StatusForbidden
	case services.KindNotFound:
		status = http.StatusNotFound
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
