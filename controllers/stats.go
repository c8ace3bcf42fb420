package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetBoardMemberStatistics returns the caller's own participation statistics.
// Admins may pass ?voter_id= to inspect another board member.
func GetBoardMemberStatistics(c *gin.Context) {
	actor := currentActor(c)

	voterID := actor.UserID
	if raw := c.Query("voter_id"); raw != "" {
		if !actor.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only admins can view other members' statistics"})
			return
		}
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid voter ID"})
			return
		}
		voterID = id
	}

	stats, err := review.BoardMemberStatistics(voterID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"statistics": stats,
	})
}

// GetDashboardSummary returns pipeline-wide aggregates for the admin dashboard.
func GetDashboardSummary(c *gin.Context) {
	summary, err := review.GetDashboardSummary()
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary": summary,
	})
}
