package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StartReview opens the voting window on a submitted application (admin only)
// and notifies the current board roster.
func StartReview(c *gin.Context) {
	id, ok := applicationIDParam(c)
	if !ok {
		return
	}

	application, err := review.StartReview(id, currentActor(c))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Review started",
		"application": application,
	})
}

// ApproveApplication finalizes an application as approved (admin only).
func ApproveApplication(c *gin.Context) {
	id, ok := applicationIDParam(c)
	if !ok {
		return
	}

	type ApprovalRequest struct {
		ApprovedMonthlyAmount float64 `json:"approved_monthly_amount" binding:"required,gt=0"`
		SponsorID             *int    `json:"sponsor_id"`
		DecisionMessage       string  `json:"decision_message"`
	}

	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	application, err := review.Approve(id, currentActor(c), req.ApprovedMonthlyAmount, req.SponsorID, req.DecisionMessage)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Application approved",
		"application": application,
	})
}

// RejectApplication finalizes an application as rejected (admin only).
func RejectApplication(c *gin.Context) {
	id, ok := applicationIDParam(c)
	if !ok {
		return
	}

	type RejectRequest struct {
		RejectionReason string `json:"rejection_reason" binding:"required"`
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	application, err := review.Reject(id, currentActor(c), req.RejectionReason)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Application rejected",
		"application": application,
	})
}

// RequestInformation asks the applicant for more details without deciding the
// application (admin only).
func RequestInformation(c *gin.Context) {
	id, ok := applicationIDParam(c)
	if !ok {
		return
	}

	type InfoRequest struct {
		Details string `json:"details" binding:"required"`
	}

	var req InfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	application, err := review.RequestAdditionalInformation(id, currentActor(c), req.Details)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Information requested",
		"application": application,
	})
}
