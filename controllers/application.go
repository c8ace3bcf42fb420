package controllers

import (
	"net/http"

	"application-review-api/models"
	"application-review-api/services"

	"github.com/gin-gonic/gin"
)

// GetApplications returns the applications visible to the caller. Clients see
// only their own; board members and admins see everything.
func GetApplications(c *gin.Context) {
	actor := currentActor(c)

	applications, err := review.ListApplications(actor, c.Query("status"))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": applications,
		"total":        len(applications),
	})
}

// GetApplication returns a single application with its thread, filtered for
// the caller's capabilities.
func GetApplication(c *gin.Context) {
	id, ok := applicationIDParam(c)
	if !ok {
		return
	}

	application, err := review.GetApplication(id, currentActor(c))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"application": application,
	})
}

// CreateApplication opens a new draft for the caller.
func CreateApplication(c *gin.Context) {
	var req services.DraftInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	application, err := review.CreateDraft(currentActor(c), req)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Draft created",
		"application": application,
	})
}

// UpdateApplication saves partial draft progress, field by field.
func UpdateApplication(c *gin.Context) {
	id, ok := applicationIDParam(c)
	if !ok {
		return
	}

	var req services.DraftInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	application, err := review.UpdateDraft(id, currentActor(c), req)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Draft saved",
		"application": application,
	})
}

// SubmitApplication moves a completed draft into the review pipeline.
func SubmitApplication(c *gin.Context) {
	id, ok := applicationIDParam(c)
	if !ok {
		return
	}

	application, err := review.Submit(id, currentActor(c))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Application submitted",
		"application": application,
	})
}

// WithdrawApplication pulls the caller's application out of the workflow.
func WithdrawApplication(c *gin.Context) {
	id, ok := applicationIDParam(c)
	if !ok {
		return
	}

	application, err := review.Withdraw(id, currentActor(c))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Application withdrawn",
		"application": application,
	})
}

// GetFundingTypes returns the categories an applicant may request support for.
func GetFundingTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"funding_types": models.ValidFundingTypes,
	})
}
