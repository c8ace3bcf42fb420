package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CastVote records the caller's vote on an application (board members only).
func CastVote(c *gin.Context) {
	id, ok := applicationIDParam(c)
	if !ok {
		return
	}

	type VoteRequest struct {
		Decision   string `json:"decision" binding:"required"`
		Reasoning  string `json:"reasoning"`
		Confidence int    `json:"confidence" binding:"required,min=1,max=5"`
	}

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vote, summary, err := review.CastVote(id, currentActor(c), req.Decision, req.Reasoning, req.Confidence)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Vote recorded",
		"vote":    vote,
		"summary": summary,
	})
}

// GetVotingSummary returns the current tally and quorum state.
func GetVotingSummary(c *gin.Context) {
	id, ok := applicationIDParam(c)
	if !ok {
		return
	}

	summary, err := review.GetVotingSummary(id)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary": summary,
	})
}

// GetVotes lists individual votes on an application (board only).
func GetVotes(c *gin.Context) {
	id, ok := applicationIDParam(c)
	if !ok {
		return
	}

	votes, err := review.ListVotes(id, currentActor(c))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"votes": votes,
		"total": len(votes),
	})
}

// GetReviewQueue lists applications still waiting for the caller's vote.
func GetReviewQueue(c *gin.Context) {
	actor := currentActor(c)

	applications, err := review.ApplicationsNeedingReview(actor.UserID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": applications,
		"total":        len(applications),
	})
}
