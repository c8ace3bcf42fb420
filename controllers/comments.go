package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AddComment appends a comment to an application's discussion thread.
func AddComment(c *gin.Context) {
	id, ok := applicationIDParam(c)
	if !ok {
		return
	}

	type CommentRequest struct {
		Content         string `json:"content" binding:"required"`
		IsPrivate       bool   `json:"is_private"`
		IsInfoRequest   bool   `json:"is_info_request"`
		ParentCommentID *int   `json:"parent_comment_id"`
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := review.AddComment(id, currentActor(c), req.Content, req.IsPrivate, req.IsInfoRequest, req.ParentCommentID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment added",
		"comment": comment,
	})
}

// GetComments returns the thread in creation order, with board-only comments
// filtered out for applicants.
func GetComments(c *gin.Context) {
	id, ok := applicationIDParam(c)
	if !ok {
		return
	}

	comments, err := review.ListComments(id, currentActor(c))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"total":    len(comments),
	})
}
