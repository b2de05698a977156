package handlers

import (
	"net/http"

	"food-marketplace/middleware"
	"food-marketplace/models"
	"food-marketplace/reputation"

	"github.com/gin-gonic/gin"
)

type FeedbackRequest struct {
	TargetID    uint              `json:"target_id" binding:"required"`
	TargetType  models.TargetType `json:"target_type" binding:"required,oneof=chef delivery customer"`
	OrderID     *uint             `json:"order_id"`
	Description string            `json:"description" binding:"required"`
}

type DisputeRequest struct {
	Text string `json:"text" binding:"required"`
}

func (r FeedbackRequest) input(filerID uint) reputation.FileInput {
	return reputation.FileInput{
		FilerID:     filerID,
		TargetType:  r.TargetType,
		TargetID:    r.TargetID,
		OrderID:     r.OrderID,
		Description: r.Description,
	}
}

// FileComplaint records a complaint about a chef, delivery person or customer
func (h *Handler) FileComplaint(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	complaint, err := h.Reputation.FileComplaint(c.Request.Context(), req.input(middleware.GetUserID(c)))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Complaint filed", "complaint": complaint})
}

// FileCompliment records a compliment about a chef, delivery person or customer
func (h *Handler) FileCompliment(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	compliment, err := h.Reputation.FileCompliment(c.Request.Context(), req.input(middleware.GetUserID(c)))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Compliment filed", "compliment": compliment})
}

// DisputeComplaint lets the target answer a pending complaint once
func (h *Handler) DisputeComplaint(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req DisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	complaint, err := h.Reputation.DisputeComplaint(c.Request.Context(), middleware.GetUserID(c), id, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Dispute recorded", "complaint": complaint})
}
