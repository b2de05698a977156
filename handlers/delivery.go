package handlers

import (
	"net/http"

	"food-marketplace/middleware"
	"food-marketplace/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BidRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type DeliveryStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required,oneof=delivering delivered"`
}

// PlaceBid offers to deliver a pending order for the given fee
func (h *Handler) PlaceBid(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req BidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	bid, err := h.Bidding.PlaceBid(c.Request.Context(), orderID, middleware.GetUserID(c), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Bid placed", "bid": bid})
}

// GetMyBids lists the caller's bids
func (h *Handler) GetMyBids(c *gin.Context) {
	bids, err := h.Bidding.BidsByDeliveryPerson(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(bids), "bids": bids})
}

// GetAvailableOrders lists pending orders still open for bids
func (h *Handler) GetAvailableOrders(c *gin.Context) {
	open, err := h.Bidding.AvailableOrders(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(open), "orders": open})
}

// GetMyDeliveries lists orders assigned to the caller
func (h *Handler) GetMyDeliveries(c *gin.Context) {
	list, err := h.Orders.ListForDeliveryPerson(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "orders": list})
}

// UpdateDeliveryStatus moves an assigned order to delivering or delivered
func (h *Handler) UpdateDeliveryStatus(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req DeliveryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.Orders.UpdateDeliveryStatus(c.Request.Context(), orderID, middleware.GetUserID(c), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order": order})
}
