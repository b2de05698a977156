package handlers

import (
	"net/http"

	"food-marketplace/accounts"
	"food-marketplace/middleware"
	"food-marketplace/orders"
	"food-marketplace/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PlaceOrderRequest struct {
	DeliveryAddress string               `json:"delivery_address"`
	Items           []orders.ItemRequest `json:"items" binding:"required,min=1,dive"`
}

type DepositRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type ConfirmDepositRequest struct {
	Reference string `json:"reference" binding:"required"`
}

type FoodRatingRequest struct {
	OrderItemID uint   `json:"order_item_id" binding:"required"`
	Stars       int    `json:"stars" binding:"required,min=1,max=5"`
	Comment     string `json:"comment"`
}

type DeliveryRatingRequest struct {
	OrderID uint   `json:"order_id" binding:"required"`
	Stars   int    `json:"stars" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// PlaceOrder checks out the caller's cart against their deposit balance.
// Without a delivery address the account default is used.
func (h *Handler) PlaceOrder(c *gin.Context) {
	customerID := middleware.GetUserID(c)

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	address := req.DeliveryAddress
	if address == "" {
		customer, err := accounts.RequireCustomer(h.DB.WithContext(c.Request.Context()), customerID)
		if err != nil {
			respondError(c, err)
			return
		}
		address = customer.Profile.DefaultAddress
	}

	res, err := h.Orders.PlaceOrder(c.Request.Context(), orders.PlaceOrderInput{
		CustomerID:      customerID,
		Items:           req.Items,
		DeliveryAddress: address,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":           "Order placed successfully",
		"order":             res.Order,
		"subtotal":          res.Quote.Subtotal.StringFixed(2),
		"discount":          res.Quote.Discount.StringFixed(2),
		"delivery_fee":      res.Quote.DeliveryFee.StringFixed(2),
		"driver_fee":        res.Quote.DriverFee.StringFixed(2),
		"total":             res.Quote.Total.StringFixed(2),
		"remaining_balance": res.RemainingBalance.StringFixed(2),
		"upgraded":          res.Upgraded,
	})
}

// GetMyOrders returns all orders for the logged-in customer
func (h *Handler) GetMyOrders(c *gin.Context) {
	list, err := h.Orders.ListForCustomer(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "orders": list})
}

// GetOrderDetail returns one of the caller's orders with its history
func (h *Handler) GetOrderDetail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.Orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if order.CustomerID != middleware.GetUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// CancelOrder cancels a pending order nobody has bid on and refunds it
func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.Orders.Cancel(c.Request.Context(), id, middleware.GetUserID(c), statemachine.ActorCustomer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled and refunded", "order": order})
}

// CreateDeposit opens a card payment the customer completes with the returned
// client secret.
func (h *Handler) CreateDeposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	intent, err := h.Payments.CreateDeposit(c.Request.Context(), middleware.GetUserID(c), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"intent": intent})
}

// ConfirmDeposit credits a completed card payment to the caller's balance
func (h *Handler) ConfirmDeposit(c *gin.Context) {
	var req ConfirmDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	conf, err := h.Payments.ConfirmExternalPayment(c.Request.Context(), middleware.GetUserID(c), req.Reference)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Deposit credited",
		"reference":   conf.Reference,
		"credited":    conf.Credited.StringFixed(2),
		"new_balance": conf.NewBalance.StringFixed(2),
	})
}

// GetTransactions returns the caller's balance and ledger history
func (h *Handler) GetTransactions(c *gin.Context) {
	ctx := c.Request.Context()
	customerID := middleware.GetUserID(c)

	balance, err := h.Ledger.Balance(ctx, customerID)
	if err != nil {
		respondError(c, err)
		return
	}
	history, err := h.Ledger.History(ctx, customerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":      balance.StringFixed(2),
		"count":        len(history),
		"transactions": history,
	})
}

// RateFood rates a dish from one of the caller's delivered orders
func (h *Handler) RateFood(c *gin.Context) {
	var req FoodRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Ratings.RateFood(c.Request.Context(), middleware.GetUserID(c), req.OrderItemID, req.Stars, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// RateDelivery rates the delivery of one of the caller's delivered orders
func (h *Handler) RateDelivery(c *gin.Context) {
	var req DeliveryRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Ratings.RateDelivery(c.Request.Context(), middleware.GetUserID(c), req.OrderID, req.Stars, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
