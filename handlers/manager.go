package handlers

import (
	"net/http"

	"food-marketplace/accounts"
	"food-marketplace/bidding"
	"food-marketplace/middleware"
	"food-marketplace/models"
	"food-marketplace/reputation"
	"food-marketplace/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type CreateAccountRequest struct {
	Name     string          `json:"name" binding:"required"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=6"`
	Role     models.UserRole `json:"role" binding:"required,oneof=chef delivery manager"`
	Phone    string          `json:"phone"`
	Salary   decimal.Decimal `json:"salary"`
}

type AssignRequest struct {
	BidID            *uint            `json:"bid_id"`
	DeliveryPersonID *uint            `json:"delivery_person_id"`
	Fee              *decimal.Decimal `json:"fee"`
	Justification    string           `json:"justification"`
}

type ComplaintDecisionRequest struct {
	Decision reputation.Decision `json:"decision" binding:"required,oneof=upheld dismissed"`
	Notes    string              `json:"notes"`
}

type ComplimentDecisionRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

type FireRequest struct {
	EmployeeID uint   `json:"employee_id" binding:"required"`
	Reason     string `json:"reason"`
}

type SalaryRequest struct {
	EmployeeID   uint                  `json:"employee_id" binding:"required"`
	Action       accounts.SalaryAction `json:"action" binding:"required,oneof=raise cut"`
	Amount       decimal.Decimal       `json:"amount" binding:"required"`
	IsPercentage bool                  `json:"is_percentage"`
}

type BonusRequest struct {
	EmployeeID  uint            `json:"employee_id" binding:"required"`
	BonusAmount decimal.Decimal `json:"bonus_amount" binding:"required"`
	Reason      string          `json:"reason"`
}

// CreateAccount creates chef, delivery and manager accounts
func (h *Handler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	account, err := h.Accounts.Create(c.Request.Context(), accounts.NewAccount{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Phone:    req.Phone,
		Salary:   req.Salary,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Account created", "account": account})
}

// ListOrderBids returns an order's bids, cheapest first
func (h *Handler) ListOrderBids(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	bids, err := h.Bidding.ListBids(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(bids), "bids": bids})
}

// AssignDelivery picks a bid, or a delivery person and fee directly
func (h *Handler) AssignDelivery(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	in := bidding.AssignInput{
		ManagerID:     middleware.GetUserID(c),
		OrderID:       orderID,
		BidID:         req.BidID,
		Justification: req.Justification,
	}
	if req.DeliveryPersonID != nil {
		manual := &bidding.Manual{DeliveryPersonID: *req.DeliveryPersonID}
		if req.Fee != nil {
			manual.Fee = *req.Fee
		}
		in.Manual = manual
	}

	assignment, err := h.Bidding.AssignDelivery(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Delivery assigned", "assignment": assignment})
}

// ListComplaints returns complaints, filtered by ?status=
func (h *Handler) ListComplaints(c *gin.Context) {
	list, err := h.Reputation.Complaints(c.Request.Context(), models.ComplaintStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "complaints": list})
}

// ListCompliments returns compliments, filtered by ?status=
func (h *Handler) ListCompliments(c *gin.Context) {
	list, err := h.Reputation.Compliments(c.Request.Context(), models.ComplimentStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "compliments": list})
}

// AdjudicateComplaint upholds or dismisses a pending complaint. An employee
// reaching their second demotion is terminated by the same ruling.
func (h *Handler) AdjudicateComplaint(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ComplaintDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	out, err := h.Reputation.AdjudicateComplaint(c.Request.Context(), middleware.GetUserID(c), id, req.Decision, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Complaint " + string(out.Complaint.Status), "result": out})
}

// AdjudicateCompliment approves or dismisses a pending compliment
func (h *Handler) AdjudicateCompliment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ComplimentDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.Reputation.AdjudicateCompliment(c.Request.Context(), middleware.GetUserID(c), id, *req.Approve)
	if err != nil {
		respondError(c, err)
		return
	}
	if out.Employee.Bonus {
		log.Info().Uint("employee_id", out.Compliment.TargetUserID).Msg("handlers: employee earned a bonus")
	}
	c.JSON(http.StatusOK, gin.H{"message": "Compliment " + string(out.Compliment.Status), "result": out})
}

// CloseCustomer closes a customer account and pays out its balance
func (h *Handler) CloseCustomer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	paid, err := h.Accounts.Close(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account closed", "paid_out": paid.StringFixed(2)})
}

// ManagerCancelOrder cancels a pending order nobody has bid on
func (h *Handler) ManagerCancelOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.Orders.Cancel(c.Request.Context(), id, middleware.GetUserID(c), statemachine.ActorManager)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled and refunded", "order": order})
}

// FireEmployee terminates a chef or delivery person
func (h *Handler) FireEmployee(c *gin.Context) {
	var req FireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Accounts.Fire(c.Request.Context(), middleware.GetUserID(c), req.EmployeeID, req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Employee fired", "employee_id": req.EmployeeID})
}

// AdjustSalary raises or cuts a salary by an amount or a percentage
func (h *Handler) AdjustSalary(c *gin.Context) {
	var req SalaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.Accounts.AdjustSalary(c.Request.Context(), middleware.GetUserID(c), req.EmployeeID, accounts.SalaryChange{
		Action:     req.Action,
		Amount:     req.Amount,
		Percentage: req.IsPercentage,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Salary updated",
		"old_salary": out.OldSalary.StringFixed(2),
		"new_salary": out.NewSalary.StringFixed(2),
	})
}

// AwardBonus adds a bonus to an employee's salary
func (h *Handler) AwardBonus(c *gin.Context) {
	var req BonusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.Accounts.AwardBonus(c.Request.Context(), middleware.GetUserID(c), req.EmployeeID, req.BonusAmount, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Bonus awarded",
		"old_salary": out.OldSalary.StringFixed(2),
		"new_salary": out.NewSalary.StringFixed(2),
	})
}
