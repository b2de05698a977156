package routes

import (
	"food-marketplace/handlers"
	"food-marketplace/middleware"
	"food-marketplace/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)

		public.GET("/menu", h.ListMenu)
		public.GET("/state-machine", h.GetStateMachineInfo)
	}

	// ── Any authenticated account ──────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/profile", h.GetProfile)
		auth.POST("/complaints", h.FileComplaint)
		auth.POST("/compliments", h.FileCompliment)
		auth.PUT("/complaints/:id/dispute", h.DisputeComplaint)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api/customer")
	customer.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleCustomer))
	{
		customer.POST("/orders", h.PlaceOrder)
		customer.GET("/orders", h.GetMyOrders)
		customer.GET("/orders/:id", h.GetOrderDetail)
		customer.PUT("/orders/:id/cancel", h.CancelOrder)

		customer.POST("/deposits", h.CreateDeposit)
		customer.POST("/deposits/confirm", h.ConfirmDeposit)
		customer.GET("/transactions", h.GetTransactions)

		customer.POST("/ratings/food", h.RateFood)
		customer.POST("/ratings/delivery", h.RateDelivery)
	}

	// ── Chef routes ────────────────────────────────────────────────
	chef := r.Group("/api/chef")
	chef.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleChef))
	{
		chef.POST("/menu", h.AddMenuItem)
		chef.PUT("/menu/:itemId", h.UpdateMenuItem)
	}

	// ── Delivery routes ────────────────────────────────────────────
	delivery := r.Group("/api/delivery")
	delivery.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleDelivery))
	{
		delivery.GET("/orders/available", h.GetAvailableOrders)
		delivery.GET("/orders", h.GetMyDeliveries)
		delivery.POST("/orders/:id/bids", h.PlaceBid)
		delivery.GET("/bids", h.GetMyBids)
		delivery.PUT("/orders/:id/status", h.UpdateDeliveryStatus)
	}

	// ── Manager routes ─────────────────────────────────────────────
	manager := r.Group("/api/manager")
	manager.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleManager))
	{
		manager.POST("/accounts", h.CreateAccount)
		manager.POST("/customers/:id/close", h.CloseCustomer)

		manager.POST("/employees/fire", h.FireEmployee)
		manager.POST("/employees/salary", h.AdjustSalary)
		manager.POST("/employees/bonus", h.AwardBonus)

		manager.GET("/orders/:id/bids", h.ListOrderBids)
		manager.POST("/orders/:id/assign", h.AssignDelivery)
		manager.PUT("/orders/:id/cancel", h.ManagerCancelOrder)

		manager.GET("/complaints", h.ListComplaints)
		manager.PUT("/complaints/:id", h.AdjudicateComplaint)
		manager.GET("/compliments", h.ListCompliments)
		manager.PUT("/compliments/:id", h.AdjudicateCompliment)
	}
}
