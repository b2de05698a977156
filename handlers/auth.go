package handlers

import (
	"net/http"

	"food-marketplace/accounts"
	"food-marketplace/apperr"
	"food-marketplace/middleware"
	"food-marketplace/models"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=6"`
	Phone          string `json:"phone"`
	DefaultAddress string `json:"default_address"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func userJSON(u models.User) gin.H {
	return gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}
}

// Register creates a customer account. Staff accounts are created by managers.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	account, err := h.Accounts.Create(c.Request.Context(), accounts.NewAccount{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		Role:           models.RoleCustomer,
		Phone:          req.Phone,
		DefaultAddress: req.DefaultAddress,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := middleware.GenerateToken(account.Identity())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"token":   token,
		"user":    userJSON(account.Identity()),
	})
}

// Login authenticates a user and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	account, err := h.Accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if apperr.Is(err, apperr.KindAuthorization) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := middleware.GenerateToken(account.Identity())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    userJSON(account.Identity()),
	})
}

// GetProfile returns the caller's account with its role profile
func (h *Handler) GetProfile(c *gin.Context) {
	account, err := h.Accounts.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account, "role": account.Role()})
}
