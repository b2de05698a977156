package handlers

import (
	"net/http"

	"food-marketplace/middleware"
	"food-marketplace/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type MenuItemRequest struct {
	Name           string          `json:"name" binding:"required"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price" binding:"required"`
	Category       string          `json:"category"`
	IsVIPExclusive bool            `json:"is_vip_exclusive"`
}

type UpdateMenuItemRequest struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	Category       *string          `json:"category"`
	IsAvailable    *bool            `json:"is_available"`
	IsVIPExclusive *bool            `json:"is_vip_exclusive"`
}

// AddMenuItem adds a dish to the calling chef's menu
func (h *Handler) AddMenuItem(c *gin.Context) {
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !req.Price.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be positive"})
		return
	}

	item := models.MenuItem{
		ChefID:         middleware.GetUserID(c),
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price.Round(2),
		Category:       req.Category,
		IsAvailable:    true,
		IsVIPExclusive: req.IsVIPExclusive,
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&item).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Menu item added", "item": item})
}

// UpdateMenuItem edits one of the calling chef's dishes. Past orders keep the
// name and price they were placed with.
func (h *Handler) UpdateMenuItem(c *gin.Context) {
	id, ok := paramID(c, "itemId")
	if !ok {
		return
	}
	var req UpdateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	var item models.MenuItem
	if err := db.Where("id = ? AND chef_id = ?", id, middleware.GetUserID(c)).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be positive"})
			return
		}
		updates["price"] = req.Price.Round(2)
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}
	if req.IsVIPExclusive != nil {
		updates["is_vip_exclusive"] = *req.IsVIPExclusive
	}
	if len(updates) > 0 {
		if err := db.Model(&item).Updates(updates).Error; err != nil {
			respondError(c, err)
			return
		}
	}
	if err := db.First(&item, item.ID).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item updated", "item": item})
}
