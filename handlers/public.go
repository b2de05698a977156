package handlers

import (
	"net/http"

	"food-marketplace/models"
	"food-marketplace/statemachine"

	"github.com/gin-gonic/gin"
)

// ListMenu returns available dishes (public)
func (h *Handler) ListMenu(c *gin.Context) {
	query := h.DB.WithContext(c.Request.Context()).Where("is_available = ?", true)

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if chefID := c.Query("chef_id"); chefID != "" {
		query = query.Where("chef_id = ?", chefID)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	if c.Query("vip") != "true" {
		query = query.Where("is_vip_exclusive = ?", false)
	}

	var items []models.MenuItem
	if err := query.Order("average_rating desc, id asc").Find(&items).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "menu": items})
}

// GetStateMachineInfo returns the full state machine for informational purposes
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	var terminal []models.OrderStatus
	for _, s := range []models.OrderStatus{
		models.StatusPending, models.StatusPreparing, models.StatusDelivering,
		models.StatusDelivered, models.StatusCancelled,
	} {
		if statemachine.IsTerminal(s) {
			terminal = append(terminal, s)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": terminal,
		"description":     "Marketplace order lifecycle",
	})
}
