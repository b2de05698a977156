package reputation

import (
	"food-marketplace/models"

	"gorm.io/gorm"
)

// SaveCustomer writes the standing counters of c. The balance is left to the
// ledger.
func SaveCustomer(tx *gorm.DB, c *models.Customer) error {
	return tx.Model(c).Updates(map[string]any{
		"tier":                  c.Tier,
		"total_spent":           c.TotalSpent.Round(2),
		"vip_progress_spend":    c.VIPProgressSpend.Round(2),
		"order_count":           c.OrderCount,
		"warnings_count":        c.WarningsCount,
		"blacklisted":           c.Blacklisted,
		"free_delivery_credits": c.FreeDeliveryCredits,
	}).Error
}

// SaveEmployee writes the standing counters of e.
func SaveEmployee(tx *gorm.DB, e *models.Employee) error {
	return tx.Model(e).Updates(map[string]any{
		"salary":           e.Salary.Round(2),
		"complaint_count":  e.ComplaintCount,
		"compliment_count": e.ComplimentCount,
		"demotion_count":   e.DemotionCount,
		"average_rating":   e.AverageRating,
		"rating_count":     e.RatingCount,
	}).Error
}
