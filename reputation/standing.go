// Package reputation tracks standing for employees and customers.
//
// The functions in this file are the only place standing counters change.
// They mutate the model in memory and report what happened; persisting the
// model and acting on termination or bonus signals is up to the caller.
package reputation

import (
	"food-marketplace/models"

	"github.com/shopspring/decimal"
)

const (
	ComplaintsPerDemotion  = 3
	LowRatingFloor         = 2.0
	DemotionsToTerminate   = 2
	ComplimentsPerBonus    = 3
	RegisteredWarningLimit = 3
	VIPWarningLimit        = 2
	VIPOrderThreshold      = 3
	UpgradeDeliveryCredits = 1
)

var (
	salaryAfterCut = decimal.RequireFromString("0.90")
	VIPSpendTarget = decimal.NewFromInt(100)
)

// EmployeeSignal reports the outcome of an employee transition.
type EmployeeSignal struct {
	Cancelled  bool `json:"cancelled"`
	Demoted    bool `json:"demoted"`
	Terminated bool `json:"terminated"`
	Bonus      bool `json:"bonus"`
}

func lowRated(e *models.Employee) bool {
	return e.RatingCount > 0 && e.AverageRating < LowRatingFloor
}

// AddComplaint applies one upheld complaint. An outstanding compliment absorbs
// it one-for-one and the complaint is reported as cancelled.
func AddComplaint(e *models.Employee) EmployeeSignal {
	if e.ComplimentCount > 0 {
		e.ComplimentCount--
		return EmployeeSignal{Cancelled: true}
	}
	e.ComplaintCount++
	if e.ComplaintCount >= ComplaintsPerDemotion || lowRated(e) {
		return Demote(e)
	}
	return EmployeeSignal{}
}

// Demote cuts salary by 10% and clears complaints. The second demotion
// signals termination.
func Demote(e *models.Employee) EmployeeSignal {
	e.DemotionCount++
	e.ComplaintCount = 0
	e.Salary = e.Salary.Mul(salaryAfterCut).Round(2)
	return EmployeeSignal{Demoted: true, Terminated: e.DemotionCount >= DemotionsToTerminate}
}

// AddCompliment applies one approved compliment; every third signals a bonus.
func AddCompliment(e *models.Employee) EmployeeSignal {
	e.ComplimentCount++
	if e.ComplimentCount >= ComplimentsPerBonus {
		e.ComplimentCount = 0
		return EmployeeSignal{Bonus: true}
	}
	return EmployeeSignal{}
}

// UpdateRating records a recomputed average over count ratings. A low average
// demotes immediately.
func UpdateRating(e *models.Employee, avg float64, count int) EmployeeSignal {
	e.AverageRating = avg
	e.RatingCount = count
	if lowRated(e) {
		return Demote(e)
	}
	return EmployeeSignal{}
}

// CustomerSignal reports the outcome of a customer transition.
type CustomerSignal struct {
	Blacklisted bool `json:"blacklisted"`
	Demoted     bool `json:"demoted"`
}

// AddWarning issues one warning. Registered accounts are blacklisted at three;
// VIPs fall back to registered at two with warnings, credits and VIP progress
// cleared.
func AddWarning(c *models.Customer) CustomerSignal {
	c.WarningsCount++
	switch c.Tier {
	case models.TierVIP:
		if c.WarningsCount >= VIPWarningLimit {
			c.Tier = models.TierRegistered
			c.WarningsCount = 0
			c.FreeDeliveryCredits = 0
			c.VIPProgressSpend = decimal.Zero
			return CustomerSignal{Demoted: true}
		}
	default:
		if c.WarningsCount >= RegisteredWarningLimit && !c.Blacklisted {
			c.Blacklisted = true
			return CustomerSignal{Blacklisted: true}
		}
	}
	return CustomerSignal{}
}

// RemoveWarning withdraws one warning, never going below zero. Blacklisting is
// not undone.
func RemoveWarning(c *models.Customer) {
	if c.WarningsCount > 0 {
		c.WarningsCount--
	}
}

// EvaluateUpgrade promotes a registered customer to VIP once VIP-progress
// spend reaches 100 or three orders have been placed, provided the account is
// in good standing. Every upgrade banks one free-delivery credit. It reports
// whether an upgrade happened.
func EvaluateUpgrade(c *models.Customer) bool {
	if c.Tier != models.TierRegistered || c.Blacklisted || c.WarningsCount >= RegisteredWarningLimit {
		return false
	}
	if c.VIPProgressSpend.GreaterThanOrEqual(VIPSpendTarget) || c.OrderCount >= VIPOrderThreshold {
		c.Tier = models.TierVIP
		c.FreeDeliveryCredits += UpgradeDeliveryCredits
		return true
	}
	return false
}
