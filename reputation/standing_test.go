package reputation

import (
	"testing"

	"food-marketplace/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAddComplaint(t *testing.T) {
	t.Run("compliment absorbs complaint", func(t *testing.T) {
		e := &models.Employee{ComplimentCount: 1, ComplaintCount: 1, Salary: dec("1000")}
		sig := AddComplaint(e)
		assert.Equal(t, EmployeeSignal{Cancelled: true}, sig)
		assert.Equal(t, 0, e.ComplimentCount)
		assert.Equal(t, 1, e.ComplaintCount)
	})

	t.Run("third complaint demotes", func(t *testing.T) {
		e := &models.Employee{ComplaintCount: 2, Salary: dec("1000")}
		sig := AddComplaint(e)
		assert.True(t, sig.Demoted)
		assert.False(t, sig.Terminated)
		assert.Equal(t, 1, e.DemotionCount)
		assert.Equal(t, 0, e.ComplaintCount)
		assert.True(t, dec("900").Equal(e.Salary), "salary %s", e.Salary)
	})

	t.Run("low rating demotes on first complaint", func(t *testing.T) {
		e := &models.Employee{AverageRating: 1.5, RatingCount: 4, Salary: dec("500")}
		sig := AddComplaint(e)
		assert.True(t, sig.Demoted)
	})

	t.Run("unrated employee is not low rated", func(t *testing.T) {
		e := &models.Employee{Salary: dec("500")}
		sig := AddComplaint(e)
		assert.Equal(t, EmployeeSignal{}, sig)
		assert.Equal(t, 1, e.ComplaintCount)
	})
}

func TestDemote_SecondDemotionTerminates(t *testing.T) {
	e := &models.Employee{DemotionCount: 1, ComplaintCount: 2, Salary: dec("1234.56")}
	sig := Demote(e)
	assert.Equal(t, EmployeeSignal{Demoted: true, Terminated: true}, sig)
	assert.Equal(t, 2, e.DemotionCount)
	assert.True(t, dec("1111.10").Equal(e.Salary), "salary %s", e.Salary)
}

func TestAddCompliment(t *testing.T) {
	e := &models.Employee{}
	assert.Equal(t, EmployeeSignal{}, AddCompliment(e))
	assert.Equal(t, EmployeeSignal{}, AddCompliment(e))
	assert.Equal(t, EmployeeSignal{Bonus: true}, AddCompliment(e))
	assert.Equal(t, 0, e.ComplimentCount)
}

func TestUpdateRating(t *testing.T) {
	e := &models.Employee{Salary: dec("100")}
	assert.Equal(t, EmployeeSignal{}, UpdateRating(e, 4.2, 5))
	assert.Equal(t, 4.2, e.AverageRating)

	sig := UpdateRating(e, 1.9, 6)
	assert.True(t, sig.Demoted)
	assert.Equal(t, 1, e.DemotionCount)
	assert.True(t, dec("90").Equal(e.Salary))
}

func TestAddWarning(t *testing.T) {
	t.Run("registered blacklisted at three", func(t *testing.T) {
		c := &models.Customer{Tier: models.TierRegistered, WarningsCount: 1}
		assert.Equal(t, CustomerSignal{}, AddWarning(c))
		assert.Equal(t, CustomerSignal{Blacklisted: true}, AddWarning(c))
		assert.True(t, c.Blacklisted)
		assert.Equal(t, 3, c.WarningsCount)
	})

	t.Run("vip demoted at two", func(t *testing.T) {
		c := &models.Customer{
			Tier:                models.TierVIP,
			WarningsCount:       1,
			FreeDeliveryCredits: 2,
			VIPProgressSpend:    dec("250"),
			TotalSpent:          dec("250"),
		}
		sig := AddWarning(c)
		assert.Equal(t, CustomerSignal{Demoted: true}, sig)
		assert.Equal(t, models.TierRegistered, c.Tier)
		assert.Equal(t, 0, c.WarningsCount)
		assert.Equal(t, 0, c.FreeDeliveryCredits)
		assert.True(t, c.VIPProgressSpend.IsZero())
		assert.True(t, dec("250").Equal(c.TotalSpent), "lifetime spend survives demotion")
	})
}

func TestRemoveWarning_FloorsAtZero(t *testing.T) {
	c := &models.Customer{WarningsCount: 1}
	RemoveWarning(c)
	RemoveWarning(c)
	assert.Equal(t, 0, c.WarningsCount)
}

func TestEvaluateUpgrade(t *testing.T) {
	tests := []struct {
		name     string
		customer models.Customer
		want     bool
	}{
		{"spend threshold", models.Customer{Tier: models.TierRegistered, VIPProgressSpend: dec("100"), OrderCount: 1}, true},
		{"order threshold", models.Customer{Tier: models.TierRegistered, VIPProgressSpend: dec("20"), OrderCount: 3}, true},
		{"not yet", models.Customer{Tier: models.TierRegistered, VIPProgressSpend: dec("99.99"), OrderCount: 2}, false},
		{"blacklisted", models.Customer{Tier: models.TierRegistered, VIPProgressSpend: dec("500"), Blacklisted: true}, false},
		{"too many warnings", models.Customer{Tier: models.TierRegistered, OrderCount: 5, WarningsCount: 3}, false},
		{"already vip", models.Customer{Tier: models.TierVIP, OrderCount: 9}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.customer
			assert.Equal(t, tt.want, EvaluateUpgrade(&c))
			if tt.want {
				assert.Equal(t, models.TierVIP, c.Tier)
				assert.Equal(t, tt.customer.FreeDeliveryCredits+1, c.FreeDeliveryCredits)
			} else {
				assert.Equal(t, tt.customer.FreeDeliveryCredits, c.FreeDeliveryCredits)
			}
		})
	}
}
