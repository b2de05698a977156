package accounts

import (
	"context"
	"testing"

	"food-marketplace/apperr"
	"food-marketplace/models"
	"food-marketplace/store/storetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Fire(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	manager := storetest.Manager(t, db)
	courier := storetest.Employee(t, db, models.KindDelivery, "1500")

	err := svc.Fire(ctx, courier.UserID, courier.UserID, "self")
	assert.True(t, apperr.Is(err, apperr.KindAuthorization), "only managers fire")

	require.NoError(t, svc.Fire(ctx, manager.ID, courier.UserID, "no-shows"))

	var emp models.Employee
	require.NoError(t, db.First(&emp, courier.UserID).Error)
	assert.NotNil(t, emp.TerminatedAt)
	_, err = svc.Get(ctx, courier.UserID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = svc.Fire(ctx, manager.ID, courier.UserID, "again")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	err = svc.Fire(ctx, manager.ID, 424242, "ghost")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestService_AdjustSalary(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	manager := storetest.Manager(t, db)
	chef := storetest.Employee(t, db, models.KindChef, "3000")

	tests := []struct {
		name   string
		change SalaryChange
		want   string
	}{
		{"flat raise", SalaryChange{Action: SalaryRaise, Amount: decimal.NewFromInt(250)}, "3250"},
		{"percentage cut", SalaryChange{Action: SalaryCut, Amount: decimal.NewFromInt(10), Percentage: true}, "2925"},
		{"flat cut", SalaryChange{Action: SalaryCut, Amount: decimal.RequireFromString("0.50")}, "2924.50"},
	}
	for _, tt := range tests {
		out, err := svc.AdjustSalary(ctx, manager.ID, chef.UserID, tt.change)
		require.NoError(t, err, tt.name)
		assert.True(t, decimal.RequireFromString(tt.want).Equal(out.NewSalary), "%s: got %s", tt.name, out.NewSalary)
	}

	var emp models.Employee
	require.NoError(t, db.First(&emp, chef.UserID).Error)
	assert.True(t, decimal.RequireFromString("2924.50").Equal(emp.Salary))

	rejects := []struct {
		name   string
		change SalaryChange
		kind   apperr.Kind
	}{
		{"zero amount", SalaryChange{Action: SalaryRaise}, apperr.KindValidation},
		{"unknown action", SalaryChange{Action: "double", Amount: decimal.NewFromInt(1)}, apperr.KindValidation},
		{"below zero", SalaryChange{Action: SalaryCut, Amount: decimal.NewFromInt(5000)}, apperr.KindValidation},
	}
	for _, tt := range rejects {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AdjustSalary(ctx, manager.ID, chef.UserID, tt.change)
			assert.Equal(t, tt.kind, apperr.KindOf(err), "got %v", err)
		})
	}
}

func TestService_AwardBonus(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	manager := storetest.Manager(t, db)
	chef := storetest.Employee(t, db, models.KindChef, "3000")

	out, err := svc.AwardBonus(ctx, manager.ID, chef.UserID, decimal.NewFromInt(200), "three compliments")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3000).Equal(out.OldSalary))
	assert.True(t, decimal.NewFromInt(3200).Equal(out.NewSalary))

	require.NoError(t, svc.Fire(ctx, manager.ID, chef.UserID, "walked out"))
	_, err = svc.AwardBonus(ctx, manager.ID, chef.UserID, decimal.NewFromInt(200), "late")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}
