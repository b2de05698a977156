package reputation

import (
	"context"
	"testing"
	"time"

	"food-marketplace/apperr"
	"food-marketplace/models"
	"food-marketplace/store/storetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileComplaint(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	chef := storetest.Employee(t, db, models.KindChef, "3000")
	regular := storetest.Customer(t, db, "0")
	vip := storetest.Customer(t, db, "0", func(c *models.Customer) { c.Tier = models.TierVIP })

	c, err := svc.FileComplaint(ctx, FileInput{FilerID: regular.UserID, TargetType: models.TargetChef, TargetID: chef.UserID, Description: "cold soup"})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Weight)
	assert.Equal(t, models.ComplaintPending, c.Status)

	c, err = svc.FileComplaint(ctx, FileInput{FilerID: vip.UserID, TargetType: models.TargetChef, TargetID: chef.UserID, Description: "cold soup again"})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Weight, "VIP filings count double")

	missing := uint(9999)
	tests := []struct {
		name string
		in   FileInput
		kind apperr.Kind
	}{
		{"wrong target type", FileInput{FilerID: regular.UserID, TargetType: models.TargetDelivery, TargetID: chef.UserID, Description: "x"}, apperr.KindValidation},
		{"self", FileInput{FilerID: regular.UserID, TargetType: models.TargetCustomer, TargetID: regular.UserID, Description: "x"}, apperr.KindValidation},
		{"unknown type", FileInput{FilerID: regular.UserID, TargetType: "robot", TargetID: chef.UserID, Description: "x"}, apperr.KindValidation},
		{"empty description", FileInput{FilerID: regular.UserID, TargetType: models.TargetChef, TargetID: chef.UserID}, apperr.KindValidation},
		{"unknown target", FileInput{FilerID: regular.UserID, TargetType: models.TargetChef, TargetID: missing, Description: "x"}, apperr.KindNotFound},
		{"unknown order", FileInput{FilerID: regular.UserID, TargetType: models.TargetChef, TargetID: chef.UserID, OrderID: &missing, Description: "x"}, apperr.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.FileComplaint(ctx, tt.in)
			assert.Equal(t, tt.kind, apperr.KindOf(err), "got %v", err)
		})
	}
}

func fileAgainst(t *testing.T, svc *Service, filer, target uint, kind models.TargetType) *models.Complaint {
	t.Helper()
	c, err := svc.FileComplaint(context.Background(), FileInput{FilerID: filer, TargetType: kind, TargetID: target, Description: "late and rude"})
	require.NoError(t, err)
	return c
}

func TestAdjudicateComplaint_ComplimentAbsorbsComplaint(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	manager := storetest.Manager(t, db)
	customer := storetest.Customer(t, db, "0")
	chef := storetest.Employee(t, db, models.KindChef, "3000", func(e *models.Employee) { e.ComplimentCount = 1 })

	c := fileAgainst(t, svc, customer.UserID, chef.UserID, models.TargetChef)
	out, err := svc.AdjudicateComplaint(context.Background(), manager.ID, c.ID, Upheld, "")
	require.NoError(t, err)
	assert.True(t, out.Employee.Cancelled)
	assert.Equal(t, models.ComplaintCancelled, out.Complaint.Status)

	var e models.Employee
	storetest.Reload(t, db, &e, chef.UserID)
	assert.Zero(t, e.ComplimentCount)
	assert.Zero(t, e.ComplaintCount)

	var stored models.Complaint
	storetest.Reload(t, db, &stored, c.ID)
	assert.Equal(t, models.ComplaintCancelled, stored.Status)
}

func TestAdjudicateComplaint_ThirdComplaintDemotes(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	manager := storetest.Manager(t, db)
	customer := storetest.Customer(t, db, "0")
	chef := storetest.Employee(t, db, models.KindChef, "3000", func(e *models.Employee) { e.ComplaintCount = 2 })

	c := fileAgainst(t, svc, customer.UserID, chef.UserID, models.TargetChef)
	out, err := svc.AdjudicateComplaint(ctx, manager.ID, c.ID, Upheld, "confirmed by the driver")
	require.NoError(t, err)
	assert.True(t, out.Employee.Demoted)
	assert.False(t, out.Employee.Terminated)
	assert.Equal(t, "confirmed by the driver", out.Complaint.ManagerNotes)

	var e models.Employee
	storetest.Reload(t, db, &e, chef.UserID)
	assert.True(t, decimal.NewFromInt(2700).Equal(e.Salary), "salary %s", e.Salary)
	assert.Zero(t, e.ComplaintCount)
	assert.Equal(t, 1, e.DemotionCount)

	_, err = svc.AdjudicateComplaint(ctx, manager.ID, c.ID, Upheld, "")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	storetest.Reload(t, db, &e, chef.UserID)
	assert.Equal(t, 1, e.DemotionCount, "a second ruling has no side effects")
	assert.Zero(t, e.ComplaintCount)
}

func TestAdjudicateComplaint_SecondDemotionSignalsTermination(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	manager := storetest.Manager(t, db)
	customer := storetest.Customer(t, db, "0")
	courier := storetest.Employee(t, db, models.KindDelivery, "1000", func(e *models.Employee) {
		e.ComplaintCount = 2
		e.DemotionCount = 1
	})

	c := fileAgainst(t, svc, customer.UserID, courier.UserID, models.TargetDelivery)
	out, err := svc.AdjudicateComplaint(context.Background(), manager.ID, c.ID, Upheld, "")
	require.NoError(t, err)
	assert.True(t, out.Employee.Terminated)

	var e models.Employee
	storetest.Reload(t, db, &e, courier.UserID)
	assert.NotNil(t, e.TerminatedAt, "terminated by the same ruling")
	var u models.User
	assert.Error(t, db.First(&u, courier.UserID).Error, "user is removed")
}

func TestAdjudicateComplaint_TerminatedTargetKeepsStanding(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	manager := storetest.Manager(t, db)
	customer := storetest.Customer(t, db, "0")
	chef := storetest.Employee(t, db, models.KindChef, "3000", func(e *models.Employee) { e.ComplaintCount = 2 })

	c := fileAgainst(t, svc, customer.UserID, chef.UserID, models.TargetChef)
	require.NoError(t, db.Model(chef).Update("terminated_at", time.Now()).Error)

	out, err := svc.AdjudicateComplaint(ctx, manager.ID, c.ID, Upheld, "")
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintUpheld, out.Complaint.Status)
	assert.Equal(t, EmployeeSignal{}, out.Employee)

	var got models.Employee
	storetest.Reload(t, db, &got, chef.UserID)
	assert.Equal(t, 2, got.ComplaintCount)
	assert.Zero(t, got.DemotionCount)
	assert.True(t, decimal.NewFromInt(3000).Equal(got.Salary))
}

func TestAdjudicateComplaint_AgainstCustomer(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	manager := storetest.Manager(t, db)
	courier := storetest.Employee(t, db, models.KindDelivery, "1000")
	customer := storetest.Customer(t, db, "0", func(c *models.Customer) { c.WarningsCount = 2 })

	c := fileAgainst(t, svc, courier.UserID, customer.UserID, models.TargetCustomer)
	out, err := svc.AdjudicateComplaint(ctx, manager.ID, c.ID, Upheld, "")
	require.NoError(t, err)
	assert.True(t, out.Customer.Blacklisted)

	var got models.Customer
	storetest.Reload(t, db, &got, customer.UserID)
	assert.Equal(t, 3, got.WarningsCount)
	assert.True(t, got.Blacklisted)
}

func TestAdjudicateComplaint_DismissedAfterDispute(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	manager := storetest.Manager(t, db)
	complainant := storetest.Customer(t, db, "0")
	target := storetest.Customer(t, db, "0", func(c *models.Customer) { c.WarningsCount = 1 })

	c := fileAgainst(t, svc, complainant.UserID, target.UserID, models.TargetCustomer)
	_, err := svc.DisputeComplaint(ctx, target.UserID, c.ID, "I was never there")
	require.NoError(t, err)

	out, err := svc.AdjudicateComplaint(ctx, manager.ID, c.ID, Dismissed, "no evidence")
	require.NoError(t, err)
	assert.True(t, out.WarnedComplainant)
	assert.True(t, out.WarningRemoved)

	var filer, disputer models.Customer
	storetest.Reload(t, db, &filer, complainant.UserID)
	assert.Equal(t, 1, filer.WarningsCount)
	storetest.Reload(t, db, &disputer, target.UserID)
	assert.Zero(t, disputer.WarningsCount)
}

func TestAdjudicateComplaint_Rejections(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	manager := storetest.Manager(t, db)
	customer := storetest.Customer(t, db, "0")
	chef := storetest.Employee(t, db, models.KindChef, "3000")
	c := fileAgainst(t, svc, customer.UserID, chef.UserID, models.TargetChef)

	_, err := svc.AdjudicateComplaint(ctx, customer.UserID, c.ID, Upheld, "")
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))

	_, err = svc.AdjudicateComplaint(ctx, manager.ID, c.ID, "maybe", "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.AdjudicateComplaint(ctx, manager.ID, 9999, Upheld, "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	var stored models.Complaint
	storetest.Reload(t, db, &stored, c.ID)
	assert.Equal(t, models.ComplaintPending, stored.Status)
}

func TestDisputeComplaint(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	manager := storetest.Manager(t, db)
	customer := storetest.Customer(t, db, "0")
	chef := storetest.Employee(t, db, models.KindChef, "3000")
	c := fileAgainst(t, svc, customer.UserID, chef.UserID, models.TargetChef)

	_, err := svc.DisputeComplaint(ctx, customer.UserID, c.ID, "not me")
	assert.True(t, apperr.Is(err, apperr.KindAuthorization), "only the target disputes")

	_, err = svc.DisputeComplaint(ctx, chef.UserID, c.ID, "   ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	got, err := svc.DisputeComplaint(ctx, chef.UserID, c.ID, "the soup left hot")
	require.NoError(t, err)
	assert.Equal(t, "the soup left hot", got.DisputeText)
	assert.NotNil(t, got.DisputedAt)

	_, err = svc.DisputeComplaint(ctx, chef.UserID, c.ID, "and again")
	assert.True(t, apperr.Is(err, apperr.KindConflict), "one dispute per complaint")

	other := fileAgainst(t, svc, customer.UserID, chef.UserID, models.TargetChef)
	_, err = svc.AdjudicateComplaint(ctx, manager.ID, other.ID, Dismissed, "")
	require.NoError(t, err)
	_, err = svc.DisputeComplaint(ctx, chef.UserID, other.ID, "too late")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestAdjudicateCompliment(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	manager := storetest.Manager(t, db)
	customer := storetest.Customer(t, db, "0")
	chef := storetest.Employee(t, db, models.KindChef, "3000", func(e *models.Employee) { e.ComplimentCount = 2 })

	comp, err := svc.FileCompliment(ctx, FileInput{FilerID: customer.UserID, TargetType: models.TargetChef, TargetID: chef.UserID, Description: "best risotto"})
	require.NoError(t, err)

	out, err := svc.AdjudicateCompliment(ctx, manager.ID, comp.ID, true)
	require.NoError(t, err)
	assert.True(t, out.Employee.Bonus)
	assert.Equal(t, models.ComplimentApproved, out.Compliment.Status)

	var e models.Employee
	storetest.Reload(t, db, &e, chef.UserID)
	assert.Zero(t, e.ComplimentCount)

	_, err = svc.AdjudicateCompliment(ctx, manager.ID, comp.ID, false)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestAdjudicateCompliment_ClearsCustomerWarning(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	manager := storetest.Manager(t, db)
	courier := storetest.Employee(t, db, models.KindDelivery, "1000")
	customer := storetest.Customer(t, db, "0", func(c *models.Customer) { c.WarningsCount = 2 })

	comp, err := svc.FileCompliment(ctx, FileInput{FilerID: courier.UserID, TargetType: models.TargetCustomer, TargetID: customer.UserID, Description: "tipped well"})
	require.NoError(t, err)

	out, err := svc.AdjudicateCompliment(ctx, manager.ID, comp.ID, true)
	require.NoError(t, err)
	assert.True(t, out.WarningRemoved)

	var got models.Customer
	storetest.Reload(t, db, &got, customer.UserID)
	assert.Equal(t, 1, got.WarningsCount)

	pending, err := svc.Compliments(ctx, models.ComplimentPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
