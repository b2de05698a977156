package ratings

import (
	"context"
	"testing"

	"food-marketplace/apperr"
	"food-marketplace/models"
	"food-marketplace/reputation"
	"food-marketplace/store/storetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// seedDelivered seeds a delivered order for the customer carrying one line per
// dish and, optionally, a delivery person.
func seedDelivered(t *testing.T, db *gorm.DB, customerID uint, courier *models.Employee, dishes ...*models.MenuItem) *models.Order {
	t.Helper()
	o := storetest.Order(t, db, customerID, models.StatusDelivered, dishes...)
	if courier != nil {
		require.NoError(t, db.Model(o).Update("delivery_person_id", courier.UserID).Error)
		o.DeliveryPersonID = &courier.UserID
	}
	return o
}

func TestRateFood_RecomputesDishAndChef(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	chef := storetest.Employee(t, db, models.KindChef, "3000")
	pasta := storetest.MenuItem(t, db, chef.UserID, "10")
	salad := storetest.MenuItem(t, db, chef.UserID, "8")
	alice := storetest.Customer(t, db, "0")
	bob := storetest.Customer(t, db, "0")

	a := seedDelivered(t, db, alice.UserID, nil, pasta, salad)
	b := seedDelivered(t, db, bob.UserID, nil, pasta)

	res, err := svc.RateFood(ctx, alice.UserID, a.Items[0].ID, 5, "perfect")
	require.NoError(t, err)
	assert.InDelta(t, 5.0, res.DishAverage, 1e-9)

	res, err = svc.RateFood(ctx, bob.UserID, b.Items[0].ID, 4, "")
	require.NoError(t, err)
	assert.InDelta(t, 4.5, res.DishAverage, 1e-9)

	res, err = svc.RateFood(ctx, alice.UserID, a.Items[1].ID, 3, "bland")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, res.DishAverage, 1e-9)
	assert.InDelta(t, 4.0, res.ChefAverage, 1e-9, "chef mean spans every dish")
	assert.False(t, res.Chef.Demoted)

	var dish models.MenuItem
	storetest.Reload(t, db, &dish, pasta.ID)
	assert.Equal(t, 2, dish.TotalOrders)
	assert.InDelta(t, 4.5, dish.AverageRating, 1e-9)

	var e models.Employee
	storetest.Reload(t, db, &e, chef.UserID)
	assert.Equal(t, 3, e.RatingCount)
	assert.InDelta(t, 4.0, e.AverageRating, 1e-9)
}

func TestRateFood_LowAverageDemotesChef(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	chef := storetest.Employee(t, db, models.KindChef, "3000")
	dish := storetest.MenuItem(t, db, chef.UserID, "10")
	customer := storetest.Customer(t, db, "0")
	o := seedDelivered(t, db, customer.UserID, nil, dish)

	res, err := svc.RateFood(context.Background(), customer.UserID, o.Items[0].ID, 1, "inedible")
	require.NoError(t, err)
	assert.True(t, res.Chef.Demoted)

	var e models.Employee
	storetest.Reload(t, db, &e, chef.UserID)
	assert.True(t, decimal.NewFromInt(2700).Equal(e.Salary))
	assert.Equal(t, 1, e.DemotionCount)
}

func TestRateDelivery_SecondDemotionTerminates(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	chef := storetest.Employee(t, db, models.KindChef, "3000")
	courier := storetest.Employee(t, db, models.KindDelivery, "1500", func(e *models.Employee) { e.DemotionCount = 1 })
	dish := storetest.MenuItem(t, db, chef.UserID, "10")
	customer := storetest.Customer(t, db, "0")
	o := seedDelivered(t, db, customer.UserID, courier, dish)

	res, err := svc.RateDelivery(ctx, customer.UserID, o.ID, 1, "never arrived")
	require.NoError(t, err)
	assert.True(t, res.DeliveryPerson.Terminated)

	var e models.Employee
	storetest.Reload(t, db, &e, courier.UserID)
	assert.NotNil(t, e.TerminatedAt)
	assert.Equal(t, 2, e.DemotionCount)

	// later ratings still count toward the average but change nothing else
	again := seedDelivered(t, db, customer.UserID, courier, dish)
	res, err = svc.RateDelivery(ctx, customer.UserID, again.ID, 1, "still late")
	require.NoError(t, err)
	assert.Equal(t, reputation.EmployeeSignal{}, res.DeliveryPerson)
	storetest.Reload(t, db, &e, courier.UserID)
	assert.Equal(t, 2, e.DemotionCount)
	assert.Equal(t, 2, e.RatingCount)
}

func TestRateFood_Rejections(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	chef := storetest.Employee(t, db, models.KindChef, "3000")
	dish := storetest.MenuItem(t, db, chef.UserID, "10")
	owner := storetest.Customer(t, db, "0")
	stranger := storetest.Customer(t, db, "0")
	delivered := seedDelivered(t, db, owner.UserID, nil, dish)
	pending := storetest.Order(t, db, owner.UserID, models.StatusPending, dish)

	_, err := svc.RateFood(ctx, owner.UserID, delivered.Items[0].ID, 4, "")
	require.NoError(t, err)

	tests := []struct {
		name     string
		customer uint
		itemID   uint
		stars    int
		kind     apperr.Kind
	}{
		{"duplicate", owner.UserID, delivered.Items[0].ID, 5, apperr.KindConflict},
		{"too many stars", owner.UserID, delivered.Items[0].ID, 6, apperr.KindValidation},
		{"zero stars", owner.UserID, delivered.Items[0].ID, 0, apperr.KindValidation},
		{"not delivered", owner.UserID, pending.Items[0].ID, 4, apperr.KindValidation},
		{"not the owner", stranger.UserID, delivered.Items[0].ID, 4, apperr.KindAuthorization},
		{"unknown item", owner.UserID, 9999, 4, apperr.KindNotFound},
		{"not a customer", chef.UserID, delivered.Items[0].ID, 4, apperr.KindAuthorization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RateFood(ctx, tt.customer, tt.itemID, tt.stars, "")
			assert.Equal(t, tt.kind, apperr.KindOf(err), "got %v", err)
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.FoodRating{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRateDelivery(t *testing.T) {
	db := storetest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	chef := storetest.Employee(t, db, models.KindChef, "3000")
	dish := storetest.MenuItem(t, db, chef.UserID, "10")
	courier := storetest.Employee(t, db, models.KindDelivery, "1000")
	customer := storetest.Customer(t, db, "0")

	first := seedDelivered(t, db, customer.UserID, courier, dish)
	second := seedDelivered(t, db, customer.UserID, courier, dish)
	unassigned := seedDelivered(t, db, customer.UserID, nil, dish)

	res, err := svc.RateDelivery(ctx, customer.UserID, first.ID, 5, "quick")
	require.NoError(t, err)
	assert.InDelta(t, 5.0, res.DeliveryAverage, 1e-9)

	res, err = svc.RateDelivery(ctx, customer.UserID, second.ID, 2, "")
	require.NoError(t, err)
	assert.InDelta(t, 3.5, res.DeliveryAverage, 1e-9)
	assert.False(t, res.DeliveryPerson.Demoted)

	_, err = svc.RateDelivery(ctx, customer.UserID, first.ID, 1, "")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = svc.RateDelivery(ctx, customer.UserID, unassigned.ID, 4, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	var e models.Employee
	storetest.Reload(t, db, &e, courier.UserID)
	assert.Equal(t, 2, e.RatingCount)
	assert.InDelta(t, 3.5, e.AverageRating, 1e-9)
}
