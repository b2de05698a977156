package storetest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"food-marketplace/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var seq atomic.Int64

func newUser(t testing.TB, db *gorm.DB, role models.UserRole) models.User {
	t.Helper()
	n := seq.Add(1)
	u := models.User{
		Name:         fmt.Sprintf("%s %d", role, n),
		Email:        fmt.Sprintf("%s%d@example.test", role, n),
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// Customer seeds a customer; mutate adjusts the profile before insert.
func Customer(t testing.TB, db *gorm.DB, balance string, mutate ...func(*models.Customer)) *models.Customer {
	t.Helper()
	u := newUser(t, db, models.RoleCustomer)
	c := &models.Customer{
		UserID:  u.ID,
		Tier:    models.TierRegistered,
		Balance: decimal.RequireFromString(balance),
	}
	for _, m := range mutate {
		m(c)
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

// Employee seeds a chef or delivery person with the given salary.
func Employee(t testing.TB, db *gorm.DB, kind models.EmployeeKind, salary string, mutate ...func(*models.Employee)) *models.Employee {
	t.Helper()
	role := models.RoleChef
	if kind == models.KindDelivery {
		role = models.RoleDelivery
	}
	u := newUser(t, db, role)
	e := &models.Employee{
		UserID: u.ID,
		Kind:   kind,
		Salary: decimal.RequireFromString(salary),
	}
	for _, m := range mutate {
		m(e)
	}
	require.NoError(t, db.Create(e).Error)
	return e
}

func Manager(t testing.TB, db *gorm.DB) models.User {
	t.Helper()
	return newUser(t, db, models.RoleManager)
}

func MenuItem(t testing.TB, db *gorm.DB, chefID uint, price string, mutate ...func(*models.MenuItem)) *models.MenuItem {
	t.Helper()
	item := &models.MenuItem{
		ChefID:      chefID,
		Name:        fmt.Sprintf("dish %d", seq.Add(1)),
		Price:       decimal.RequireFromString(price),
		IsAvailable: true,
	}
	for _, m := range mutate {
		m(item)
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

// Order seeds an order directly, bypassing checkout.
func Order(t testing.TB, db *gorm.DB, customerID uint, status models.OrderStatus, items ...*models.MenuItem) *models.Order {
	t.Helper()
	o := &models.Order{
		CustomerID:      customerID,
		Status:          status,
		Subtotal:        decimal.Zero,
		TotalPrice:      decimal.Zero,
		DeliveryAddress: "1 Test Street",
	}
	for _, item := range items {
		o.Items = append(o.Items, models.OrderItem{MenuItemID: item.ID, Quantity: 1, Price: item.Price, Name: item.Name})
		o.Subtotal = o.Subtotal.Add(item.Price)
	}
	o.TotalPrice = o.Subtotal
	require.NoError(t, db.Create(o).Error)
	return o
}

// Reload overwrites dest with the stored row for id. dest is zeroed first so a
// previously loaded primary key does not narrow the query.
func Reload[T any](t testing.TB, db *gorm.DB, dest *T, id uint) *T {
	t.Helper()
	var zero T
	*dest = zero
	require.NoError(t, db.First(dest, id).Error)
	return dest
}
