// Package accounts models marketplace participants as an explicit variant:
// every user is exactly one of Customer, Chef, DeliveryPerson or Manager, and
// role-specific profiles are created together with the user.
package accounts

import (
	"fmt"

	"food-marketplace/apperr"
	"food-marketplace/models"
	"food-marketplace/store"

	"gorm.io/gorm"
)

// Account is implemented only by the variants in this package.
type Account interface {
	ID() uint
	Role() models.UserRole
	Identity() models.User
	account()
}

type Customer struct {
	User    models.User     `json:"user"`
	Profile models.Customer `json:"profile"`
}

type Chef struct {
	User     models.User     `json:"user"`
	Employee models.Employee `json:"employee"`
}

type DeliveryPerson struct {
	User     models.User     `json:"user"`
	Employee models.Employee `json:"employee"`
}

type Manager struct {
	User models.User `json:"user"`
}

func (a *Customer) ID() uint              { return a.User.ID }
func (a *Customer) Role() models.UserRole { return models.RoleCustomer }
func (a *Customer) Identity() models.User { return a.User }
func (*Customer) account()                {}

func (a *Chef) ID() uint              { return a.User.ID }
func (a *Chef) Role() models.UserRole { return models.RoleChef }
func (a *Chef) Identity() models.User { return a.User }
func (*Chef) account()                {}

func (a *DeliveryPerson) ID() uint              { return a.User.ID }
func (a *DeliveryPerson) Role() models.UserRole { return models.RoleDelivery }
func (a *DeliveryPerson) Identity() models.User { return a.User }
func (*DeliveryPerson) account()                {}

func (a *Manager) ID() uint              { return a.User.ID }
func (a *Manager) Role() models.UserRole { return models.RoleManager }
func (a *Manager) Identity() models.User { return a.User }
func (*Manager) account()                {}

// Lookup loads the account variant for userID using db, which may be a
// transaction. Terminated and closed accounts are soft-deleted and not found.
func Lookup(db *gorm.DB, userID uint) (Account, error) {
	var u models.User
	if err := db.First(&u, userID).Error; err != nil {
		if store.IsNotFound(err) {
			return nil, apperr.NotFound("account %d not found", userID)
		}
		return nil, fmt.Errorf("accounts.Lookup: %w", err)
	}

	switch u.Role {
	case models.RoleCustomer:
		a := &Customer{User: u}
		if err := db.First(&a.Profile, u.ID).Error; err != nil {
			return nil, fmt.Errorf("accounts.Lookup: customer profile %d: %w", u.ID, err)
		}
		return a, nil
	case models.RoleChef, models.RoleDelivery:
		var e models.Employee
		if err := db.First(&e, u.ID).Error; err != nil {
			return nil, fmt.Errorf("accounts.Lookup: employee profile %d: %w", u.ID, err)
		}
		if u.Role == models.RoleChef {
			return &Chef{User: u, Employee: e}, nil
		}
		return &DeliveryPerson{User: u, Employee: e}, nil
	case models.RoleManager:
		return &Manager{User: u}, nil
	}
	return nil, fmt.Errorf("accounts.Lookup: user %d has unknown role %q", u.ID, u.Role)
}

func requireRole[T Account](db *gorm.DB, userID uint, role models.UserRole) (T, error) {
	var zero T
	a, err := Lookup(db, userID)
	if err != nil {
		return zero, err
	}
	v, ok := a.(T)
	if !ok {
		return zero, apperr.Authorization("account %d is a %s, not a %s", userID, a.Role(), role)
	}
	return v, nil
}

// RequireManager returns the manager with userID or an AuthorizationError.
func RequireManager(db *gorm.DB, userID uint) (*Manager, error) {
	return requireRole[*Manager](db, userID, models.RoleManager)
}

// RequireCustomer returns the customer with userID or an AuthorizationError.
func RequireCustomer(db *gorm.DB, userID uint) (*Customer, error) {
	return requireRole[*Customer](db, userID, models.RoleCustomer)
}

// RequireChef returns the chef with userID or an AuthorizationError.
func RequireChef(db *gorm.DB, userID uint) (*Chef, error) {
	return requireRole[*Chef](db, userID, models.RoleChef)
}

// RequireDeliveryPerson returns the delivery person with userID or an
// AuthorizationError.
func RequireDeliveryPerson(db *gorm.DB, userID uint) (*DeliveryPerson, error) {
	return requireRole[*DeliveryPerson](db, userID, models.RoleDelivery)
}
