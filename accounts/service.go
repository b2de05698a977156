package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"food-marketplace/apperr"
	"food-marketplace/ledger"
	"food-marketplace/models"
	"food-marketplace/store"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewAccount is the input for creating an account of a given role.
type NewAccount struct {
	Name           string          `validate:"required"`
	Email          string          `validate:"required,email"`
	Password       string          `validate:"required,min=6"`
	Role           models.UserRole `validate:"required"`
	Phone          string
	DefaultAddress string
	Salary         decimal.Decimal // employees only
}

type Service struct {
	db       *gorm.DB
	validate *validator.Validate
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, validate: validator.New()}
}

// Create stores the user and its role profile in a single transaction.
func (s *Service) Create(ctx context.Context, in NewAccount) (Account, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.FromValidator(err)
	}
	if !in.Role.Valid() {
		return nil, apperr.Validation("invalid role %q. Must be: customer, chef, delivery, or manager", in.Role)
	}
	if in.Salary.IsNegative() {
		return nil, apperr.Validation("salary must not be negative")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("accounts.Create: hash password: %w", err)
	}

	var created Account
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Unscoped().Model(&models.User{}).Where("email = ?", in.Email).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.Conflict("email %s already registered", in.Email)
		}

		user := models.User{
			Name:         in.Name,
			Email:        in.Email,
			PasswordHash: string(hash),
			Role:         in.Role,
			Phone:        in.Phone,
		}
		if err := tx.Create(&user).Error; err != nil {
			if store.IsUniqueViolation(err) {
				return apperr.Conflict("email %s already registered", in.Email)
			}
			return err
		}

		switch in.Role {
		case models.RoleCustomer:
			profile := models.Customer{
				UserID:         user.ID,
				Tier:           models.TierRegistered,
				Balance:        decimal.Zero,
				DefaultAddress: in.DefaultAddress,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			created = &Customer{User: user, Profile: profile}
		case models.RoleChef, models.RoleDelivery:
			kind := models.KindChef
			if in.Role == models.RoleDelivery {
				kind = models.KindDelivery
			}
			emp := models.Employee{UserID: user.ID, Kind: kind, Salary: in.Salary.Round(2)}
			if err := tx.Create(&emp).Error; err != nil {
				return err
			}
			if kind == models.KindChef {
				created = &Chef{User: user, Employee: emp}
			} else {
				created = &DeliveryPerson{User: user, Employee: emp}
			}
		case models.RoleManager:
			created = &Manager{User: user}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap("accounts.Create", err)
	}

	log.Info().Uint("user_id", created.ID()).Str("role", string(in.Role)).Msg("accounts: account created")
	return created, nil
}

// Authenticate checks credentials and returns the account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Account, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apperr.Authorization("invalid email or password")
		}
		return nil, fmt.Errorf("accounts.Authenticate: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Authorization("invalid email or password")
	}
	return Lookup(s.db.WithContext(ctx), u.ID)
}

func (s *Service) Get(ctx context.Context, userID uint) (Account, error) {
	return Lookup(s.db.WithContext(ctx), userID)
}

// Close shuts a customer account on a manager's behalf, paying out and
// zeroing the remaining balance. It returns the amount paid out.
func (s *Service) Close(ctx context.Context, managerID, customerID uint) (decimal.Decimal, error) {
	var paidOut decimal.Decimal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := RequireManager(tx, managerID); err != nil {
			return err
		}
		c, err := ledger.Lock(tx, customerID)
		if err != nil {
			return err
		}
		if c.ClosedAt != nil {
			return apperr.Conflict("account %d is already closed", customerID)
		}
		paidOut = c.Balance
		if c.Balance.IsPositive() {
			if _, err := ledger.Debit(tx, c, c.Balance, ledger.Entry{
				Type: models.TxAccountClosure,
				Note: fmt.Sprintf("closed by manager %d", managerID),
			}); err != nil {
				return err
			}
		}
		now := time.Now()
		if err := tx.Model(c).Update("closed_at", now).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, customerID).Error
	})
	if err != nil {
		return decimal.Zero, apperr.Wrap("accounts.Close", err)
	}
	log.Info().Uint("customer_id", customerID).Uint("manager_id", managerID).
		Str("paid_out", paidOut.StringFixed(2)).Msg("accounts: customer account closed")
	return paidOut, nil
}
