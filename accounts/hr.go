package accounts

import (
	"context"
	"strings"
	"time"

	"food-marketplace/apperr"
	"food-marketplace/models"
	"food-marketplace/store"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalaryAction is the direction of a manual salary change.
type SalaryAction string

const (
	SalaryRaise SalaryAction = "raise"
	SalaryCut   SalaryAction = "cut"
)

// SalaryChange raises or cuts a salary by Amount, read as a percentage of the
// current salary when Percentage is set.
type SalaryChange struct {
	Action     SalaryAction
	Amount     decimal.Decimal
	Percentage bool
}

// SalaryUpdate reports a salary before and after a manager's change.
type SalaryUpdate struct {
	EmployeeID uint            `json:"employee_id"`
	OldSalary  decimal.Decimal `json:"old_salary"`
	NewSalary  decimal.Decimal `json:"new_salary"`
}

// activeEmployee locks an employee row for a manager action. Terminated
// employees are out of reach.
func activeEmployee(tx *gorm.DB, managerID, employeeID uint) (*models.Employee, error) {
	if _, err := RequireManager(tx, managerID); err != nil {
		return nil, err
	}
	var e models.Employee
	if err := store.ForUpdate(tx).First(&e, employeeID).Error; err != nil {
		if store.IsNotFound(err) {
			return nil, apperr.NotFound("employee %d not found", employeeID)
		}
		return nil, err
	}
	if e.TerminatedAt != nil {
		return nil, apperr.Conflict("employee %d is already terminated", employeeID)
	}
	return &e, nil
}

// TerminateEmployee stamps e as terminated and soft-deletes its user so it can
// no longer log in, bid or be targeted. e must be locked in tx. Terminating an
// already terminated employee is a no-op. Reputation signals call it inside
// the transaction that produced the signal.
func TerminateEmployee(tx *gorm.DB, e *models.Employee, reason string) error {
	if e.TerminatedAt != nil {
		return nil
	}
	now := time.Now()
	if err := tx.Model(e).Update("terminated_at", now).Error; err != nil {
		return err
	}
	e.TerminatedAt = &now
	if err := tx.Delete(&models.User{}, e.UserID).Error; err != nil {
		return err
	}
	log.Warn().Uint("employee_id", e.UserID).Str("reason", reason).Msg("accounts: employee terminated")
	return nil
}

// Fire terminates an employee on a manager's decision.
func (s *Service) Fire(ctx context.Context, managerID, employeeID uint, reason string) error {
	reason = strings.TrimSpace(reason)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e, err := activeEmployee(tx, managerID, employeeID)
		if err != nil {
			return err
		}
		return TerminateEmployee(tx, e, "fired: "+reason)
	})
	if err != nil {
		log.Warn().Err(err).Uint("employee_id", employeeID).Msg("accounts: fire rejected")
		return apperr.Wrap("accounts.Fire", err)
	}
	log.Info().Uint("employee_id", employeeID).Uint("manager_id", managerID).Msg("accounts: employee fired")
	return nil
}

// AdjustSalary applies a manager's raise or cut. A cut may not take the
// salary below zero.
func (s *Service) AdjustSalary(ctx context.Context, managerID, employeeID uint, change SalaryChange) (*SalaryUpdate, error) {
	if !change.Amount.IsPositive() {
		return nil, apperr.Validation("amount must be positive")
	}
	if change.Action != SalaryRaise && change.Action != SalaryCut {
		return nil, apperr.Validation("invalid salary action %q. Must be: raise or cut", change.Action)
	}

	var out *SalaryUpdate
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e, err := activeEmployee(tx, managerID, employeeID)
		if err != nil {
			return err
		}
		delta := change.Amount
		if change.Percentage {
			delta = e.Salary.Mul(change.Amount).Div(decimal.NewFromInt(100))
		}
		if change.Action == SalaryCut {
			delta = delta.Neg()
		}
		next := e.Salary.Add(delta).Round(2)
		if next.IsNegative() {
			return apperr.Validation("salary cut of %s exceeds current salary %s", delta.Neg().StringFixed(2), e.Salary.StringFixed(2))
		}
		out = &SalaryUpdate{EmployeeID: employeeID, OldSalary: e.Salary, NewSalary: next}
		return tx.Model(e).Update("salary", next).Error
	})
	if err != nil {
		log.Warn().Err(err).Uint("employee_id", employeeID).Msg("accounts: salary change rejected")
		return nil, apperr.Wrap("accounts.AdjustSalary", err)
	}
	log.Info().Uint("employee_id", employeeID).Str("action", string(change.Action)).
		Str("old_salary", out.OldSalary.StringFixed(2)).Str("new_salary", out.NewSalary.StringFixed(2)).
		Msg("accounts: salary changed")
	return out, nil
}

// AwardBonus adds a one-off bonus to an employee's salary.
func (s *Service) AwardBonus(ctx context.Context, managerID, employeeID uint, amount decimal.Decimal, reason string) (*SalaryUpdate, error) {
	out, err := s.AdjustSalary(ctx, managerID, employeeID, SalaryChange{Action: SalaryRaise, Amount: amount})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("employee_id", employeeID).Str("amount", amount.StringFixed(2)).
		Str("reason", strings.TrimSpace(reason)).Msg("accounts: bonus awarded")
	return out, nil
}
