package reputation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"food-marketplace/accounts"
	"food-marketplace/apperr"
	"food-marketplace/ledger"
	"food-marketplace/models"
	"food-marketplace/store"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// FileInput is a complaint or compliment as submitted by any account.
type FileInput struct {
	FilerID     uint              `validate:"required"`
	TargetType  models.TargetType `validate:"required,oneof=chef delivery customer"`
	TargetID    uint              `validate:"required"`
	OrderID     *uint
	Description string `validate:"required,max=2000"`
}

// Decision is a manager's ruling on a complaint.
type Decision string

const (
	Upheld    Decision = "upheld"
	Dismissed Decision = "dismissed"
)

// Adjudication is the outcome of ruling on a complaint.
type Adjudication struct {
	Complaint         models.Complaint `json:"complaint"`
	Employee          EmployeeSignal   `json:"employee"`
	Customer          CustomerSignal   `json:"customer"`
	WarnedComplainant bool             `json:"warned_complainant"`
	WarningRemoved    bool             `json:"warning_removed"`
}

// ComplimentOutcome is the outcome of ruling on a compliment.
type ComplimentOutcome struct {
	Compliment     models.Compliment `json:"compliment"`
	Employee       EmployeeSignal    `json:"employee"`
	WarningRemoved bool              `json:"warning_removed"`
}

type Service struct {
	db       *gorm.DB
	validate *validator.Validate
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, validate: validator.New()}
}

// checkFiling validates in against the database and returns the weight the
// filing carries.
func (s *Service) checkFiling(tx *gorm.DB, in FileInput) (int, error) {
	if err := s.validate.Struct(in); err != nil {
		return 0, apperr.FromValidator(err)
	}
	if in.FilerID == in.TargetID {
		return 0, apperr.Validation("accounts cannot file about themselves")
	}

	filer, err := accounts.Lookup(tx, in.FilerID)
	if err != nil {
		return 0, err
	}
	target, err := accounts.Lookup(tx, in.TargetID)
	if err != nil {
		return 0, err
	}
	var matches bool
	switch in.TargetType {
	case models.TargetChef:
		_, matches = target.(*accounts.Chef)
	case models.TargetDelivery:
		_, matches = target.(*accounts.DeliveryPerson)
	case models.TargetCustomer:
		_, matches = target.(*accounts.Customer)
	}
	if !matches {
		return 0, apperr.Validation("account %d is a %s, not a %s", in.TargetID, target.Role(), in.TargetType)
	}

	if in.OrderID != nil {
		var n int64
		if err := tx.Model(&models.Order{}).Where("id = ?", *in.OrderID).Count(&n).Error; err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, apperr.NotFound("order %d not found", *in.OrderID)
		}
	}

	if c, ok := filer.(*accounts.Customer); ok && c.Profile.IsVIP() {
		return 2, nil
	}
	return 1, nil
}

// FileComplaint records a pending complaint.
func (s *Service) FileComplaint(ctx context.Context, in FileInput) (*models.Complaint, error) {
	var complaint *models.Complaint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		weight, err := s.checkFiling(tx, in)
		if err != nil {
			return err
		}
		complaint = &models.Complaint{
			ComplainantID: in.FilerID,
			TargetUserID:  in.TargetID,
			TargetType:    in.TargetType,
			OrderID:       in.OrderID,
			Description:   strings.TrimSpace(in.Description),
			Weight:        weight,
			Status:        models.ComplaintPending,
		}
		return tx.Create(complaint).Error
	})
	if err != nil {
		return nil, apperr.Wrap("reputation.FileComplaint", err)
	}
	log.Info().Uint("complaint_id", complaint.ID).Uint("target_id", in.TargetID).
		Str("target_type", string(in.TargetType)).Int("weight", complaint.Weight).Msg("reputation: complaint filed")
	return complaint, nil
}

// FileCompliment records a pending compliment.
func (s *Service) FileCompliment(ctx context.Context, in FileInput) (*models.Compliment, error) {
	var compliment *models.Compliment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		weight, err := s.checkFiling(tx, in)
		if err != nil {
			return err
		}
		compliment = &models.Compliment{
			AuthorID:     in.FilerID,
			TargetUserID: in.TargetID,
			TargetType:   in.TargetType,
			OrderID:      in.OrderID,
			Description:  strings.TrimSpace(in.Description),
			Weight:       weight,
			Status:       models.ComplimentPending,
		}
		return tx.Create(compliment).Error
	})
	if err != nil {
		return nil, apperr.Wrap("reputation.FileCompliment", err)
	}
	log.Info().Uint("compliment_id", compliment.ID).Uint("target_id", in.TargetID).
		Str("target_type", string(in.TargetType)).Msg("reputation: compliment filed")
	return compliment, nil
}

// AdjudicateComplaint rules on a pending complaint exactly once. An upheld
// complaint runs through the target's standing machine; a dismissed one warns
// a complaining customer and clears a warning from a customer target that
// disputed it.
func (s *Service) AdjudicateComplaint(ctx context.Context, managerID, complaintID uint, decision Decision, notes string) (*Adjudication, error) {
	if decision != Upheld && decision != Dismissed {
		return nil, apperr.Validation("decision must be %q or %q", Upheld, Dismissed)
	}

	out := &Adjudication{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := accounts.RequireManager(tx, managerID); err != nil {
			return err
		}
		res := tx.Model(&models.Complaint{}).
			Where("id = ? AND status = ?", complaintID, models.ComplaintPending).
			Updates(map[string]any{
				"status":        models.ComplaintStatus(decision),
				"manager_notes": strings.TrimSpace(notes),
				"processed_by":  managerID,
				"processed_at":  time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if err := tx.First(&out.Complaint, complaintID).Error; err != nil {
			if store.IsNotFound(err) {
				return apperr.NotFound("complaint %d not found", complaintID)
			}
			return err
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("complaint %d was already %s", complaintID, out.Complaint.Status)
		}

		c := &out.Complaint
		if decision == Upheld {
			return s.uphold(tx, out)
		}

		if warned, err := warnIfCustomer(tx, c.ComplainantID); err != nil {
			return err
		} else if warned != nil {
			out.WarnedComplainant = true
			out.Customer = *warned
		}
		if c.TargetType == models.TargetCustomer && c.DisputeText != "" {
			target, err := ledger.Lock(tx, c.TargetUserID)
			if err != nil {
				return err
			}
			before := target.WarningsCount
			RemoveWarning(target)
			out.WarningRemoved = target.WarningsCount < before
			return SaveCustomer(tx, target)
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Uint("complaint_id", complaintID).Msg("reputation: adjudication rejected")
		return nil, apperr.Wrap("reputation.AdjudicateComplaint", err)
	}

	log.Info().Uint("complaint_id", complaintID).Str("status", string(out.Complaint.Status)).
		Bool("demoted", out.Employee.Demoted).Bool("terminated", out.Employee.Terminated).
		Bool("blacklisted", out.Customer.Blacklisted).Msg("reputation: complaint adjudicated")
	return out, nil
}

func (s *Service) uphold(tx *gorm.DB, out *Adjudication) error {
	c := &out.Complaint
	if c.TargetType == models.TargetCustomer {
		target, err := ledger.Lock(tx, c.TargetUserID)
		if err != nil {
			return err
		}
		out.Customer = AddWarning(target)
		return SaveCustomer(tx, target)
	}

	e, err := LockEmployee(tx, c.TargetUserID)
	if err != nil {
		return err
	}
	// the ruling stands but a terminated employee's standing is frozen
	if e.TerminatedAt != nil {
		return nil
	}
	out.Employee = AddComplaint(e)
	if err := SaveEmployee(tx, e); err != nil {
		return err
	}
	if out.Employee.Terminated {
		if err := accounts.TerminateEmployee(tx, e, "second demotion"); err != nil {
			return err
		}
	}
	if out.Employee.Cancelled {
		c.Status = models.ComplaintCancelled
		return tx.Model(c).Update("status", models.ComplaintCancelled).Error
	}
	return nil
}

// warnIfCustomer warns userID when it is a customer account and reports the
// resulting signal, or nil when userID is not a customer.
func warnIfCustomer(tx *gorm.DB, userID uint) (*CustomerSignal, error) {
	c, err := ledger.Lock(tx, userID)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sig := AddWarning(c)
	if err := SaveCustomer(tx, c); err != nil {
		return nil, err
	}
	return &sig, nil
}

// LockEmployee loads an employee row for update inside tx.
func LockEmployee(tx *gorm.DB, userID uint) (*models.Employee, error) {
	var e models.Employee
	if err := store.ForUpdate(tx).First(&e, userID).Error; err != nil {
		if store.IsNotFound(err) {
			return nil, apperr.NotFound("employee %d not found", userID)
		}
		return nil, err
	}
	return &e, nil
}

// DisputeComplaint lets the target of a pending complaint answer it once.
func (s *Service) DisputeComplaint(ctx context.Context, targetUserID, complaintID uint, text string) (*models.Complaint, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("dispute text is required")
	}

	var complaint models.Complaint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Complaint{}).
			Where("id = ? AND target_user_id = ? AND status = ? AND (dispute_text = '' OR dispute_text IS NULL)",
				complaintID, targetUserID, models.ComplaintPending).
			Updates(map[string]any{"dispute_text": text, "disputed_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if err := tx.First(&complaint, complaintID).Error; err != nil {
			if store.IsNotFound(err) {
				return apperr.NotFound("complaint %d not found", complaintID)
			}
			return err
		}
		if res.RowsAffected == 1 {
			return nil
		}
		switch {
		case complaint.TargetUserID != targetUserID:
			return apperr.Authorization("only the target of complaint %d may dispute it", complaintID)
		case complaint.Status != models.ComplaintPending:
			return apperr.Conflict("complaint %d was already %s", complaintID, complaint.Status)
		default:
			return apperr.Conflict("complaint %d has already been disputed", complaintID)
		}
	})
	if err != nil {
		return nil, apperr.Wrap("reputation.DisputeComplaint", err)
	}
	log.Info().Uint("complaint_id", complaintID).Uint("target_id", targetUserID).Msg("reputation: complaint disputed")
	return &complaint, nil
}

// AdjudicateCompliment approves or dismisses a pending compliment exactly once.
func (s *Service) AdjudicateCompliment(ctx context.Context, managerID, complimentID uint, approve bool) (*ComplimentOutcome, error) {
	status := models.ComplimentDismissed
	if approve {
		status = models.ComplimentApproved
	}

	out := &ComplimentOutcome{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := accounts.RequireManager(tx, managerID); err != nil {
			return err
		}
		res := tx.Model(&models.Compliment{}).
			Where("id = ? AND status = ?", complimentID, models.ComplimentPending).
			Updates(map[string]any{"status": status, "processed_by": managerID, "processed_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if err := tx.First(&out.Compliment, complimentID).Error; err != nil {
			if store.IsNotFound(err) {
				return apperr.NotFound("compliment %d not found", complimentID)
			}
			return err
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("compliment %d was already %s", complimentID, out.Compliment.Status)
		}
		if !approve {
			return nil
		}

		if out.Compliment.TargetType == models.TargetCustomer {
			c, err := ledger.Lock(tx, out.Compliment.TargetUserID)
			if err != nil {
				return err
			}
			before := c.WarningsCount
			RemoveWarning(c)
			out.WarningRemoved = c.WarningsCount < before
			return SaveCustomer(tx, c)
		}
		e, err := LockEmployee(tx, out.Compliment.TargetUserID)
		if err != nil {
			return err
		}
		if e.TerminatedAt != nil {
			return nil
		}
		out.Employee = AddCompliment(e)
		return SaveEmployee(tx, e)
	})
	if err != nil {
		log.Warn().Err(err).Uint("compliment_id", complimentID).Msg("reputation: compliment ruling rejected")
		return nil, apperr.Wrap("reputation.AdjudicateCompliment", err)
	}
	log.Info().Uint("compliment_id", complimentID).Str("status", string(status)).
		Bool("bonus", out.Employee.Bonus).Msg("reputation: compliment adjudicated")
	return out, nil
}

// Complaints lists complaints, optionally filtered by status, oldest first.
func (s *Service) Complaints(ctx context.Context, status models.ComplaintStatus) ([]models.Complaint, error) {
	q := s.db.WithContext(ctx).Order("created_at asc, id asc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Complaint
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("reputation.Complaints: %w", err)
	}
	return out, nil
}

// Compliments lists compliments, optionally filtered by status, oldest first.
func (s *Service) Compliments(ctx context.Context, status models.ComplimentStatus) ([]models.Compliment, error) {
	q := s.db.WithContext(ctx).Order("created_at asc, id asc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Compliment
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("reputation.Compliments: %w", err)
	}
	return out, nil
}
