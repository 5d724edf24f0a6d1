package purchases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorsure/brokerage-backend/internal/notifications"
	"github.com/motorsure/brokerage-backend/internal/policynumber"
	"github.com/motorsure/brokerage-backend/pkg/db"
	"github.com/motorsure/brokerage-backend/pkg/db/models"
	"github.com/motorsure/brokerage-backend/pkg/enums"
	pkgerrors "github.com/motorsure/brokerage-backend/pkg/errors"
	"github.com/motorsure/brokerage-backend/pkg/logger"
	"github.com/motorsure/brokerage-backend/pkg/pagination"
)

// Actor identifies the authenticated principal performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role enums.ActorRole
}

// Service defines purchase lifecycle operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.Purchase, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Purchase, error)
	List(ctx context.Context, actor Actor, params ListParams) (*ListResult, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, params UpdateParams) (*models.Purchase, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	Notify(ctx context.Context, params notifications.CreateParams) error
}

// ServiceParams configure the purchases service.
type ServiceParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository Repository
	Allocator  *policynumber.Allocator
	Notifier   notifier
	Now        func() time.Time
}

type service struct {
	logg      *logger.Logger
	db        txRunner
	repo      Repository
	allocator *policynumber.Allocator
	notifier  notifier
	now       func() time.Time
}

// NewService wires purchase dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db runner required")
	}
	if params.Repository == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "purchases repository required")
	}
	if params.Allocator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "policy number allocator required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifier required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repository,
		allocator: params.Allocator,
		notifier:  params.Notifier,
		now:       now,
	}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.Purchase, error) {
	if params.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if params.RateID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate id required")
	}
	if params.Car.Brand == "" || params.Car.Model == "" || params.Car.Registration == "" || params.Car.Province == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "car brand, model, registration and province required")
	}

	paymentMethod := enums.PaymentMethodFull
	if params.PaymentMethod != "" {
		parsed, err := enums.ParsePaymentMethod(params.PaymentMethod)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "payment method")
		}
		paymentMethod = parsed
	}

	if err := s.checkReferences(ctx, params); err != nil {
		return nil, err
	}

	purchaseDate := s.now().UTC()
	purchase := &models.Purchase{}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		car := &models.Car{
			CustomerID:   params.CustomerID,
			Brand:        params.Car.Brand,
			Model:        params.Car.Model,
			SubModel:     params.Car.SubModel,
			Year:         params.Car.Year,
			Registration: params.Car.Registration,
			Province:     params.Car.Province,
			Color:        params.Car.Color,
		}
		if err := txRepo.CreateCar(ctx, car); err != nil {
			return fmt.Errorf("create car: %w", err)
		}

		policyNumber, err := s.allocator.AllocateTx(ctx, tx, purchaseDate.Year())
		if err != nil {
			return fmt.Errorf("allocate policy number: %w", err)
		}

		*purchase = models.Purchase{
			CustomerID:         params.CustomerID,
			AgentID:            params.AgentID,
			CarID:              car.ID,
			RateID:             params.RateID,
			PurchaseDate:       purchaseDate,
			PolicyNumber:       policyNumber,
			Status:             enums.PurchaseStatusPending,
			PaymentMethod:      paymentMethod,
			CitizenCardURI:     params.CitizenCardURI,
			CarRegistrationURI: params.CarRegistrationURI,
			PaymentSlipURI:     params.PaymentSlipURI,
			ConsentFormURI:     params.ConsentFormURI,
		}
		if err := txRepo.CreatePurchase(ctx, purchase); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "purchase conflicts with an existing record")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"purchase_id":   purchase.ID,
		"policy_number": purchase.PolicyNumber,
	})
	s.logg.Info(logCtx, "purchase created")

	if params.AgentID != nil {
		s.notify(ctx, notifications.CreateParams{
			RecipientID:       *params.AgentID,
			RecipientType:     enums.RecipientTypeAgent,
			Message:           fmt.Sprintf("New purchase %s assigned to you and awaiting review.", purchase.PolicyNumber),
			Severity:          enums.NotificationSeverityInfo,
			RelatedPurchaseID: &purchase.ID,
		})
	}

	return s.reload(ctx, purchase.ID)
}

// checkReferences resolves the customer, rate and optional agent before the
// purchase is written, so a bogus id surfaces as not-found instead of a
// foreign key failure.
func (s *service) checkReferences(ctx context.Context, params CreateParams) error {
	ok, err := s.repo.CustomerExists(ctx, params.CustomerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check customer")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}

	ok, err = s.repo.RateExists(ctx, params.RateID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check rate")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "rate not found")
	}

	if params.AgentID != nil {
		ok, err = s.repo.AgentExists(ctx, *params.AgentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check agent")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
		}
	}
	return nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Purchase, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase id required")
	}
	purchase, err := s.findExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, purchase); err != nil {
		return nil, err
	}
	return purchase, nil
}

func (s *service) List(ctx context.Context, actor Actor, params ListParams) (*ListResult, error) {
	query := listQuery{
		Status: params.Status,
		Search: params.Search,
		Limit:  params.Limit,
	}
	switch actor.Role {
	case enums.ActorRoleCustomer:
		id := actor.ID
		query.CustomerID = &id
	case enums.ActorRoleAgent:
		id := actor.ID
		query.AgentID = &id
	case enums.ActorRoleAdmin:
		// unrestricted
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}

	if params.Status != "" {
		if _, err := enums.ParsePurchaseStatus(params.Status); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "status filter")
		}
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchases")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, params UpdateParams) (*models.Purchase, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase id required")
	}
	if params.empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	if actor.Role == enums.ActorRoleCustomer {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "customers cannot edit purchases")
	}
	if params.PolicyNumber != nil && actor.Role != enums.ActorRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can override the policy number")
	}

	purchase, err := s.findExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, purchase); err != nil {
		return nil, err
	}

	plan, err := s.planUpdate(purchase, params)
	if err != nil {
		return nil, err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if len(plan.purchaseUpdates) > 0 {
			if err := txRepo.UpdatePurchase(ctx, purchase.ID, plan.purchaseUpdates); err != nil {
				return fmt.Errorf("update purchase: %w", err)
			}
		}
		// Car edits land on the purchase-owned row only. Customer and rate
		// master records are never written from here.
		if len(plan.carUpdates) > 0 {
			if err := txRepo.UpdateCar(ctx, purchase.CarID, plan.carUpdates); err != nil {
				return fmt.Errorf("update car: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "policy number already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update purchase")
	}

	switch plan.transition {
	case enums.PurchaseStatusActive:
		s.notify(ctx, notifications.CreateParams{
			RecipientID:       purchase.CustomerID,
			RecipientType:     enums.RecipientTypeCustomer,
			Message:           fmt.Sprintf("Your policy %s is now active.", purchase.PolicyNumber),
			Severity:          enums.NotificationSeveritySuccess,
			RelatedPurchaseID: &purchase.ID,
		})
	case enums.PurchaseStatusRejected:
		reason := ""
		if params.RejectReason != nil {
			reason = " Reason: " + *params.RejectReason
		}
		s.notify(ctx, notifications.CreateParams{
			RecipientID:       purchase.CustomerID,
			RecipientType:     enums.RecipientTypeCustomer,
			Message:           fmt.Sprintf("Your purchase %s was rejected.%s", purchase.PolicyNumber, reason),
			Severity:          enums.NotificationSeverityWarning,
			RelatedPurchaseID: &purchase.ID,
		})
	}

	return s.reload(ctx, purchase.ID)
}

type updatePlan struct {
	purchaseUpdates map[string]any
	carUpdates      map[string]any
	// transition holds the new status when this update changes one, zero otherwise.
	transition enums.PurchaseStatus
}

func (s *service) planUpdate(purchase *models.Purchase, params UpdateParams) (*updatePlan, error) {
	plan := &updatePlan{
		purchaseUpdates: map[string]any{},
		carUpdates:      map[string]any{},
	}

	if params.Status != nil {
		target, err := enums.ParsePurchaseStatus(*params.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "status")
		}
		if target != purchase.Status {
			if err := checkManualTransition(purchase.Status, target); err != nil {
				return nil, err
			}
			plan.transition = target
			plan.purchaseUpdates["status"] = target

			switch target {
			case enums.PurchaseStatusActive:
				start, end := params.StartDate, params.EndDate
				if start == nil {
					start = purchase.StartDate
				}
				if end == nil {
					end = purchase.EndDate
				}
				if start == nil || end == nil {
					return nil, pkgerrors.New(pkgerrors.CodeValidation, "activation requires start and end dates")
				}
				if end.Before(*start) {
					return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must not precede start date")
				}
			case enums.PurchaseStatusRejected:
				if params.RejectReason == nil || *params.RejectReason == "" {
					return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection requires a reason")
				}
			}
		}
	}

	if params.StartDate != nil {
		plan.purchaseUpdates["start_date"] = dateOnly(*params.StartDate)
	}
	if params.EndDate != nil {
		plan.purchaseUpdates["end_date"] = dateOnly(*params.EndDate)
	}
	if params.StartDate != nil && params.EndDate != nil && params.EndDate.Before(*params.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must not precede start date")
	}
	if params.RejectReason != nil {
		plan.purchaseUpdates["reject_reason"] = *params.RejectReason
	}
	if params.PolicyNumber != nil {
		policyNumber := strings.TrimSpace(*params.PolicyNumber)
		if policyNumber == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "policy number must not be empty")
		}
		plan.purchaseUpdates["policy_number"] = policyNumber
	}
	if params.PaymentMethod != nil {
		method, err := enums.ParsePaymentMethod(*params.PaymentMethod)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "payment method")
		}
		plan.purchaseUpdates["payment_method"] = method
	}

	setIfPresent(plan.purchaseUpdates, "citizen_card_uri", params.CitizenCardURI)
	setIfPresent(plan.purchaseUpdates, "car_registration_uri", params.CarRegistrationURI)
	setIfPresent(plan.purchaseUpdates, "payment_slip_uri", params.PaymentSlipURI)
	setIfPresent(plan.purchaseUpdates, "policy_file_uri", params.PolicyFileURI)
	setIfPresent(plan.purchaseUpdates, "installment_doc_uri", params.InstallmentDocURI)
	setIfPresent(plan.purchaseUpdates, "consent_form_uri", params.ConsentFormURI)

	if params.Car != nil {
		setIfPresent(plan.carUpdates, "brand", params.Car.Brand)
		setIfPresent(plan.carUpdates, "model", params.Car.Model)
		setIfPresent(plan.carUpdates, "sub_model", params.Car.SubModel)
		setIfPresent(plan.carUpdates, "registration", params.Car.Registration)
		setIfPresent(plan.carUpdates, "province", params.Car.Province)
		setIfPresent(plan.carUpdates, "color", params.Car.Color)
		if params.Car.Year != nil {
			plan.carUpdates["year"] = *params.Car.Year
		}
	}

	return plan, nil
}

// checkManualTransition enforces operator-driven status changes. Everything
// past activation belongs to the lifecycle reconciler.
func checkManualTransition(from, to enums.PurchaseStatus) error {
	if from == enums.PurchaseStatusPending &&
		(to == enums.PurchaseStatusActive || to == enums.PurchaseStatusRejected) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("cannot move purchase from %s to %s", from, to)).
		WithDetails(map[string]any{"from": from, "to": to})
}

func authorize(actor Actor, purchase *models.Purchase) error {
	switch actor.Role {
	case enums.ActorRoleAdmin:
		return nil
	case enums.ActorRoleAgent:
		if purchase.AgentID != nil && *purchase.AgentID == actor.ID {
			return nil
		}
		// An agent's book is scoped to assigned purchases; anything outside
		// it reads as absent rather than confirming the record exists.
		return pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
	case enums.ActorRoleCustomer:
		if purchase.CustomerID == actor.ID {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeForbidden, "purchase belongs to another customer")
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}
}

func (s *service) findExisting(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	purchase, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find purchase")
	}
	return purchase, nil
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	purchase, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload purchase")
	}
	return purchase, nil
}

func (s *service) notify(ctx context.Context, params notifications.CreateParams) {
	if err := s.notifier.Notify(ctx, params); err != nil {
		s.logg.Error(ctx, "purchase notification failed", err)
	}
}

func setIfPresent(updates map[string]any, column string, value *string) {
	if value != nil {
		updates[column] = *value
	}
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
