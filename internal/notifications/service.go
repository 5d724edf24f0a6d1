package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/motorsure/brokerage-backend/pkg/db/models"
	"github.com/motorsure/brokerage-backend/pkg/enums"
	pkgerrors "github.com/motorsure/brokerage-backend/pkg/errors"
	"github.com/motorsure/brokerage-backend/pkg/pagination"
)

const defaultSenderName = "System"

// Service defines notification create/list/read operations.
type Service interface {
	Notify(ctx context.Context, params CreateParams) error
	List(ctx context.Context, params ListParams) (*ListResult, error)
	UnreadCount(ctx context.Context, recipientID uuid.UUID, recipientType enums.RecipientType) (int64, error)
	MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID, recipientType enums.RecipientType) (int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// CreateParams describes a notification to persist.
type CreateParams struct {
	RecipientID       uuid.UUID
	RecipientType     enums.RecipientType
	Message           string
	Severity          enums.NotificationSeverity
	SenderName        string
	SenderRole        string
	RelatedPurchaseID *uuid.UUID
}

// ListParams configures pagination for notifications.
type ListParams struct {
	RecipientID   uuid.UUID
	RecipientType enums.RecipientType
	Limit         int
	Cursor        string
	UnreadOnly    bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Notify(ctx context.Context, params CreateParams) error {
	if params.RecipientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	if !params.RecipientType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient type required")
	}
	if params.Message == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "message required")
	}
	severity := params.Severity
	if severity == "" {
		severity = enums.NotificationSeverityInfo
	}
	if !severity.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid severity")
	}
	senderName := params.SenderName
	if senderName == "" {
		senderName = defaultSenderName
	}
	senderRole := params.SenderRole
	if senderRole == "" {
		senderRole = defaultSenderName
	}

	notification := &models.Notification{
		RecipientID:       params.RecipientID,
		RecipientType:     params.RecipientType,
		Message:           params.Message,
		Severity:          severity,
		SenderName:        senderName,
		SenderRole:        senderRole,
		RelatedPurchaseID: params.RelatedPurchaseID,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.RecipientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	if !params.RecipientType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient type required")
	}

	query := listNotificationsParams{
		RecipientID:   params.RecipientID,
		RecipientType: params.RecipientType,
		Limit:         params.Limit,
		UnreadOnly:    params.UnreadOnly,
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  rows,
		Cursor: cursor,
	}, nil
}

func (s *service) UnreadCount(ctx context.Context, recipientID uuid.UUID, recipientType enums.RecipientType) (int64, error) {
	if recipientID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	if !recipientType.IsValid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "recipient type required")
	}
	count, err := s.repo.CountUnread(ctx, recipientID, recipientType)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error {
	if recipientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, recipientID, notificationID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, recipientID uuid.UUID, recipientType enums.RecipientType) (int64, error) {
	if recipientID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	if !recipientType.IsValid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "recipient type required")
	}

	count, err := s.repo.MarkAllRead(ctx, recipientID, recipientType, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}
