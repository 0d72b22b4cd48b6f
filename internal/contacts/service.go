package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webyarden/webyarden-backend/pkg/db"
	"github.com/webyarden/webyarden-backend/pkg/db/models"
	"github.com/webyarden/webyarden-backend/pkg/enums"
	pkgerrors "github.com/webyarden/webyarden-backend/pkg/errors"
	"github.com/webyarden/webyarden-backend/pkg/logger"
	"github.com/webyarden/webyarden-backend/pkg/mailer"
	"github.com/webyarden/webyarden-backend/pkg/pagination"
)

const notifyTimeout = 10 * time.Second

// Service stores contact requests and notifies the agency inbox.
type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*ContactDTO, error)
	List(ctx context.Context, params ListParams) (*pagination.Page[ContactDTO], error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*ContactDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type sanitizer interface {
	PlainText(s string) string
}

type ServiceParams struct {
	DB        *db.Client
	Sanitizer sanitizer
	Notifier  mailer.Notifier
	Logger    *logger.Logger
}

type service struct {
	repo      *Repository
	sanitizer sanitizer
	notifier  mailer.Notifier
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Sanitizer == nil {
		return nil, fmt.Errorf("sanitizer required")
	}
	notifier := params.Notifier
	if notifier == nil {
		notifier = mailer.Noop{}
	}
	return &service{
		repo:      NewRepository(params.DB.DB()),
		sanitizer: params.Sanitizer,
		notifier:  notifier,
		logg:      params.Logger,
	}, nil
}

func (s *service) Submit(ctx context.Context, req SubmitRequest) (*ContactDTO, error) {
	message := s.sanitizer.PlainText(req.Message)
	if len([]rune(message)) < 10 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{
			"message": "must be at least 10 characters",
		})
	}

	c := &models.Contact{
		Name:     s.sanitizer.PlainText(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:    s.optional(req.Phone),
		Company:  s.optional(req.Company),
		Subject:  s.sanitizer.PlainText(req.Subject),
		Service:  s.optional(req.Service),
		Budget:   req.Budget,
		Timeline: s.optional(req.Timeline),
		Message:  message,
		Status:   enums.ContactStatusNew,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create contact")
	}

	s.notify(ctx, c)
	dto := FromModel(c)
	return &dto, nil
}

// notify never fails the submission.
func (s *service) notify(ctx context.Context, c *models.Contact) {
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	n := mailer.ContactNotification{
		Name:    c.Name,
		Email:   c.Email,
		Phone:   deref(c.Phone),
		Company: deref(c.Company),
		Subject: c.Subject,
		Service: deref(c.Service),
		Message: c.Message,
	}
	if c.Budget != nil {
		n.Budget = string(*c.Budget)
	}
	err := s.notifier.NotifyContact(notifyCtx, n)
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithField(ctx, "contact_id", c.ID.String())
	if err != nil {
		s.logg.Error(logCtx, "contact.notify_failed", err)
		return
	}
	s.logg.Info(logCtx, "contact.received")
}

func (s *service) List(ctx context.Context, params ListParams) (*pagination.Page[ContactDTO], error) {
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, params.Status, cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list contacts")
	}
	page := pagination.Trim(rows, params.Limit, func(c models.Contact) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	})
	out := &pagination.Page[ContactDTO]{Items: make([]ContactDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for i := range page.Items {
		out.Items = append(out.Items, FromModel(&page.Items[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*ContactDTO, error) {
	fields := map[string]any{}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
		}
		fields["status"] = *req.Status
	}
	if req.Notes != nil {
		fields["notes"] = strings.TrimSpace(*req.Notes)
	}
	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}
	fields["updated_at"] = time.Now().UTC()

	found, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update contact")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
	}
	c, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load contact")
	}
	dto := FromModel(c)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete contact")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
	}
	return nil
}

func (s *service) optional(v *string) *string {
	if v == nil {
		return nil
	}
	if clean := s.sanitizer.PlainText(*v); clean != "" {
		return &clean
	}
	return nil
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
