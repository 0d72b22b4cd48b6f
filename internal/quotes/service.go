package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webyarden/webyarden-backend/internal/discounts"
	"github.com/webyarden/webyarden-backend/pkg/db"
	"github.com/webyarden/webyarden-backend/pkg/db/models"
	dbtypes "github.com/webyarden/webyarden-backend/pkg/db/types"
	"github.com/webyarden/webyarden-backend/pkg/enums"
	pkgerrors "github.com/webyarden/webyarden-backend/pkg/errors"
	"github.com/webyarden/webyarden-backend/pkg/logger"
	"github.com/webyarden/webyarden-backend/pkg/metrics"
	"github.com/webyarden/webyarden-backend/pkg/pagination"
)

// Service prices quotes and manages stored quote requests.
type Service interface {
	Calculate(ctx context.Context, req EstimateRequest) (*Estimate, error)
	Create(ctx context.Context, req CreateQuoteRequest) (*QuoteDTO, error)
	List(ctx context.Context, params ListQuotesParams) (*pagination.Page[QuoteDTO], error)
	Get(ctx context.Context, id uuid.UUID) (*QuoteDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateQuoteRequest) (*QuoteDTO, error)
}

type discountRedeemer interface {
	Redeem(ctx context.Context, tx *gorm.DB, code string, target discounts.Target) (*discounts.Redemption, error)
	Committed(ctx context.Context, r *discounts.Redemption)
}

// ServiceParams bundles the dependencies required to build a quotes service.
type ServiceParams struct {
	DB        *db.Client
	Discounts discountRedeemer
	Metrics   *metrics.PricingMetrics
	Logger    *logger.Logger
}

type service struct {
	db        *db.Client
	repo      *Repository
	discounts discountRedeemer
	metrics   *metrics.PricingMetrics
	logg      *logger.Logger
}

// NewService constructs the quotes service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Discounts == nil {
		return nil, fmt.Errorf("discount redeemer required")
	}
	return &service{
		db:        params.DB,
		repo:      NewRepository(params.DB.DB()),
		discounts: params.Discounts,
		metrics:   params.Metrics,
		logg:      params.Logger,
	}, nil
}

func (s *service) Calculate(ctx context.Context, req EstimateRequest) (*Estimate, error) {
	est, err := Price(req)
	if err != nil {
		return nil, err
	}
	s.metrics.IncQuote(string(NormalizedProjectType(req.ProjectType)))
	return est, nil
}

func (s *service) Create(ctx context.Context, req CreateQuoteRequest) (*QuoteDTO, error) {
	est, err := Price(req.EstimateRequest())
	if err != nil {
		return nil, err
	}
	items, err := json.Marshal(est.Items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode quote items")
	}

	options := make(dbtypes.StringArray, 0, len(req.Options))
	for _, opt := range SelectedOptions(req.Options) {
		options = append(options, string(opt))
	}

	quote := &models.Quote{
		ClientName:  strings.TrimSpace(req.ClientName),
		ClientEmail: strings.ToLower(strings.TrimSpace(req.ClientEmail)),
		ClientPhone: req.ClientPhone,
		ProjectType: req.ProjectType,
		PageCount:   req.PageCount,
		Options:     options,
		Items:       dbtypes.JSON(items),
		TotalPrice:  est.TotalPrice,
		Currency:    enums.CurrencyILS,
		Status:      enums.QuoteStatusDraft,
		Notes:       req.Notes,
	}

	code := req.discountCode()
	var redemption *discounts.Redemption
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		redemption = nil
		if code != "" {
			r, err := s.discounts.Redeem(ctx, tx, code, discounts.Target{Amount: est.TotalPrice})
			if err != nil {
				return err
			}
			redemption = r
			quote.DiscountCode = &r.Code
			quote.DiscountedTotal = &r.DiscountedAmount
		}
		if err := s.repo.WithTx(tx).Create(ctx, quote); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create quote")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.discounts.Committed(ctx, redemption)
	s.metrics.IncQuote(string(NormalizedProjectType(req.ProjectType)))
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"quote_id":     quote.ID.String(),
			"project_type": string(quote.ProjectType),
			"total_price":  quote.TotalPrice.String(),
		})
		s.logg.Info(logCtx, "quote.created")
	}
	return s.toDTO(quote)
}

func (s *service) List(ctx context.Context, params ListQuotesParams) (*pagination.Page[QuoteDTO], error) {
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, params.Status, cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list quotes")
	}

	page := pagination.Trim(rows, params.Limit, func(q models.Quote) pagination.Cursor {
		return pagination.Cursor{CreatedAt: q.CreatedAt, ID: q.ID}
	})
	out := &pagination.Page[QuoteDTO]{Items: make([]QuoteDTO, 0, len(page.Items)), NextCursor: page.NextCursor}
	for i := range page.Items {
		dto, err := s.toDTO(&page.Items[i])
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, *dto)
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*QuoteDTO, error) {
	q, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quote")
	}
	return s.toDTO(q)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateQuoteRequest) (*QuoteDTO, error) {
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update quote")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
	}
	return s.Get(ctx, id)
}

func (s *service) toDTO(q *models.Quote) (*QuoteDTO, error) {
	dto, err := FromModel(q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode quote items")
	}
	return dto, nil
}
