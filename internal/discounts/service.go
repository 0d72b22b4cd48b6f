package discounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/webyarden/webyarden-backend/pkg/cache"
	"github.com/webyarden/webyarden-backend/pkg/db"
	"github.com/webyarden/webyarden-backend/pkg/db/models"
	pkgerrors "github.com/webyarden/webyarden-backend/pkg/errors"
	"github.com/webyarden/webyarden-backend/pkg/logger"
	"github.com/webyarden/webyarden-backend/pkg/metrics"
)

// Service exposes discount validation, consumption and administration.
type Service interface {
	ListActive(ctx context.Context) ([]ActiveDiscountDTO, error)
	Validate(ctx context.Context, input ValidateInput) (*Evaluation, error)
	Apply(ctx context.Context, code string) (*ApplyResult, error)
	// Redeem evaluates code against target and consumes one usage within tx.
	// Nothing is logged or counted as consumed until Committed is called.
	Redeem(ctx context.Context, tx *gorm.DB, code string, target Target) (*Redemption, error)
	// Committed reports a redemption once the transaction holding it has committed.
	Committed(ctx context.Context, r *Redemption)

	List(ctx context.Context) ([]DiscountDTO, error)
	Create(ctx context.Context, req UpsertDiscountRequest) (*DiscountDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpsertDiscountRequest) (*DiscountDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type catalogLookup interface {
	ServicesExist(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
	PacksExist(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
	PackPrice(ctx context.Context, id uuid.UUID) (decimal.Decimal, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the dependencies required to build a discounts service.
type ServiceParams struct {
	DB      *db.Client
	Catalog catalogLookup
	Cache   *cache.Cache
	Metrics *metrics.PricingMetrics
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	repo    *Repository
	tx      txRunner
	catalog catalogLookup
	cache   *cache.Cache
	metrics *metrics.PricingMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService constructs the discounts service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog lookup required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:    NewRepository(params.DB.DB()),
		tx:      params.DB,
		catalog: params.Catalog,
		cache:   params.Cache,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     now,
	}, nil
}

func (s *service) ListActive(ctx context.Context) ([]ActiveDiscountDTO, error) {
	return cache.Remember(ctx, s.cache, cache.KeyDiscountsActive, func(ctx context.Context) ([]ActiveDiscountDTO, error) {
		rows, err := s.repo.ListActive(ctx, s.now())
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list active discounts")
		}
		out := make([]ActiveDiscountDTO, 0, len(rows))
		for i := range rows {
			out = append(out, toActive(&rows[i]))
		}
		return out, nil
	})
}

func (s *service) Validate(ctx context.Context, input ValidateInput) (*Evaluation, error) {
	eval, err := s.validate(ctx, input)
	s.metrics.IncValidation(outcome(err))
	return eval, err
}

func (s *service) validate(ctx context.Context, input ValidateInput) (*Evaluation, error) {
	code := normalizeCode(input.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount code is required")
	}

	now := s.now()
	d, err := s.repo.FindByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Evaluate(nil, Target{}, now)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup discount")
	}
	if !IsValid(d, now) {
		return Evaluate(d, Target{}, now)
	}

	amount, err := s.resolveAmount(ctx, input)
	if err != nil {
		return nil, err
	}
	return Evaluate(d, Target{Amount: amount, ServiceID: input.ServiceID, PackID: input.PackID}, now)
}

func (s *service) resolveAmount(ctx context.Context, input ValidateInput) (decimal.Decimal, error) {
	switch {
	case input.Amount != nil:
		if input.Amount.IsNegative() {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than or equal to 0")
		}
		return *input.Amount, nil
	case input.PackID != nil:
		price, err := s.catalog.PackPrice(ctx, *input.PackID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "pack not found")
		}
		if err != nil {
			return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup pack price")
		}
		return price, nil
	}
	return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "one of quote, pack_id or amount is required")
}

func (s *service) Apply(ctx context.Context, code string) (*ApplyResult, error) {
	code = normalizeCode(code)
	if code == "" {
		err := pkgerrors.New(pkgerrors.CodeValidation, "discount code is required")
		s.metrics.IncApplication(outcome(err))
		return nil, err
	}

	var result *ApplyResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		d, err := s.consume(ctx, tx, code, nil)
		if err != nil {
			return err
		}
		result = &ApplyResult{Code: d.Code, UsageCount: d.UsageCount, MaxUsage: d.MaxUsage}
		return nil
	})
	s.metrics.IncApplication(outcome(err))
	if err != nil {
		return nil, err
	}

	s.afterConsume(ctx, result.Code, result.UsageCount, result.MaxUsage)
	return result, nil
}

func (s *service) Redeem(ctx context.Context, tx *gorm.DB, code string, target Target) (*Redemption, error) {
	var eval *Evaluation
	d, err := s.consume(ctx, tx, normalizeCode(code), func(d *models.Discount) error {
		var evalErr error
		eval, evalErr = Evaluate(d, target, s.now())
		return evalErr
	})
	if err != nil {
		s.metrics.IncApplication(outcome(err))
		return nil, err
	}
	return &Redemption{Evaluation: *eval, UsageCount: d.UsageCount, MaxUsage: d.MaxUsage}, nil
}

func (s *service) Committed(ctx context.Context, r *Redemption) {
	if r == nil {
		return
	}
	s.metrics.IncApplication(outcome(nil))
	s.afterConsume(ctx, r.Code, r.UsageCount, r.MaxUsage)
}

// consume locks the code, checks it and increments its usage inside tx.
// check defaults to the validity test alone. The returned discount carries the new usage count.
func (s *service) consume(ctx context.Context, tx *gorm.DB, code string, check func(*models.Discount) error) (*models.Discount, error) {
	repo := s.repo.WithTx(tx)
	d, err := repo.FindByCodeForUpdate(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeDiscountNotFound, "discount code not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup discount")
	}

	if check == nil {
		if !IsValid(d, s.now()) {
			return nil, pkgerrors.New(pkgerrors.CodeDiscountExpiredOrExhausted, "discount code expired or exhausted")
		}
	} else if err := check(d); err != nil {
		return nil, err
	}

	if err := repo.Consume(ctx, d.ID); err != nil {
		if errors.Is(err, ErrExhausted) {
			return nil, pkgerrors.New(pkgerrors.CodeDiscountExpiredOrExhausted, "discount code expired or exhausted")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "consume discount")
	}
	d.UsageCount++
	return d, nil
}

func (s *service) afterConsume(ctx context.Context, code string, usage int, maxUsage *int) {
	if maxUsage != nil && usage >= *maxUsage {
		s.cache.Invalidate(ctx, cache.KeyDiscountsActive)
	}
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithDiscountCode(ctx, code)
	logCtx = s.logg.WithField(logCtx, "usage_count", usage)
	s.logg.Info(logCtx, "discount.consumed")
}

func (s *service) List(ctx context.Context) ([]DiscountDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list discounts")
	}
	out := make([]DiscountDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, req UpsertDiscountRequest) (*DiscountDTO, error) {
	d := &models.Discount{}
	req.applyTo(d)
	if err := s.checkWrite(ctx, req, d); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, d); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "discount code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create discount")
	}
	s.cache.Invalidate(ctx, cache.KeyDiscountsActive)
	dto := FromModel(d)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpsertDiscountRequest) (*DiscountDTO, error) {
	d, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load discount")
	}
	req.applyTo(d)
	if err := s.checkWrite(ctx, req, d); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "discount code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update discount")
	}
	s.cache.Invalidate(ctx, cache.KeyDiscountsActive)
	dto := FromModel(d)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete discount")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
	}
	s.cache.Invalidate(ctx, cache.KeyDiscountsActive)
	return nil
}

func (s *service) checkWrite(ctx context.Context, req UpsertDiscountRequest, d *models.Discount) error {
	if req.ValidFrom.IsZero() || req.ValidUntil.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{
			"valid_from":  "is required",
			"valid_until": "is required",
		})
	}
	if err := CheckInvariants(d); err != nil {
		return err
	}

	missingServices, err := s.catalog.ServicesExist(ctx, d.ApplicableServiceIDs)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check services")
	}
	missingPacks, err := s.catalog.PacksExist(ctx, d.ApplicablePackIDs)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check packs")
	}
	if len(missingServices) > 0 || len(missingPacks) > 0 {
		details := map[string]any{}
		if len(missingServices) > 0 {
			details["applicable_service_ids"] = missingServices
		}
		if len(missingPacks) > 0 {
			details["applicable_pack_ids"] = missingPacks
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown catalog ids").WithDetails(details)
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	if typed := pkgerrors.As(err); typed != nil {
		return strings.ToLower(string(typed.Code()))
	}
	return metrics.OutcomeError
}
