package quotes

import (
	"github.com/shopspring/decimal"

	"github.com/webyarden/webyarden-backend/pkg/enums"
	pkgerrors "github.com/webyarden/webyarden-backend/pkg/errors"
)

// MaxPageCount caps page counts accepted over HTTP.
const MaxPageCount = 100

// EstimateRequest describes the project a prospect wants priced.
type EstimateRequest struct {
	ProjectType enums.ProjectType   `json:"project_type" validate:"required,oneof=vitrine ecommerce landing custom"`
	PageCount   int                 `json:"page_count" validate:"required,min=1,max=100"`
	Options     []enums.QuoteOption `json:"options,omitempty" validate:"omitempty,max=20,dive,max=50"`
}

// LineItem is one priced row of an estimate.
type LineItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Subtotal returns unit price times quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Estimate is the priced breakdown of an EstimateRequest.
type Estimate struct {
	Items      []LineItem      `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Currency   string          `json:"currency"`
}

type priced struct {
	label string
	price decimal.Decimal
}

var (
	baseOffers = map[enums.ProjectType]priced{
		enums.ProjectTypeVitrine:   {label: "Site vitrine de base", price: decimal.NewFromInt(800)},
		enums.ProjectTypeEcommerce: {label: "Site e-commerce", price: decimal.NewFromInt(2500)},
		enums.ProjectTypeLanding:   {label: "Landing page", price: decimal.NewFromInt(600)},
	}

	extraPage = priced{label: "Pages supplémentaires", price: decimal.NewFromInt(300)}

	optionPrices = map[enums.QuoteOption]priced{
		enums.QuoteOptionLogo:        {label: "Création de logo", price: decimal.NewFromInt(500)},
		enums.QuoteOptionSEO:         {label: "Référencement SEO", price: decimal.NewFromInt(800)},
		enums.QuoteOptionSocial:      {label: "Réseaux sociaux", price: decimal.NewFromInt(600)},
		enums.QuoteOptionAutomation:  {label: "Automatisation", price: decimal.NewFromInt(1200)},
		enums.QuoteOptionTranslation: {label: "Traduction", price: decimal.NewFromInt(400)},
	}
)

// Price prices req. It is deterministic and has no side effects.
//
// Custom and unknown project types are priced as a vitrine site. Unknown
// option codes are ignored and each option is billed at most once, in
// enums.QuoteOptions order.
func Price(req EstimateRequest) (*Estimate, error) {
	if req.PageCount < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "page count must be at least 1").
			WithDetails(map[string]any{"page_count": req.PageCount})
	}

	base, ok := baseOffers[req.ProjectType]
	if !ok {
		base = baseOffers[enums.ProjectTypeVitrine]
	}

	items := []LineItem{{Name: base.label, Quantity: 1, UnitPrice: base.price}}
	if req.PageCount > 1 {
		items = append(items, LineItem{Name: extraPage.label, Quantity: req.PageCount - 1, UnitPrice: extraPage.price})
	}

	for _, opt := range SelectedOptions(req.Options) {
		p := optionPrices[opt]
		items = append(items, LineItem{Name: p.label, Quantity: 1, UnitPrice: p.price})
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}

	return &Estimate{
		Items:      items,
		TotalPrice: total.Round(2),
		Currency:   enums.CurrencyILS.Symbol(),
	}, nil
}

// NormalizedProjectType maps custom and unknown values to the base they are priced as.
func NormalizedProjectType(t enums.ProjectType) enums.ProjectType {
	if _, ok := baseOffers[t]; ok {
		return t
	}
	return enums.ProjectTypeVitrine
}

// SelectedOptions returns the recognized options, deduplicated in billing order.
func SelectedOptions(opts []enums.QuoteOption) []enums.QuoteOption {
	selected := make(map[enums.QuoteOption]struct{}, len(opts))
	for _, opt := range opts {
		selected[opt] = struct{}{}
	}
	out := make([]enums.QuoteOption, 0, len(selected))
	for _, opt := range enums.QuoteOptions {
		if _, ok := selected[opt]; ok {
			out = append(out, opt)
		}
	}
	return out
}
