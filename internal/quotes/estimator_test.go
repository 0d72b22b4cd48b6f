package quotes

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webyarden/webyarden-backend/pkg/enums"
	pkgerrors "github.com/webyarden/webyarden-backend/pkg/errors"
)

func TestEstimateBaseOffers(t *testing.T) {
	for projectType, offer := range baseOffers {
		est, err := Price(EstimateRequest{ProjectType: projectType, PageCount: 1})
		require.NoError(t, err, projectType)
		require.Len(t, est.Items, 1)
		assert.Equal(t, offer.label, est.Items[0].Name)
		assert.Equal(t, 1, est.Items[0].Quantity)
		assert.True(t, offer.price.Equal(est.TotalPrice), "%s total %s", projectType, est.TotalPrice)
		assert.Equal(t, "₪", est.Currency)
	}
}

func TestEstimateEachOptionAddsItsPrice(t *testing.T) {
	for opt, p := range optionPrices {
		est, err := Price(EstimateRequest{
			ProjectType: enums.ProjectTypeLanding,
			PageCount:   1,
			Options:     []enums.QuoteOption{opt},
		})
		require.NoError(t, err)
		require.Len(t, est.Items, 2)
		assert.Equal(t, p.label, est.Items[1].Name)
		assert.True(t, decimal.NewFromInt(600).Add(p.price).Equal(est.TotalPrice), "option %s", opt)
	}
}

func TestEstimateVitrineWithPagesAndOptions(t *testing.T) {
	est, err := Price(EstimateRequest{
		ProjectType: enums.ProjectTypeVitrine,
		PageCount:   5,
		Options:     []enums.QuoteOption{enums.QuoteOptionSEO, enums.QuoteOptionLogo},
	})
	require.NoError(t, err)

	names := make([]string, 0, len(est.Items))
	for _, item := range est.Items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"Site vitrine de base", "Pages supplémentaires", "Création de logo", "Référencement SEO"}, names)
	assert.Equal(t, 4, est.Items[1].Quantity)
	assert.True(t, est.Items[1].UnitPrice.Equal(decimal.NewFromInt(300)))
	// 800 + 4*300 + 500 + 800
	assert.Equal(t, "3300", est.TotalPrice.String())
}

func TestEstimateEcommerceAllOptions(t *testing.T) {
	est, err := Price(EstimateRequest{
		ProjectType: enums.ProjectTypeEcommerce,
		PageCount:   1,
		Options: []enums.QuoteOption{
			enums.QuoteOptionTranslation,
			enums.QuoteOptionAutomation,
			enums.QuoteOptionSocial,
			enums.QuoteOptionSEO,
			enums.QuoteOptionLogo,
		},
	})
	require.NoError(t, err)
	require.Len(t, est.Items, 6)
	assert.Equal(t, "Création de logo", est.Items[1].Name)
	assert.Equal(t, "Traduction", est.Items[5].Name)
	assert.Equal(t, "6000", est.TotalPrice.String())
}

func TestEstimateDuplicateAndUnknownOptions(t *testing.T) {
	est, err := Price(EstimateRequest{
		ProjectType: enums.ProjectTypeLanding,
		PageCount:   1,
		Options:     []enums.QuoteOption{"seo", "seo", "hosting", "seo"},
	})
	require.NoError(t, err)
	require.Len(t, est.Items, 2)
	assert.Equal(t, "1400", est.TotalPrice.String())
}

func TestEstimateCustomAndUnknownPricedAsVitrine(t *testing.T) {
	for _, projectType := range []enums.ProjectType{enums.ProjectTypeCustom, "blog"} {
		est, err := Price(EstimateRequest{ProjectType: projectType, PageCount: 2})
		require.NoError(t, err)
		assert.Equal(t, "Site vitrine de base", est.Items[0].Name)
		assert.Equal(t, "1100", est.TotalPrice.String())
		assert.Equal(t, enums.ProjectTypeVitrine, NormalizedProjectType(projectType))
	}
}

func TestEstimateRejectsPageCountBelowOne(t *testing.T) {
	for _, pages := range []int{0, -3} {
		_, err := Price(EstimateRequest{ProjectType: enums.ProjectTypeVitrine, PageCount: pages})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	}
}

func TestEstimateIsDeterministic(t *testing.T) {
	req := EstimateRequest{
		ProjectType: enums.ProjectTypeEcommerce,
		PageCount:   7,
		Options:     []enums.QuoteOption{enums.QuoteOptionSocial, enums.QuoteOptionLogo},
	}
	first, err := Price(req)
	require.NoError(t, err)
	second, err := Price(req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTotalEqualsSumOfLineItems(t *testing.T) {
	est, err := Price(EstimateRequest{
		ProjectType: enums.ProjectTypeVitrine,
		PageCount:   12,
		Options:     enums.QuoteOptions,
	})
	require.NoError(t, err)
	sum := decimal.Zero
	for _, item := range est.Items {
		assert.GreaterOrEqual(t, item.Quantity, 1)
		sum = sum.Add(item.Subtotal())
	}
	assert.True(t, sum.Equal(est.TotalPrice))
}
