package enums

// QuoteOption is an add-on priced on top of a quote's base offering.
type QuoteOption string

const (
	QuoteOptionLogo        QuoteOption = "logo"
	QuoteOptionSEO         QuoteOption = "seo"
	QuoteOptionSocial      QuoteOption = "social"
	QuoteOptionAutomation  QuoteOption = "automation"
	QuoteOptionTranslation QuoteOption = "translation"
)

// QuoteOptions lists the recognized add-ons in line-item order.
var QuoteOptions = []QuoteOption{
	QuoteOptionLogo,
	QuoteOptionSEO,
	QuoteOptionSocial,
	QuoteOptionAutomation,
	QuoteOptionTranslation,
}

// String implements fmt.Stringer.
func (o QuoteOption) String() string {
	return string(o)
}

// IsValid reports whether the option code is recognized.
func (o QuoteOption) IsValid() bool {
	for _, candidate := range QuoteOptions {
		if candidate == o {
			return true
		}
	}
	return false
}
