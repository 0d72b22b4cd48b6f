package enums

import "fmt"

// Currency is the ISO code a quote is priced in. Prices are shekels only.
type Currency string

const CurrencyILS Currency = "ILS"

// currencySymbols doubles as the set of accepted currencies.
var currencySymbols = map[Currency]string{
	CurrencyILS: "₪",
}

func (c Currency) String() string {
	return string(c)
}

// Symbol returns the display symbol, or the ISO code when none is known.
func (c Currency) Symbol() string {
	if symbol, ok := currencySymbols[c]; ok {
		return symbol
	}
	return string(c)
}

func (c Currency) IsValid() bool {
	_, ok := currencySymbols[c]
	return ok
}

func ParseCurrency(value string) (Currency, error) {
	if c := Currency(value); c.IsValid() {
		return c, nil
	}
	return "", fmt.Errorf("invalid currency %q", value)
}
