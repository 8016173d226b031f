package domain

import (
	"regexp"
	"strings"
)

// Pair is an ordered currency pair. From is the currency being priced.
type Pair struct {
	From string
	To   string
}

var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(c string) string {
	return strings.ToUpper(strings.TrimSpace(c))
}

// ValidCurrency reports whether c is a three-letter upper-case code.
func ValidCurrency(c string) bool {
	return currencyRe.MatchString(c)
}

// ParsePair normalizes both codes and rejects malformed or identical currencies.
func ParsePair(from, to string) (Pair, error) {
	p := Pair{From: NormalizeCurrency(from), To: NormalizeCurrency(to)}
	if !ValidCurrency(p.From) || !ValidCurrency(p.To) || p.From == p.To {
		return Pair{}, ErrInvalidPair
	}
	return p, nil
}

// Key is the cache key for the pair, e.g. "USD-INR".
func (p Pair) Key() string { return p.From + "-" + p.To }

func (p Pair) String() string { return p.From + "/" + p.To }
