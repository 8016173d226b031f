package provider

import (
	"context"
	"time"

	"fxledger-service/internal/application"
	"fxledger-service/internal/domain"

	"github.com/shopspring/decimal"
)

// Ensure Fake implements application.RateFetcher.
var _ application.RateFetcher = (*Fake)(nil)

// Fake returns the same rate for every pair.
type Fake struct {
	rate decimal.Decimal
}

func NewFake(rate string) (*Fake, error) {
	v, err := decimal.NewFromString(rate)
	if err != nil {
		return nil, err
	}
	return &Fake{rate: v}, nil
}

func (f *Fake) Fetch(context.Context, domain.Pair) (domain.Rate, error) {
	return domain.Rate{
		Value:     f.rate,
		Timestamp: time.Now().UTC().Format(time.DateTime),
	}, nil
}
