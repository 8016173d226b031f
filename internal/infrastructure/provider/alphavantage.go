package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"fxledger-service/internal/application"
	"fxledger-service/internal/domain"
	"fxledger-service/internal/infrastructure/httpx"

	"github.com/shopspring/decimal"
)

const (
	alphaVantageName      = "alphavantage"
	alphaVantageQueryPath = "query"
)

// AlphaVantage fetches CURRENCY_EXCHANGE_RATE for one pair per call.
type AlphaVantage struct {
	BaseURL string
	APIKey  string
	Client  *httpx.Client
}

var _ application.RateFetcher = (*AlphaVantage)(nil)

type avRealtime struct {
	From          string `json:"1. From_Currency Code"`
	To            string `json:"3. To_Currency Code"`
	ExchangeRate  string `json:"5. Exchange Rate"`
	LastRefreshed string `json:"6. Last Refreshed"`
}

type avResponse struct {
	Realtime     *avRealtime `json:"Realtime Currency Exchange Rate"`
	ErrorMessage string      `json:"Error Message"`
	Note         string      `json:"Note"`
	Information  string      `json:"Information"`
}

func (p *AlphaVantage) fail(status int, temporary bool, err error) error {
	return &domain.ProviderError{Provider: alphaVantageName, StatusCode: status, Temporary: temporary, Err: err}
}

func (p *AlphaVantage) Fetch(ctx context.Context, pair domain.Pair) (domain.Rate, error) {
	if p.BaseURL == "" || p.APIKey == "" {
		return domain.Rate{}, p.fail(0, false, errors.New("missing configuration"))
	}

	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return domain.Rate{}, p.fail(0, false, fmt.Errorf("invalid base url: %w", err))
	}
	u = u.JoinPath(alphaVantageQueryPath)
	q := u.Query()
	q.Set("function", "CURRENCY_EXCHANGE_RATE")
	q.Set("from_currency", pair.From)
	q.Set("to_currency", pair.To)
	q.Set("apikey", p.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.Rate{}, p.fail(0, false, fmt.Errorf("create request: %w", err))
	}

	client := p.Client
	if client == nil {
		client = &httpx.Client{}
	}
	var body avResponse
	if err := client.DoJSON(ctx, req, &body); err != nil {
		var se *httpx.StatusError
		switch {
		case errors.As(err, &se):
			temp := se.Code == http.StatusTooManyRequests || se.Code >= 500
			return domain.Rate{}, p.fail(se.Code, temp, err)
		case errors.Is(err, httpx.ErrDecode):
			return domain.Rate{}, p.fail(http.StatusOK, false, err)
		default:
			return domain.Rate{}, p.fail(0, true, fmt.Errorf("do request: %w", err))
		}
	}

	// Alpha Vantage reports API errors and quota exhaustion with HTTP 200.
	switch {
	case body.ErrorMessage != "":
		return domain.Rate{}, p.fail(http.StatusOK, false, errors.New(body.ErrorMessage))
	case body.Note != "":
		return domain.Rate{}, p.fail(http.StatusTooManyRequests, true, errors.New(body.Note))
	case body.Information != "":
		return domain.Rate{}, p.fail(http.StatusTooManyRequests, false, errors.New(body.Information))
	case body.Realtime == nil || body.Realtime.ExchangeRate == "":
		return domain.Rate{}, p.fail(http.StatusOK, false, fmt.Errorf("missing exchange rate for %s", pair))
	}

	v, err := decimal.NewFromString(body.Realtime.ExchangeRate)
	if err != nil {
		return domain.Rate{}, p.fail(http.StatusOK, false, fmt.Errorf("parse exchange rate %q: %w", body.Realtime.ExchangeRate, err))
	}
	if !v.IsPositive() {
		return domain.Rate{}, p.fail(http.StatusOK, false, fmt.Errorf("non-positive exchange rate %s", v))
	}
	return domain.Rate{Value: v, Timestamp: body.Realtime.LastRefreshed}, nil
}
