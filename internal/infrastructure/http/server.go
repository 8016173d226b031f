package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"fxledger-service/internal/application"
	"fxledger-service/internal/domain"
	"fxledger-service/internal/infrastructure/logx"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const idempotencyHeader = "X-Idempotency-Key"

type Server struct {
	quotes *application.QuoteService
	ledger *application.Ledger
	idem   application.IdempotencyStore
	ping   func(ctx context.Context) error
}

func NewServer(quotes *application.QuoteService, ledger *application.Ledger, idem application.IdempotencyStore) *Server {
	if idem == nil {
		idem = application.NoopIdempotency{}
	}
	return &Server{quotes: quotes, ledger: ledger, idem: idem}
}

// SetReadyCheck installs the probe behind /readyz.
func (s *Server) SetReadyCheck(fn func(ctx context.Context) error) { s.ping = fn }

type quoteSummaryResponse struct {
	QuoteID   string    `json:"quoteId"`
	Expiry    int64     `json:"expiry"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type quoteResponse struct {
	QuoteID           string          `json:"quoteId"`
	Expiry            int64           `json:"expiry"`
	ExpiresAt         time.Time       `json:"expiresAt"`
	FetchedAt         time.Time       `json:"fetchedAt"`
	From              string          `json:"from"`
	To                string          `json:"to"`
	Rate              decimal.Decimal `json:"rate"`
	ProviderTimestamp string          `json:"providerTimestamp,omitempty"`
}

type topUpRequest struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

type balanceResponse struct {
	UserID   string          `json:"userId"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

type balancesResponse struct {
	UserID   string                     `json:"userId"`
	Balances map[string]decimal.Decimal `json:"balances"`
}

type accountResponse struct {
	UserID    string                     `json:"userId"`
	Balances  map[string]decimal.Decimal `json:"balances"`
	CreatedAt time.Time                  `json:"createdAt"`
}

func toQuoteResponse(q domain.Quote) quoteResponse {
	return quoteResponse{
		QuoteID:           q.ID,
		Expiry:            q.Expiry.UnixMilli(),
		ExpiresAt:         q.Expiry,
		FetchedAt:         q.FetchedAt,
		From:              q.Pair.From,
		To:                q.Pair.To,
		Rate:              q.Rate,
		ProviderTimestamp: q.ProviderTimestamp,
	}
}

// GetFXRates returns only the quote id and expiry; the rate is read through
// GetIssuedQuote once the caller commits to the id.
func (s *Server) GetFXRates(w http.ResponseWriter, r *http.Request) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	sum, err := s.quotes.GetQuoteSummary(r.Context(), from, to)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteSummaryResponse{
		QuoteID:   sum.ID,
		Expiry:    sum.Expiry.UnixMilli(),
		ExpiresAt: sum.Expiry,
	})
}

func (s *Server) GetFXRate(w http.ResponseWriter, r *http.Request) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	q, err := s.quotes.GetQuote(r.Context(), from, to)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteResponse(q))
}

func (s *Server) GetIssuedQuote(w http.ResponseWriter, r *http.Request) {
	q, err := s.quotes.GetIssuedQuote(r.Context(), chi.URLParam(r, "quoteId"))
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteResponse(q))
}

func (s *Server) OpenAccount(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	acc, created, err := s.ledger.OpenAccount(r.Context(), userID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, accountResponse{UserID: acc.UserID, Balances: acc.Balances, CreatedAt: acc.CreatedAt})
}

func (s *Server) TopUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userId")

	var body topUpRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Currency) == "" {
		badRequest(w, "currency is required")
		return
	}

	var reserved string
	if key := r.Header.Get(idempotencyHeader); key != "" {
		reserved = userID + ":" + key
		ok, err := s.idem.TryReserve(ctx, reserved)
		if err != nil {
			logx.WithFields(ctx).Error("idempotency.reserve_failed", zap.Error(err))
			internalError(w)
			return
		}
		if !ok {
			writeError(w, http.StatusConflict, "duplicate request")
			return
		}
	}

	balance, err := s.ledger.TopUp(ctx, userID, body.Currency, body.Amount)
	if err != nil {
		if reserved != "" {
			if rerr := s.idem.Release(context.WithoutCancel(ctx), reserved); rerr != nil {
				logx.WithFields(ctx).Warn("idempotency.release_failed", zap.Error(rerr))
			}
		}
		writeDomainError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{
		UserID:   userID,
		Currency: domain.NormalizeCurrency(body.Currency),
		Balance:  balance,
	})
}

func (s *Server) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	currency := domain.NormalizeCurrency(r.URL.Query().Get("currency"))
	if !domain.ValidCurrency(currency) {
		writeDomainError(r.Context(), w, domain.ErrInvalidCurrency)
		return
	}
	b, err := s.ledger.GetBalance(r.Context(), userID, currency)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{UserID: userID, Currency: currency, Balance: b})
}

func (s *Server) GetBalances(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	all, err := s.ledger.GetBalances(r.Context(), userID)
	if err != nil {
		writeDomainError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, balancesResponse{UserID: userID, Balances: all})
}
