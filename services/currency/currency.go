package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"staybridge/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Service converts supplier-currency amounts into a caller's display
// currency. Consumers treat it as best-effort: a conversion failure is
// logged, never fatal.
type Service interface {
	Convert(ctx context.Context, amount float64, target string) (*models.FXQuote, error)
}

// DefaultCurrencyService fetches rates from an HTTP endpoint and caches them
// in Redis with a short TTL.
type DefaultCurrencyService struct {
	Base     string
	Endpoint string
	Cache    *redis.Client
	TTL      time.Duration
	Client   *http.Client
	Logger   *zap.Logger
}

func NewDefaultCurrencyService(base, endpoint string, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *DefaultCurrencyService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &DefaultCurrencyService{
		Base:     base,
		Endpoint: endpoint,
		Cache:    cache,
		TTL:      ttl,
		Client:   &http.Client{Timeout: 10 * time.Second},
		Logger:   logger,
	}
}

func (s *DefaultCurrencyService) Convert(ctx context.Context, amount float64, target string) (*models.FXQuote, error) {
	if target == "" || target == s.Base {
		return nil, fmt.Errorf("no conversion needed for %q", target)
	}
	rate, err := s.rate(ctx, target)
	if err != nil {
		return nil, err
	}
	return &models.FXQuote{
		Amount:   amount * rate,
		Currency: target,
		Rate:     rate,
		RateDate: time.Now(),
		Source:   s.Endpoint,
	}, nil
}

func (s *DefaultCurrencyService) rate(ctx context.Context, target string) (float64, error) {
	cacheKey := "fx:" + s.Base + ":" + target
	if s.Cache != nil {
		if cached, err := s.Cache.Get(ctx, cacheKey).Result(); err == nil {
			if rate, err := strconv.ParseFloat(cached, 64); err == nil && rate > 0 {
				return rate, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Endpoint+"?base="+s.Base, nil)
	if err != nil {
		return 0, err
	}
	res, err := s.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fx endpoint unreachable: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fx endpoint returned status %d", res.StatusCode)
	}

	var body struct {
		Base  string             `json:"base"`
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to decode fx response: %w", err)
	}
	rate, ok := body.Rates[target]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("no rate published for %s", target)
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, cacheKey, strconv.FormatFloat(rate, 'f', -1, 64), s.TTL).Err(); err != nil {
			s.Logger.Warn("failed to cache fx rate", zap.String("target", target), zap.Error(err))
		}
	}
	return rate, nil
}
