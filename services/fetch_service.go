package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"moatmap/clients/http_client"
	redis_client "moatmap/clients/redis"
	"moatmap/types"
	"moatmap/utils/constants"
	"moatmap/utils/helpers"

	"go.uber.org/zap"
)

// ErrUnavailable marks a ticker that cannot be scored: delisted, junk, or
// missing statements. The batch records it and moves on.
var ErrUnavailable = errors.New("ticker unavailable")

type FetchServiceI interface {
	Fetch(ctx context.Context, ticker string) (*types.StatementBundle, error)
}

type fetchService struct {
	cacheTTL time.Duration
}

var FetchService FetchServiceI = &fetchService{cacheTTL: 24 * time.Hour}

// Fetch pulls the profile and the three annual statements for a ticker,
// consulting the Redis cache first. It returns ErrUnavailable when market
// cap is zero or absent, or when any statement comes back empty.
func (f *fetchService) Fetch(ctx context.Context, ticker string) (*types.StatementBundle, error) {
	cacheKey := "bundle:" + ticker

	var cached types.StatementBundle
	if redis_client.GetJSON(ctx, cacheKey, &cached) {
		zap.L().Info("Statement cache hit", zap.String("ticker", ticker))
		return &cached, nil
	}

	profile, err := http_client.GetProfile(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("%w: profile fetch failed: %v", ErrUnavailable, err)
	}
	if profile.MarketCap <= 0 {
		// Delisted or invalid ticker, exclude before any ratio work.
		return nil, fmt.Errorf("%w: no market cap", ErrUnavailable)
	}

	bundle := &types.StatementBundle{Ticker: ticker, Profile: profile}
	statements := []struct {
		kind string
		dest *[]types.Period
	}{
		{constants.StatementIncome, &bundle.Income},
		{constants.StatementBalance, &bundle.Balance},
		{constants.StatementCashFlow, &bundle.CashFlow},
	}
	for _, s := range statements {
		periods, err := http_client.GetStatement(ctx, ticker, s.kind, constants.MaxHistoryYears)
		if err != nil {
			return nil, fmt.Errorf("%w: %s fetch failed: %v", ErrUnavailable, s.kind, err)
		}
		if len(periods) == 0 {
			return nil, fmt.Errorf("%w: empty %s statement", ErrUnavailable, s.kind)
		}
		*s.dest = periods
	}

	ttl := time.Duration(helpers.GetEnvInt("STATEMENT_CACHE_TTL_HOURS", 24)) * time.Hour
	if ttl <= 0 {
		ttl = f.cacheTTL
	}
	redis_client.SetJSON(ctx, cacheKey, bundle, ttl)

	return bundle, nil
}
