package ports

import (
	"context"
	"time"

	"marketseq/internal/domain"
)

// MarketDataClient defines the interface for fetching historical bar data
// from an exchange. This abstraction allows decoupling the data-preparation
// pipeline from specific exchange implementations.
type MarketDataClient interface {
	// Ping checks the connectivity to the exchange API.
	Ping(ctx context.Context) error

	// GetServerTime retrieves the current server time from the exchange.
	GetServerTime(ctx context.Context) (time.Time, error)

	// GetBars retrieves the most recent bars for the given symbol and interval.
	GetBars(ctx context.Context, symbol, interval string, limit int) ([]*domain.Bar, error)

	// GetBarsRange retrieves all bars for a symbol/interval between start and
	// end time, paging through the exchange's result limit as needed.
	GetBarsRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Bar, error)
}
