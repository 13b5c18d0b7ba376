package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Dataset Errors
	ErrEmptySeries    = errors.New("series contains no data rows")
	ErrMalformedCSV   = errors.New("malformed CSV data")
	ErrRaggedRow      = errors.New("CSV row has unexpected column count")
	ErrBadDateFormat  = errors.New("date column is not in YYYY-MM-DD format")
	ErrEmptyDataset   = errors.New("dataset contains no sequence pairs")
	ErrBadDateBounds  = errors.New("split date boundaries are invalid or out of order")
	ErrShapeMismatch  = errors.New("tensor shape does not match model configuration")
	ErrNotEnoughPairs = errors.New("not enough sequence pairs for requested operation")

	// Exchange Specific Errors
	ErrExchangeUnavailable  = errors.New("exchange API is unavailable")
	ErrConnectionFailed     = errors.New("failed to connect to the exchange")
	ErrRateLimited          = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed = errors.New("exchange authentication failed (check API keys)")
	ErrInvalidAPIKeys       = errors.New("invalid API keys or permissions")

	// Database Specific Errors
	ErrDuplicateEntry = errors.New("database record already exists")
	ErrDBConnection   = errors.New("database connection error")
	ErrQueryFailed    = errors.New("database query failed")
	ErrUpdateFailed   = errors.New("database update failed")
)
