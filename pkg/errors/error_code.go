package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 102
	ErrCodeInvalidPlotType      ErrorCode = 103
	ErrCodeInvalidSymbol        ErrorCode = 104
	ErrCodeMissingParameter     ErrorCode = 105

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202

	// Indicator errors (300-399)
	ErrCodeIndicatorCalculation ErrorCode = 300

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataParseFailed ErrorCode = 701
	ErrCodeInvalidProvider       ErrorCode = 702

	// Rendering errors (800-899)
	ErrCodeRenderFailed ErrorCode = 800
)

// String returns a short, stable name for the code. It is used as the
// "code" field of HTTP error bodies and as a metrics label.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeInvalidParameter:
		return "invalid_parameter"
	case ErrCodeInvalidConfiguration:
		return "invalid_configuration"
	case ErrCodeInvalidPeriod:
		return "invalid_period"
	case ErrCodeInvalidPlotType:
		return "invalid_plot_type"
	case ErrCodeInvalidSymbol:
		return "invalid_symbol"
	case ErrCodeMissingParameter:
		return "missing_parameter"
	case ErrCodeDataNotFound:
		return "data_not_found"
	case ErrCodeDataSourceUnavailable:
		return "data_source_unavailable"
	case ErrCodeQueryFailed:
		return "query_failed"
	case ErrCodeIndicatorCalculation:
		return "indicator_calculation"
	case ErrCodeMarketDataFetchFailed:
		return "market_data_fetch_failed"
	case ErrCodeMarketDataParseFailed:
		return "market_data_parse_failed"
	case ErrCodeInvalidProvider:
		return "invalid_provider"
	case ErrCodeRenderFailed:
		return "render_failed"
	default:
		return "unknown"
	}
}
