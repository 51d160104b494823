package marketdata

import (
	"github.com/rxtech-lab/stockview/pkg/errors"
	"github.com/rxtech-lab/stockview/pkg/marketdata/provider"
)

// ProviderInfo contains metadata about a market data provider.
type ProviderInfo struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	RequiresAuth bool   `json:"requiresAuth"`
	// HasCompanyInfo reports whether the provider knows sector and industry.
	HasCompanyInfo bool `json:"hasCompanyInfo"`
}

// providerRegistry lists the supported providers in display order.
var providerRegistry = []ProviderInfo{
	{
		Name:           string(provider.ProviderYahoo),
		DisplayName:    "Yahoo Finance",
		Description:    "Free delayed daily quotes and company profiles for stocks, ETFs and indices",
		RequiresAuth:   false,
		HasCompanyInfo: true,
	},
	{
		Name:           string(provider.ProviderPolygon),
		DisplayName:    "Polygon.io",
		Description:    "US stock market data provider with historical OHLCV aggregates",
		RequiresAuth:   true,
		HasCompanyInfo: true,
	},
	{
		Name:           string(provider.ProviderBinance),
		DisplayName:    "Binance",
		Description:    "Cryptocurrency exchange with daily klines for crypto trading pairs",
		RequiresAuth:   false,
		HasCompanyInfo: false,
	},
	{
		Name:           string(provider.ProviderFile),
		DisplayName:    "Parquet file",
		Description:    "Local parquet file with time, symbol, open, high, low, close and volume columns",
		RequiresAuth:   false,
		HasCompanyInfo: false,
	},
}

// GetSupportedProviders returns the names of all supported providers.
func GetSupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for _, info := range providerRegistry {
		providers = append(providers, info.Name)
	}

	return providers
}

// GetProviders returns metadata for all supported providers.
func GetProviders() []ProviderInfo {
	return append([]ProviderInfo(nil), providerRegistry...)
}

// GetProviderInfo returns metadata for a specific provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	for _, info := range providerRegistry {
		if info.Name == providerName {
			return info, nil
		}
	}

	return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider: %s", providerName)
}
