package types

type IndicatorType string

const (
	IndicatorTypeSMA            IndicatorType = "sma"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
)
