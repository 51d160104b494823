package indicator

const (
	DefaultSmaWindow                 = 50
	DefaultBollingerWindow           = 50
	DefaultBollingerStdDevMultiplier = 2.0
)

// IndicatorRequest selects the series Compute produces.
type IndicatorRequest struct {
	IncludeSma                bool    `json:"includeSma" yaml:"includeSma"`
	SmaWindow                 int     `json:"smaWindow" yaml:"smaWindow"`
	IncludeBollinger          bool    `json:"includeBollinger" yaml:"includeBollinger"`
	BollingerWindow           int     `json:"bollingerWindow" yaml:"bollingerWindow"`
	BollingerStdDevMultiplier float64 `json:"bollingerStdDevMultiplier" yaml:"bollingerStdDevMultiplier"`
	// IncludeLineSegments is set by callers that draw a line chart.
	IncludeLineSegments bool `json:"includeLineSegments" yaml:"includeLineSegments"`
}

// DefaultIndicatorRequest returns the form defaults: 50-day SMA on, Bollinger off.
func DefaultIndicatorRequest() IndicatorRequest {
	return IndicatorRequest{
		IncludeSma:                true,
		SmaWindow:                 DefaultSmaWindow,
		IncludeBollinger:          false,
		BollingerWindow:           DefaultBollingerWindow,
		BollingerStdDevMultiplier: DefaultBollingerStdDevMultiplier,
		IncludeLineSegments:       false,
	}
}

// Validate checks the parameters of the enabled overlays only; the window of a
// disabled overlay is never read.
func (r IndicatorRequest) Validate() error {
	if r.IncludeSma {
		if err := validateWindow("sma window", r.SmaWindow); err != nil {
			return err
		}
	}

	if r.IncludeBollinger {
		if err := validateWindow("bollinger window", r.BollingerWindow); err != nil {
			return err
		}

		if err := validateMultiplier(r.BollingerStdDevMultiplier); err != nil {
			return err
		}
	}

	return nil
}

// smaShared reports whether the bands can reuse the SMA series.
func (r IndicatorRequest) smaShared() bool {
	return r.IncludeSma && r.IncludeBollinger && r.SmaWindow == r.BollingerWindow
}
