package writer

import (
	"github.com/rxtech-lab/stockview/internal/types"
)

// MarketDataWriter exports fetched bars so they can be charted offline with the file provider.
type MarketDataWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write buffers a single bar.
	Write(data types.MarketData) error
	// Finalize commits buffered bars and writes the output file.
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}

// WriteSeries writes every bar of series through w and finalizes it.
func WriteSeries(w MarketDataWriter, series types.OhlcSeries) (string, error) {
	if err := w.Initialize(); err != nil {
		return "", err
	}

	defer w.Close()

	for _, bar := range series {
		if err := w.Write(bar); err != nil {
			return "", err
		}
	}

	return w.Finalize()
}
