package writer

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DuckDBWriterTestSuite struct {
	suite.Suite
	tempDir string
}

func TestDuckDBWriterSuite(t *testing.T) {
	suite.Run(t, new(DuckDBWriterTestSuite))
}

func (suite *DuckDBWriterTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
}

func (suite *DuckDBWriterTestSuite) bar(symbol string, day int, closePrice float64) types.MarketData {
	return types.MarketData{
		Symbol: symbol,
		Time:   time.Date(2024, 1, day, 21, 0, 0, 0, time.UTC),
		Open:   closePrice - 1,
		High:   closePrice + 1,
		Low:    closePrice - 2,
		Close:  closePrice,
		Volume: 1000,
	}
}

// readBack returns the exported rows in file order.
func (suite *DuckDBWriterTestSuite) readBack(path string) []types.MarketData {
	db, err := sql.Open("duckdb", "")
	suite.Require().NoError(err)

	defer db.Close()

	rows, err := db.Query(fmt.Sprintf(`SELECT time, symbol, open, high, low, close, volume FROM read_parquet('%s')`, path))
	suite.Require().NoError(err)

	defer rows.Close()

	var result []types.MarketData

	for rows.Next() {
		var d types.MarketData
		suite.Require().NoError(rows.Scan(&d.Time, &d.Symbol, &d.Open, &d.High, &d.Low, &d.Close, &d.Volume))
		result = append(result, d)
	}

	suite.Require().NoError(rows.Err())

	return result
}

func (suite *DuckDBWriterTestSuite) TestNewDuckDBWriter() {
	outputPath := filepath.Join(suite.tempDir, "test.parquet")
	writer := NewDuckDBWriter(outputPath, nil)

	duckWriter, ok := writer.(*DuckDBWriter)
	suite.Require().True(ok)
	suite.Equal(outputPath, writer.GetOutputPath())
	suite.NotNil(duckWriter.logger)
	suite.Nil(duckWriter.db)
	suite.Nil(duckWriter.tx)
	suite.Nil(duckWriter.stmt)
}

func (suite *DuckDBWriterTestSuite) TestWriteWithoutInitialize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "no_init.parquet"), logger.NewNop())

	err := writer.Write(suite.bar("AAPL", 2, 150))
	suite.True(errors.HasCode(err, errors.ErrCodeQueryFailed))

	_, err = writer.Finalize()
	suite.Error(err)

	suite.NoError(writer.Close())
}

func (suite *DuckDBWriterTestSuite) TestWriteSeriesSortsBySymbolAndTime() {
	outputPath := filepath.Join(suite.tempDir, "export.parquet")
	series := types.OhlcSeries{
		suite.bar("MSFT", 3, 400),
		suite.bar("AAPL", 3, 152),
		suite.bar("AAPL", 2, 150),
	}

	path, err := WriteSeries(NewDuckDBWriter(outputPath, logger.NewNop()), series)
	suite.Require().NoError(err)
	suite.Equal(outputPath, path)

	rows := suite.readBack(path)
	suite.Require().Len(rows, 3)
	suite.Equal("AAPL", rows[0].Symbol)
	suite.Equal(150.0, rows[0].Close)
	suite.Equal(152.0, rows[1].Close)
	suite.Equal("MSFT", rows[2].Symbol)
	suite.Equal(series[2].Time, rows[0].Time.UTC())
	suite.Equal(149.0, rows[0].Open)
	suite.Equal(151.0, rows[0].High)
	suite.Equal(148.0, rows[0].Low)
	suite.Equal(1000.0, rows[0].Volume)
}

func (suite *DuckDBWriterTestSuite) TestWriteEmptySeries() {
	path, err := WriteSeries(NewDuckDBWriter(filepath.Join(suite.tempDir, "empty.parquet"), nil), types.OhlcSeries{})
	suite.Require().NoError(err)
	suite.Empty(suite.readBack(path))
}

func (suite *DuckDBWriterTestSuite) TestFinalizeExportError() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "missing", "dir", "out.parquet"), nil)

	_, err := WriteSeries(writer, types.OhlcSeries{suite.bar("AAPL", 2, 150)})
	suite.True(errors.HasCode(err, errors.ErrCodeQueryFailed))
}

func (suite *DuckDBWriterTestSuite) TestCloseWithActiveTransaction() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "abandoned.parquet"), nil)
	suite.Require().NoError(writer.Initialize())
	suite.Require().NoError(writer.Write(suite.bar("AAPL", 2, 150)))

	suite.NoError(writer.Close())
	suite.NoError(writer.Close())
}
