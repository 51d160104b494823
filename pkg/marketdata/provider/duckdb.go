package provider

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBClient serves bars from a local parquet file with the columns
// time, symbol, open, high, low, close and volume. Periods are anchored at the
// newest bar for the symbol rather than at the wall clock, so old exports
// still chart.
type DuckDBClient struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBClient opens an in-memory DuckDB and exposes path as the market_data view.
func NewDuckDBClient(path string, log *logger.Logger) (*DuckDBClient, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "data path is required for the file provider")
	}

	if log == nil {
		log = logger.NewNop()
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	// CREATE VIEW takes no bind parameters
	query := fmt.Sprintf(`
		CREATE VIEW market_data AS
		SELECT * FROM read_parquet('%s');
	`, strings.ReplaceAll(path, "'", "''"))

	if _, err := db.Exec(query); err != nil {
		_ = db.Close()

		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to read parquet file %s", path)
	}

	log.Debug("Opened parquet data source", zap.String("path", path))

	return &DuckDBClient{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// History implements Provider.
func (c *DuckDBClient) History(ctx context.Context, symbol string, period types.Period) (types.OhlcSeries, error) {
	last, err := c.lastTime(ctx, symbol)
	if err != nil {
		return nil, err
	}

	query, args, err := c.sq.
		Select("time", "symbol", "open", "high", "low", "close", "volume").
		From("market_data").
		Where(squirrel.And{
			squirrel.Eq{"symbol": symbol},
			squirrel.Gt{"time": period.Start(last)},
		}).
		OrderBy("time ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query bars for %s", symbol)
	}
	defer rows.Close()

	series := types.OhlcSeries{}

	for rows.Next() {
		var (
			timestamp                           time.Time
			symbolResult                        string
			open, high, low, closePrice, volume float64
		)

		if err := rows.Scan(&timestamp, &symbolResult, &open, &high, &low, &closePrice, &volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		series = append(series, types.MarketData{
			Symbol: symbolResult,
			Time:   timestamp,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate rows", err)
	}

	c.logger.Debug("Read bars from parquet",
		zap.String("symbol", symbol),
		zap.String("period", period.String()),
		zap.Time("last", last),
		zap.Int("bars", len(series)),
	)

	return series, nil
}

// CompanyInfo implements Provider. Parquet exports carry no profile data.
func (c *DuckDBClient) CompanyInfo(_ context.Context, _ string) (types.CompanyInfo, error) {
	return types.CompanyInfo{
		LongName: optional.None[string](),
		Sector:   optional.None[string](),
		Industry: optional.None[string](),
	}, nil
}

// Symbols lists the distinct symbols in the file.
func (c *DuckDBClient) Symbols(ctx context.Context) ([]string, error) {
	query, args, err := c.sq.
		Select("DISTINCT symbol").
		From("market_data").
		OrderBy("symbol").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query symbols", err)
	}
	defer rows.Close()

	var symbols []string

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan symbol", err)
		}

		symbols = append(symbols, symbol)
	}

	return symbols, rows.Err()
}

func (c *DuckDBClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}

	return nil
}

func (c *DuckDBClient) lastTime(ctx context.Context, symbol string) (time.Time, error) {
	query, args, err := c.sq.
		Select("MAX(time)").
		From("market_data").
		Where(squirrel.Eq{"symbol": symbol}).
		ToSql()
	if err != nil {
		return time.Time{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	var last sql.NullTime
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(&last); err != nil {
		return time.Time{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read last bar for %s", symbol)
	}

	if !last.Valid {
		return time.Time{}, errors.Newf(errors.ErrCodeDataNotFound, "no data found for symbol: %s", symbol)
	}

	return last.Time, nil
}
