package writer

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBWriter buffers bars in an in-memory DuckDB table and exports them as parquet
// with the column layout the file provider reads.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
	logger     *logger.Logger
}

// NewDuckDBWriter creates a new DuckDBWriter that exports to outputPath.
func NewDuckDBWriter(outputPath string, log *logger.Logger) MarketDataWriter {
	if log == nil {
		log = logger.NewNop()
	}

	return &DuckDBWriter{
		outputPath: outputPath,
		logger:     log,
	}
}

// Initialize opens the database, creates the table, begins a transaction and
// prepares the insert statement.
func (w *DuckDBWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", "")
	if err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open DuckDB connection", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS market_data (
			time TIMESTAMP,
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create table", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to begin transaction", err)
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO market_data (time, symbol, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()

		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to prepare statement", err)
	}

	return nil
}

// Write inserts a single bar within the open transaction.
func (w *DuckDBWriter) Write(data types.MarketData) error {
	if w.stmt == nil {
		return errors.New(errors.ErrCodeQueryFailed, "writer not initialized or statement is nil")
	}

	_, err := w.stmt.Exec(
		data.Time,
		data.Symbol,
		data.Open,
		data.High,
		data.Low,
		data.Close,
		data.Volume,
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert bar", err)
	}

	return nil
}

// Finalize commits the transaction and exports the table ordered by symbol and time.
func (w *DuckDBWriter) Finalize() (outputPath string, err error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeQueryFailed, "writer not initialized or transaction is nil")
	}

	if err = w.tx.Commit(); err != nil {
		w.tx.Rollback()

		return "", errors.Wrap(errors.ErrCodeQueryFailed, "failed to commit transaction", err)
	}

	w.tx = nil

	// COPY takes no bind parameters
	query := fmt.Sprintf(`COPY (SELECT * FROM market_data ORDER BY symbol, time) TO '%s' (FORMAT PARQUET)`,
		strings.ReplaceAll(w.outputPath, "'", "''"))

	if _, err = w.db.Exec(query); err != nil {
		return "", errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to export parquet to %s", w.outputPath)
	}

	w.logger.Info("Exported market data", zap.String("path", w.outputPath))

	return w.outputPath, nil
}

// Close releases the statement and connection, rolling back an unfinished transaction.
func (w *DuckDBWriter) Close() error {
	var closeErrors []string

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("failed to close statement: %v", err))
		}

		w.stmt = nil
	}

	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			w.logger.Warn("Failed to rollback transaction during close", zap.Error(err))
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Sprintf("failed to close db connection: %v", err))
		}

		w.db = nil
	}

	if len(closeErrors) > 0 {
		return errors.New(errors.ErrCodeQueryFailed, "errors occurred during close:\n- "+strings.Join(closeErrors, "\n- "))
	}

	return nil
}

// GetOutputPath implements MarketDataWriter.
func (w *DuckDBWriter) GetOutputPath() string {
	return w.outputPath
}
