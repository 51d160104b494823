package tui

import "github.com/rxtech-lab/stockview/internal/viewer"

// ReportMsg carries a finished chart report.
type ReportMsg struct {
	Report viewer.Report
}

// ReportErrorMsg indicates the report could not be built.
type ReportErrorMsg struct {
	Err error
}
